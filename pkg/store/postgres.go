package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/psantana5/workgate/pkg/models"
)

// PostgreSQLStore implements Store using PostgreSQL
type PostgreSQLStore struct {
	db *sql.DB
}

// NewPostgreSQLStore creates a new PostgreSQL store
func NewPostgreSQLStore(config Config) (*PostgreSQLStore, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("PostgreSQL DSN is required")
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(25)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(5)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgreSQLStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates tables if they don't exist
func (s *PostgreSQLStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS windows (
		name TEXT PRIMARY KEY,
		open INTEGER NOT NULL,
		close INTEGER NOT NULL,
		description TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		window TEXT NOT NULL,
		time INTEGER NOT NULL,
		allowed BOOLEAN NOT NULL,
		source TEXT,
		checked_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_checked_at ON decisions(checked_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_window ON decisions(window);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveWindow adds or updates a window
func (s *PostgreSQLStore) SaveWindow(w *models.Window) error {
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO windows (name, open, close, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			open = EXCLUDED.open,
			close = EXCLUDED.close,
			description = EXCLUDED.description,
			updated_at = EXCLUDED.updated_at
	`, w.Name, w.Open, w.Close, w.Description, w.CreatedAt, w.UpdatedAt)

	return err
}

// GetWindow retrieves a window by name
func (s *PostgreSQLStore) GetWindow(name string) (*models.Window, error) {
	var w models.Window
	err := s.db.QueryRow(`
		SELECT name, open, close, COALESCE(description, ''), created_at, updated_at
		FROM windows WHERE name = $1
	`, name).Scan(&w.Name, &w.Open, &w.Close, &w.Description, &w.CreatedAt, &w.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrWindowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWindows returns all windows sorted by name
func (s *PostgreSQLStore) ListWindows() ([]*models.Window, error) {
	rows, err := s.db.Query(`
		SELECT name, open, close, COALESCE(description, ''), created_at, updated_at
		FROM windows ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []*models.Window
	for rows.Next() {
		var w models.Window
		if err := rows.Scan(&w.Name, &w.Open, &w.Close, &w.Description, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		windows = append(windows, &w)
	}
	return windows, rows.Err()
}

// DeleteWindow removes a window by name
func (s *PostgreSQLStore) DeleteWindow(name string) error {
	result, err := s.db.Exec(`DELETE FROM windows WHERE name = $1`, name)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWindowNotFound
	}
	return nil
}

// RecordDecision appends a gate decision to the log
func (s *PostgreSQLStore) RecordDecision(d *models.Decision) error {
	_, err := s.db.Exec(`
		INSERT INTO decisions (id, window, time, allowed, source, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.Window, d.Time, d.Allowed, d.Source, d.CheckedAt)

	return err
}

// ListDecisions returns the most recent decisions, newest first
func (s *PostgreSQLStore) ListDecisions(limit int) ([]*models.Decision, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT id, window, time, allowed, COALESCE(source, ''), checked_at
		FROM decisions ORDER BY checked_at DESC, id LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decisions []*models.Decision
	for rows.Next() {
		var d models.Decision
		if err := rows.Scan(&d.ID, &d.Window, &d.Time, &d.Allowed, &d.Source, &d.CheckedAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, &d)
	}
	return decisions, rows.Err()
}

// GetDecisionStats aggregates decision counts per window with a single query
func (s *PostgreSQLStore) GetDecisionStats() (*models.DecisionStats, error) {
	rows, err := s.db.Query(`
		SELECT window, allowed, COUNT(*)
		FROM decisions GROUP BY window, allowed
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &models.DecisionStats{
		Allowed: make(map[string]int),
		Denied:  make(map[string]int),
	}
	for rows.Next() {
		var window string
		var allowed bool
		var count int
		if err := rows.Scan(&window, &allowed, &count); err != nil {
			return nil, err
		}
		if allowed {
			stats.Allowed[window] += count
		} else {
			stats.Denied[window] += count
		}
		stats.Total += count
	}
	return stats, rows.Err()
}

// Close closes the database
func (s *PostgreSQLStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies database connectivity
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}
