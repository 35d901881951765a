package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/psantana5/workgate/pkg/models"
)

// SQLiteStore is a SQLite-based implementation of the data store
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// WAL and a busy timeout keep concurrent CLI and server access from locking.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to avoid SQLITE_BUSY under concurrent checks
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database schema
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS windows (
		name TEXT PRIMARY KEY,
		open INTEGER NOT NULL,
		close INTEGER NOT NULL,
		description TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		window TEXT NOT NULL,
		time INTEGER NOT NULL,
		allowed BOOLEAN NOT NULL,
		source TEXT,
		checked_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_checked_at ON decisions(checked_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_window ON decisions(window);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveWindow adds or updates a window
func (s *SQLiteStore) SaveWindow(w *models.Window) error {
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO windows (name, open, close, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			open = excluded.open,
			close = excluded.close,
			description = excluded.description,
			updated_at = excluded.updated_at
	`, w.Name, w.Open, w.Close, w.Description, w.CreatedAt, w.UpdatedAt)

	return err
}

// GetWindow retrieves a window by name
func (s *SQLiteStore) GetWindow(name string) (*models.Window, error) {
	var w models.Window
	err := s.db.QueryRow(`
		SELECT name, open, close, description, created_at, updated_at
		FROM windows WHERE name = ?
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
func (s *SQLiteStore) ListWindows() ([]*models.Window, error) {
	rows, err := s.db.Query(`
		SELECT name, open, close, description, created_at, updated_at
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
func (s *SQLiteStore) DeleteWindow(name string) error {
	result, err := s.db.Exec(`DELETE FROM windows WHERE name = ?`, name)
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
func (s *SQLiteStore) RecordDecision(d *models.Decision) error {
	_, err := s.db.Exec(`
		INSERT INTO decisions (id, window, time, allowed, source, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.Window, d.Time, d.Allowed, d.Source, d.CheckedAt)

	return err
}

// ListDecisions returns the most recent decisions, newest first
func (s *SQLiteStore) ListDecisions(limit int) ([]*models.Decision, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT id, window, time, allowed, source, checked_at
		FROM decisions ORDER BY checked_at DESC, id LIMIT ?
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
func (s *SQLiteStore) GetDecisionStats() (*models.DecisionStats, error) {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies database connectivity
func (s *SQLiteStore) HealthCheck() error {
	return s.db.Ping()
}
