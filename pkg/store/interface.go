package store

import (
	"errors"
	"time"

	"github.com/psantana5/workgate/pkg/models"
)

var (
	ErrWindowNotFound      = errors.New("window not found")
	ErrUnsupportedDatabase = errors.New("unsupported database type")
)

// Store defines the interface for window and decision persistence.
// Memory, SQLite and PostgreSQL implement this interface.
type Store interface {
	// Window operations
	SaveWindow(w *models.Window) error
	GetWindow(name string) (*models.Window, error)
	ListWindows() ([]*models.Window, error)
	DeleteWindow(name string) error

	// Decision log
	RecordDecision(d *models.Decision) error
	ListDecisions(limit int) ([]*models.Decision, error)
	GetDecisionStats() (*models.DecisionStats, error)

	// Lifecycle
	Close() error
	HealthCheck() error
}

// Config holds database configuration
type Config struct {
	Type string // "memory", "sqlite" or "postgres"
	DSN  string // Connection string

	// PostgreSQL specific
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// SQLite specific
	Path string
}

// NewStore creates a store based on configuration
func NewStore(config Config) (Store, error) {
	switch config.Type {
	case "postgres", "postgresql":
		return NewPostgreSQLStore(config)
	case "sqlite", "":
		path := config.Path
		if path == "" {
			path = config.DSN
		}
		if path == "" {
			path = "workgate.db"
		}
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, ErrUnsupportedDatabase
	}
}
