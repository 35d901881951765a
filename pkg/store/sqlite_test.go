package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/psantana5/workgate/pkg/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "workgate_test.db")
	t.Cleanup(func() {
		os.Remove(dbPath + "-shm")
		os.Remove(dbPath + "-wal")
	})

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestSQLiteWindowOperations tests window CRUD
func TestSQLiteWindowOperations(t *testing.T) {
	s := newTestStore(t)

	w := models.DefaultWindow()
	if err := s.SaveWindow(&w); err != nil {
		t.Fatalf("Failed to save window: %v", err)
	}

	got, err := s.GetWindow(w.Name)
	if err != nil {
		t.Fatalf("Failed to get window: %v", err)
	}
	if got.Open != 1100 || got.Close != 2100 {
		t.Errorf("Expected bounds (1100, 2100), got (%d, %d)", got.Open, got.Close)
	}

	// Update keeps creation time
	w.Close = 2200
	if err := s.SaveWindow(&w); err != nil {
		t.Fatalf("Failed to update window: %v", err)
	}
	updated, err := s.GetWindow(w.Name)
	if err != nil {
		t.Fatalf("Failed to get updated window: %v", err)
	}
	if updated.Close != 2200 {
		t.Errorf("Expected updated close 2200, got %d", updated.Close)
	}

	// List
	night := models.Window{Name: "night-shift", Open: 2200, Close: 2359}
	if err := s.SaveWindow(&night); err != nil {
		t.Fatalf("Failed to save second window: %v", err)
	}
	windows, err := s.ListWindows()
	if err != nil {
		t.Fatalf("Failed to list windows: %v", err)
	}
	if len(windows) != 2 {
		t.Errorf("Expected 2 windows, got %d", len(windows))
	}
	if windows[0].Name != "night-shift" {
		t.Errorf("Expected windows sorted by name, got %s first", windows[0].Name)
	}

	// Delete
	if err := s.DeleteWindow("night-shift"); err != nil {
		t.Errorf("Failed to delete window: %v", err)
	}
	if _, err := s.GetWindow("night-shift"); err != ErrWindowNotFound {
		t.Errorf("Expected ErrWindowNotFound, got %v", err)
	}
	if err := s.DeleteWindow("night-shift"); err != ErrWindowNotFound {
		t.Errorf("Deleting missing window: expected ErrWindowNotFound, got %v", err)
	}
}

// TestSQLiteDecisionLog tests decision recording and retrieval
func TestSQLiteDecisionLog(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		d := &models.Decision{
			ID:        uuid.New().String(),
			Window:    models.DefaultWindowName,
			Time:      1100 + i,
			Allowed:   i%2 == 0,
			Source:    models.SourceAPI,
			CheckedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.RecordDecision(d); err != nil {
			t.Fatalf("Failed to record decision %d: %v", i, err)
		}
	}

	decisions, err := s.ListDecisions(3)
	if err != nil {
		t.Fatalf("Failed to list decisions: %v", err)
	}
	if len(decisions) != 3 {
		t.Fatalf("Expected 3 decisions, got %d", len(decisions))
	}
	// Newest first
	if decisions[0].Time != 1104 {
		t.Errorf("Expected newest decision first (time 1104), got %d", decisions[0].Time)
	}

	stats, err := s.GetDecisionStats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Total != 5 {
		t.Errorf("Expected 5 total decisions, got %d", stats.Total)
	}
	if stats.Allowed[models.DefaultWindowName] != 3 {
		t.Errorf("Expected 3 allowed, got %d", stats.Allowed[models.DefaultWindowName])
	}
	if stats.Denied[models.DefaultWindowName] != 2 {
		t.Errorf("Expected 2 denied, got %d", stats.Denied[models.DefaultWindowName])
	}
}

// TestSQLiteConcurrentDecisions tests that concurrent writes don't lock
func TestSQLiteConcurrentDecisions(t *testing.T) {
	s := newTestStore(t)

	numDecisions := 20
	var wg sync.WaitGroup
	errors := make(chan error, numDecisions)

	for i := 0; i < numDecisions; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			d := &models.Decision{
				ID:        uuid.New().String(),
				Window:    models.DefaultWindowName,
				Time:      2000,
				Allowed:   true,
				Source:    models.SourceAPI,
				CheckedAt: time.Now(),
			}
			if err := s.RecordDecision(d); err != nil {
				errors <- fmt.Errorf("decision %d failed: %w", idx, err)
			}
		}(i)
	}

	wg.Wait()
	close(errors)
	for err := range errors {
		t.Errorf("Concurrent decision error: %v", err)
	}

	stats, err := s.GetDecisionStats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Total != numDecisions {
		t.Errorf("Expected %d decisions, got %d", numDecisions, stats.Total)
	}
}

func TestSQLiteHealthCheck(t *testing.T) {
	s := newTestStore(t)
	if err := s.HealthCheck(); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
