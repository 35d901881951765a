package store

import (
	"sort"
	"sync"
	"time"

	"github.com/psantana5/workgate/pkg/models"
)

// MemoryStore is an in-memory implementation of the data store
type MemoryStore struct {
	windows     map[string]*models.Window
	decisions   []*models.Decision
	windowsMu   sync.RWMutex
	decisionsMu sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows:   make(map[string]*models.Window),
		decisions: make([]*models.Decision, 0),
	}
}

// SaveWindow adds or updates a window
func (s *MemoryStore) SaveWindow(w *models.Window) error {
	s.windowsMu.Lock()
	defer s.windowsMu.Unlock()

	now := time.Now()
	if existing, ok := s.windows[w.Name]; ok {
		w.CreatedAt = existing.CreatedAt
	} else {
		w.CreatedAt = now
	}
	w.UpdatedAt = now

	copied := *w
	s.windows[w.Name] = &copied
	return nil
}

// GetWindow retrieves a window by name
func (s *MemoryStore) GetWindow(name string) (*models.Window, error) {
	s.windowsMu.RLock()
	defer s.windowsMu.RUnlock()

	w, ok := s.windows[name]
	if !ok {
		return nil, ErrWindowNotFound
	}
	copied := *w
	return &copied, nil
}

// ListWindows returns all windows sorted by name
func (s *MemoryStore) ListWindows() ([]*models.Window, error) {
	s.windowsMu.RLock()
	defer s.windowsMu.RUnlock()

	windows := make([]*models.Window, 0, len(s.windows))
	for _, w := range s.windows {
		copied := *w
		windows = append(windows, &copied)
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Name < windows[j].Name
	})
	return windows, nil
}

// DeleteWindow removes a window by name
func (s *MemoryStore) DeleteWindow(name string) error {
	s.windowsMu.Lock()
	defer s.windowsMu.Unlock()

	if _, ok := s.windows[name]; !ok {
		return ErrWindowNotFound
	}
	delete(s.windows, name)
	return nil
}

// RecordDecision appends a gate decision to the log
func (s *MemoryStore) RecordDecision(d *models.Decision) error {
	s.decisionsMu.Lock()
	defer s.decisionsMu.Unlock()

	copied := *d
	s.decisions = append(s.decisions, &copied)
	return nil
}

// ListDecisions returns the most recent decisions, newest first
func (s *MemoryStore) ListDecisions(limit int) ([]*models.Decision, error) {
	s.decisionsMu.RLock()
	defer s.decisionsMu.RUnlock()

	n := len(s.decisions)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*models.Decision, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		copied := *s.decisions[i]
		out = append(out, &copied)
	}
	return out, nil
}

// GetDecisionStats aggregates decision counts per window
func (s *MemoryStore) GetDecisionStats() (*models.DecisionStats, error) {
	s.decisionsMu.RLock()
	defer s.decisionsMu.RUnlock()

	stats := &models.DecisionStats{
		Allowed: make(map[string]int),
		Denied:  make(map[string]int),
	}
	for _, d := range s.decisions {
		if d.Allowed {
			stats.Allowed[d.Window]++
		} else {
			stats.Denied[d.Window]++
		}
		stats.Total++
	}
	return stats, nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}

// HealthCheck is a no-op for the memory store
func (s *MemoryStore) HealthCheck() error {
	return nil
}
