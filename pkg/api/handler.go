package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/psantana5/workgate/pkg/clock"
	"github.com/psantana5/workgate/pkg/gate"
	"github.com/psantana5/workgate/pkg/logging"
	"github.com/psantana5/workgate/pkg/models"
	"github.com/psantana5/workgate/pkg/store"
)

// MetricsRecorder receives check outcomes and latencies
type MetricsRecorder interface {
	RecordCheck(window models.Window, timeOfDay int, allowed bool)
	ObserveCheckDuration(d time.Duration)
}

// Handler handles workgate API requests
type Handler struct {
	store   store.Store
	clock   clock.Clock
	logger  *logging.Logger
	metrics MetricsRecorder
}

// NewHandler creates a new API handler
func NewHandler(s store.Store, logger *logging.Logger) *Handler {
	return &Handler{
		store:  s,
		clock:  clock.SystemClock{},
		logger: logger,
	}
}

// SetClock sets the clock used when a check omits the time value
func (h *Handler) SetClock(c clock.Clock) {
	h.clock = c
}

// SetMetricsRecorder sets the metrics recorder for the handler
func (h *Handler) SetMetricsRecorder(m MetricsRecorder) {
	h.metrics = m
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/check", h.Check).Methods("POST")
	r.HandleFunc("/windows", h.CreateWindow).Methods("POST")
	r.HandleFunc("/windows", h.ListWindows).Methods("GET")
	r.HandleFunc("/windows/{name}", h.GetWindow).Methods("GET")
	r.HandleFunc("/windows/{name}", h.DeleteWindow).Methods("DELETE")
	r.HandleFunc("/decisions", h.ListDecisions).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")
}

// resolveWindow loads a window by name, falling back to the built-in
// working-hours window when the default has not been persisted yet
func (h *Handler) resolveWindow(name string) (*models.Window, error) {
	if name == "" {
		name = models.DefaultWindowName
	}

	w, err := h.store.GetWindow(name)
	if err == store.ErrWindowNotFound && name == models.DefaultWindowName {
		def := models.DefaultWindow()
		return &def, nil
	}
	return w, err
}

// Check evaluates a time value against a window.
// An omitted time value falls back to the server clock. The value itself is
// never range-validated; any integer is legal.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	window, err := h.resolveWindow(req.Window)
	if err == store.ErrWindowNotFound {
		http.Error(w, "Window not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to load window", map[string]interface{}{"error": err.Error()})
		http.Error(w, "Failed to load window", http.StatusInternalServerError)
		return
	}

	g := gate.New(*window)
	if h.metrics != nil {
		g.SetRecorder(h.metrics)
	}

	var timeOfDay int
	if req.Time != nil {
		timeOfDay = *req.Time
	} else {
		timeOfDay = h.clock.Now()
	}
	allowed := g.Allow(timeOfDay)

	message := gate.UnavailableMessage
	if allowed {
		message = gate.AtWorkMessage
	}

	decision := &models.Decision{
		ID:        uuid.New().String(),
		Window:    window.Name,
		Time:      timeOfDay,
		Allowed:   allowed,
		Source:    models.SourceAPI,
		CheckedAt: time.Now(),
	}
	if err := h.store.RecordDecision(decision); err != nil {
		// A check result is still valid when the audit write fails
		h.logger.Warn("Failed to record decision", map[string]interface{}{"error": err.Error()})
	}

	if h.metrics != nil {
		h.metrics.ObserveCheckDuration(time.Since(start))
	}

	h.logger.Debug("Gate check", map[string]interface{}{
		"window":  window.Name,
		"time":    timeOfDay,
		"allowed": allowed,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.CheckResponse{
		Time:    timeOfDay,
		Window:  window.Name,
		Allowed: allowed,
		Message: message,
	})
}

// CreateWindow adds or updates a window
func (h *Handler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	var window models.Window
	if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if window.Name == "" {
		http.Error(w, "Window name is required", http.StatusBadRequest)
		return
	}

	if err := h.store.SaveWindow(&window); err != nil {
		h.logger.Error("Failed to save window", map[string]interface{}{"error": err.Error()})
		http.Error(w, "Failed to save window", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Window saved", map[string]interface{}{
		"name":  window.Name,
		"open":  window.Open,
		"close": window.Close,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(window)
}

// ListWindows returns all configured windows
func (h *Handler) ListWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := h.store.ListWindows()
	if err != nil {
		h.logger.Error("Failed to list windows", map[string]interface{}{"error": err.Error()})
		http.Error(w, "Failed to list windows", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"windows": windows,
		"count":   len(windows),
	})
}

// GetWindow returns a single window by name
func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	window, err := h.store.GetWindow(name)
	if err == store.ErrWindowNotFound {
		http.Error(w, "Window not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load window", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(window)
}

// DeleteWindow removes a window by name
func (h *Handler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	err := h.store.DeleteWindow(name)
	if err == store.ErrWindowNotFound {
		http.Error(w, "Window not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to delete window", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Window deleted", map[string]interface{}{"name": name})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "deleted",
		"name":   name,
	})
}

// ListDecisions returns recent gate decisions, newest first
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	decisions, err := h.store.ListDecisions(limit)
	if err != nil {
		h.logger.Error("Failed to list decisions", map[string]interface{}{"error": err.Error()})
		http.Error(w, "Failed to list decisions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"decisions": decisions,
		"count":     len(decisions),
	})
}
