package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidKey = errors.New("invalid API key")
	ErrNoKey      = errors.New("missing API key")
)

// APIKeyManager manages API keys for request authentication.
// Keys are stored as bcrypt hashes only.
type APIKeyManager struct {
	hashes map[string]string // name -> bcrypt hash
	mu     sync.RWMutex
}

// NewAPIKeyManager creates a new API key manager
func NewAPIKeyManager() *APIKeyManager {
	return &APIKeyManager{
		hashes: make(map[string]string),
	}
}

// AddKey registers a key under a name
func (m *APIKeyManager) AddKey(name, key string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash API key: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.hashes[name] = string(hash)
	return nil
}

// RemoveKey removes a key by name
func (m *APIKeyManager) RemoveKey(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hashes, name)
}

// Validate checks a presented key against all registered hashes
func (m *APIKeyManager) Validate(key string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, hash := range m.hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil {
			return nil
		}
	}
	return ErrInvalidKey
}

// Enabled reports whether any keys are registered
func (m *APIKeyManager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hashes) > 0
}

// GenerateKey generates a random API key
func GenerateKey() (string, error) {
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(keyBytes), nil
}

// Middleware creates an HTTP middleware enforcing bearer API keys.
// Paths in skipPaths bypass authentication (health and metrics probes).
func Middleware(m *APIKeyManager, skipPaths ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.Enabled() || skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "Missing API key", http.StatusUnauthorized)
				return
			}

			key := strings.TrimPrefix(header, "Bearer ")
			if err := m.Validate(key); err != nil {
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
