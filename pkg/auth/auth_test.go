package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidate(t *testing.T) {
	m := NewAPIKeyManager()
	if err := m.AddKey("ci", "secret-key"); err != nil {
		t.Fatalf("AddKey failed: %v", err)
	}

	if err := m.Validate("secret-key"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := m.Validate("wrong-key"); err != ErrInvalidKey {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestRemoveKey(t *testing.T) {
	m := NewAPIKeyManager()
	m.AddKey("ci", "secret-key")
	m.RemoveKey("ci")

	if m.Enabled() {
		t.Error("manager should be disabled after removing the only key")
	}
}

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	k2, _ := GenerateKey()
	if k1 == k2 {
		t.Error("generated keys should not repeat")
	}
}

func TestMiddleware(t *testing.T) {
	m := NewAPIKeyManager()
	m.AddKey("ci", "secret-key")

	handler := Middleware(m, "/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// No key
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/check", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key: expected 401, got %d", rec.Code)
	}

	// Wrong key
	req := httptest.NewRequest("POST", "/check", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid key: expected 401, got %d", rec.Code)
	}

	// Valid key
	req = httptest.NewRequest("POST", "/check", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: expected 200, got %d", rec.Code)
	}

	// Skipped path needs no key
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("skipped path: expected 200, got %d", rec.Code)
	}
}

func TestMiddlewareDisabledWithoutKeys(t *testing.T) {
	m := NewAPIKeyManager()
	handler := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/check", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("no keys registered: expected pass-through 200, got %d", rec.Code)
	}
}
