package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func protected() http.Handler {
	return WithOperator(RequireOperator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, _ := OperatorFromContext(r.Context())
		_, _ = w.Write([]byte("hello " + name))
	})))
}

func TestRequireOperatorRejectsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec := httptest.NewRecorder()
	protected().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireOperatorRejectsGarbageToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	protected().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireOperatorAcceptsSignedToken(t *testing.T) {
	t.Setenv("HASHBOT_JWT_SECRET", "test-secret")
	tok, err := SignOperatorToken("ops", time.Hour)
	if err != nil {
		t.Fatalf("SignOperatorToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	protected().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "hello ops" {
		t.Fatalf("body = %q", got)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Setenv("HASHBOT_JWT_SECRET", "test-secret")
	tok, err := SignOperatorToken("ops", -time.Minute)
	if err != nil {
		t.Fatalf("SignOperatorToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	protected().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
