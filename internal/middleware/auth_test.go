package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/foyer/internal/auth"
)

func setupSessions(t *testing.T) *auth.Sessions {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	v, err := auth.NewVerifier(string(hash))
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	return auth.NewSessions(v)
}

func TestRequireSessionMissing(t *testing.T) {
	sessions := setupSessions(t)

	handler := RequireSession(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("body = %q, want JSON error", rec.Body.String())
	}
}

func TestRequireSessionUnknownToken(t *testing.T) {
	sessions := setupSessions(t)

	handler := RequireSession(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireSessionValid(t *testing.T) {
	sessions := setupSessions(t)
	sess := sessions.Create()
	if _, err := sessions.SetMember(sess.Token, "Enfant 1"); err != nil {
		t.Fatalf("set member: %v", err)
	}

	var got string
	handler := RequireSession(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.ActiveMember(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for _, viaHeader := range []bool{true, false} {
		req := httptest.NewRequest("GET", "/", nil)
		if viaHeader {
			req.Header.Set(SessionHeader, sess.Token)
		} else {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("header=%v: status = %d, want %d", viaHeader, rec.Code, http.StatusOK)
		}
		if got != "Enfant 1" {
			t.Errorf("header=%v: member = %q, want %q", viaHeader, got, "Enfant 1")
		}
	}
}

func TestRequireParentAllowed(t *testing.T) {
	handler := RequireParent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ctx := auth.WithSession(httptest.NewRequest("GET", "/", nil).Context(), auth.Session{ParentAuthenticated: true})
	req := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireParentForbidden(t *testing.T) {
	handler := RequireParent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	ctx := auth.WithSession(httptest.NewRequest("GET", "/", nil).Context(), auth.Session{Member: "Parent 1"})
	req := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
