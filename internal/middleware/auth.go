package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/foyer/internal/auth"
)

const (
	SessionCookieName = "foyer_session"
	SessionHeader     = "X-Foyer-Session"
)

// SessionToken reads the session token from the header, then the cookie.
func SessionToken(r *http.Request) string {
	if tok := r.Header.Get(SessionHeader); tok != "" {
		return tok
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession resolves the session token and stores the Session in the
// request context.
func RequireSession(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := SessionToken(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "session required")
				return
			}
			sess, ok := sessions.Get(tok)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unknown session")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}

// RequireParent rejects sessions that have not entered the parent code.
func RequireParent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsParent(r.Context()) {
			writeError(w, http.StatusForbidden, "parent code required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
