package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/middleware"
)

// SessionHandler manages device sessions: the active member and the parent
// unlock.
type SessionHandler struct {
	sessions *auth.Sessions
	engine   *engine.Engine
	logger   *slog.Logger
}

func NewSessionHandler(sessions *auth.Sessions, e *engine.Engine, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, engine: e, logger: logger}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	writeJSON(w, http.StatusCreated, sess)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, sess)
}

func (h *SessionHandler) SetMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Member string `json:"member"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	name := strings.TrimSpace(req.Member)
	if name != "" {
		if _, err := h.engine.Member(name); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	sess, _ := auth.FromContext(r.Context())
	updated, err := h.sessions.SetMember(sess.Token, name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// EnterParent unlocks parent actions when the code matches.
func (h *SessionHandler) EnterParent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}

	sess, _ := auth.FromContext(r.Context())
	updated, err := h.sessions.Authenticate(sess.Token, strings.TrimSpace(req.Code))
	if err != nil {
		h.logger.Warn("parent code rejected", "remote", middleware.RealIP(r))
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *SessionHandler) ExitParent(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	updated, err := h.sessions.Logout(sess.Token)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
