package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/model"
)

type MemberHandler struct {
	engine   *engine.Engine
	sessions *auth.Sessions
	logger   *slog.Logger
}

func NewMemberHandler(e *engine.Engine, sessions *auth.Sessions, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{engine: e, sessions: sessions, logger: logger}
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	var role model.Role
	if s := r.URL.Query().Get("role"); s != "" {
		var err error
		if role, err = model.ParseRole(s); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.engine.Members(role))
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.engine.AddMember(r.Context(), role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Rename changes a member's name everywhere, including active sessions.
func (h *MemberHandler) Rename(w http.ResponseWriter, r *http.Request) {
	oldName := r.PathValue("name")
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}

	newName := strings.TrimSpace(req.Name)
	if err := h.engine.RenameMember(r.Context(), oldName, newName); err != nil {
		writeError(w, h.logger, err)
		return
	}
	m, err := h.engine.Member(newName)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.sessions.RenameMember(oldName, m.Name)
	writeJSON(w, http.StatusOK, m)
}

func (h *MemberHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.engine.ChangeRole(r.Context(), name, role); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Member{Name: name, Role: role})
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RemoveMember(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
