package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/foyer/internal/backup"
	"github.com/dukerupert/foyer/internal/model"
)

// BackupHandler exposes on-demand encrypted backups. All routes are
// parent-only.
type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(m *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: m, logger: logger}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.manager.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}

	rec, err := h.manager.RunNow(r.Context(), req.Passphrase)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key        string `json:"key"`
		Passphrase string `json:"passphrase"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.Key == "" {
		writeError(w, h.logger, &model.ValidationError{Field: "key", Message: "key is required"})
		return
	}

	if err := h.manager.Restore(r.Context(), req.Key, req.Passphrase); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}
