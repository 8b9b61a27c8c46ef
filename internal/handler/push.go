package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/model"
	"github.com/dukerupert/foyer/internal/push"
)

type PushHandler struct {
	registry *push.Registry
	service  *push.Service
	notifier *push.Notifier
	engine   *engine.Engine
	logger   *slog.Logger
}

func NewPushHandler(reg *push.Registry, svc *push.Service, n *push.Notifier, e *engine.Engine, logger *slog.Logger) *PushHandler {
	return &PushHandler{registry: reg, service: svc, notifier: n, engine: e, logger: logger}
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
	Member   string `json:"member"`
}

// GetVAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

// Subscribe handles POST /api/push/subscriptions
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if !strings.HasPrefix(req.Endpoint, "https://") || req.P256dh == "" || req.Auth == "" {
		writeError(w, h.logger, &model.ValidationError{Field: "endpoint", Message: "endpoint, p256dh and auth are required"})
		return
	}

	member, err := actingMember(r, req.Member)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if _, err := h.engine.Member(member); err != nil {
		writeError(w, h.logger, err)
		return
	}

	sub := push.Subscription{
		Endpoint:  req.Endpoint,
		P256dh:    req.P256dh,
		Auth:      req.Auth,
		Member:    member,
		CreatedAt: h.engine.Now().UTC(),
	}
	h.registry.Add(sub)
	writeJSON(w, http.StatusCreated, sub)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe handles DELETE /api/push/subscriptions
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if !h.registry.Remove(req.Endpoint) {
		writeError(w, h.logger, &model.NotFoundError{Kind: "subscription", Key: req.Endpoint})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestNotification handles POST /api/push/test
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	member, err := actingMember(r, "")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	sent := h.notifier.SendTo(r.Context(), member, push.Payload{
		Title: "Notification de test",
		Body:  "Les notifications fonctionnent !",
		URL:   "/",
		Tag:   "test",
	})
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
