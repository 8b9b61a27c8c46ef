package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/model"
)

type RewardHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewRewardHandler(e *engine.Engine, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{engine: e, logger: logger}
}

type rewardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Style       string `json:"style"`
	OneTime     bool   `json:"one_time"`
}

func (req rewardRequest) reward(id int64) model.Reward {
	return model.Reward{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Style:       req.Style,
		OneTime:     req.OneTime,
	}
}

// List returns the shop for ?member= (or the active member) with
// affordability flags, or the bare catalog when no member is known.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	member := r.URL.Query().Get("member")
	if member == "" {
		member = auth.ActiveMember(r.Context())
	}
	if member == "" {
		writeJSON(w, http.StatusOK, h.engine.AllRewards())
		return
	}

	offers, err := h.engine.Rewards(member)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	created, err := h.engine.CreateReward(r.Context(), req.reward(0))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var req rewardRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	updated, err := h.engine.UpdateReward(r.Context(), req.reward(id))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := h.engine.DeleteReward(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type purchaseResponse struct {
	Purchase model.PurchaseRecord  `json:"purchase"`
	Ticket   *model.DeliveryTicket `json:"ticket,omitempty"`
}

// Purchase buys reward {id} for the body's member or the active member.
func (h *RewardHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	var req struct {
		Member string `json:"member"`
	}
	if !decodeJSON(w, r, &req, true) {
		return
	}
	member, err := actingMember(r, req.Member)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	rec, ticket, err := h.engine.Purchase(r.Context(), member, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchaseResponse{Purchase: rec, Ticket: ticket})
}

func (h *RewardHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Deliveries())
}

func (h *RewardHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.engine.MarkDelivered(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}
