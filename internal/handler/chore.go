package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/model"
)

// ChoreHandler serves the task catalog and the claim workflow.
type ChoreHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewChoreHandler(e *engine.Engine, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{engine: e, logger: logger}
}

type taskRequest struct {
	Name        string   `json:"name"`
	Points      int      `json:"points"`
	Category    string   `json:"category"`
	Roles       []string `json:"roles"`
	Frequency   string   `json:"frequency"`
	Description string   `json:"description"`
	WeeklyCap   int      `json:"weekly_cap"`
	Uncapped    bool     `json:"uncapped"`
	Cadence     string   `json:"cadence"`
}

func (req taskRequest) definition() (model.TaskDefinition, error) {
	def := model.TaskDefinition{
		Name:        req.Name,
		Points:      req.Points,
		Category:    req.Category,
		Frequency:   model.Frequency(req.Frequency),
		Description: req.Description,
		WeeklyCap:   req.WeeklyCap,
		Uncapped:    req.Uncapped,
		Cadence:     req.Cadence,
	}
	for _, s := range req.Roles {
		role, err := model.ParseRole(s)
		if err != nil {
			return model.TaskDefinition{}, err
		}
		def.Roles = append(def.Roles, role)
	}
	return def, nil
}

// ListTasks returns the member's tasks grouped by category with eligibility.
// Without a member (query or session) the whole catalog is returned.
func (h *ChoreHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	member := r.URL.Query().Get("member")
	if member == "" {
		member = auth.ActiveMember(r.Context())
	}
	if member == "" {
		writeJSON(w, http.StatusOK, h.engine.AllTasks())
		return
	}

	groups, err := h.engine.Tasks(member)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *ChoreHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	def, err := req.definition()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	created, err := h.engine.CreateTask(r.Context(), def)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ChoreHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteTask(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type claimRequest struct {
	Task   string `json:"task"`
	Member string `json:"member"`
}

func (h *ChoreHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Pending())
}

// Submit files a claim for parent validation.
func (h *ChoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	member, err := actingMember(r, req.Member)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	claim, err := h.engine.Submit(r.Context(), req.Task, member)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, claim)
}

func (h *ChoreHandler) Settle(w http.ResponseWriter, r *http.Request) {
	rec, err := h.engine.Settle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ChoreHandler) Reject(w http.ResponseWriter, r *http.Request) {
	claim, err := h.engine.Reject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// DirectSettle records and validates a completion in one step.
func (h *ChoreHandler) DirectSettle(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	member, err := actingMember(r, req.Member)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	rec, err := h.engine.DirectSettle(r.Context(), req.Task, member)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}
