package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/backup"
	"github.com/dukerupert/foyer/internal/model"
)

const maxBodyBytes = 1 << 20

var (
	errForbidden = errors.New("parent code required to act for another member")
	errNoMember  = errors.New("member is required")
)

type errorResponse struct {
	Error        string `json:"error"`
	Field        string `json:"field,omitempty"`
	Reason       string `json:"reason,omitempty"`
	NextEligible string `json:"next_eligible,omitempty"`
	Balance      *int   `json:"balance,omitempty"`
	Price        *int   `json:"price,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses. Anything unrecognised is
// logged and reported as 500 without details.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		ve *model.ValidationError
		ie *model.IneligibleError
		ip *model.InsufficientPointsError
		ao *model.AlreadyOwnedError
		nf *model.NotFoundError
		ae *model.AuthenticationError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.As(err, &ie):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ie.Error(), Reason: ie.Reason, NextEligible: ie.NextEligible})
	case errors.As(err, &ip):
		writeJSON(w, http.StatusPaymentRequired, errorResponse{Error: ip.Error(), Balance: &ip.Balance, Price: &ip.Price})
	case errors.As(err, &ao):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ao.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
	case errors.As(err, &ae):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ae.Error()})
	case errors.Is(err, errForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, errNoMember):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "member"})
	case errors.Is(err, backup.ErrNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeJSON reads the request body into v. An empty body leaves v untouched
// when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
	return false
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

// actingMember resolves who an action is performed for. Without an explicit
// member the session's active member is used; acting for someone else needs
// the parent code.
func actingMember(r *http.Request, requested string) (string, error) {
	active := auth.ActiveMember(r.Context())
	switch {
	case requested == "" && active == "":
		return "", errNoMember
	case requested == "":
		return active, nil
	case requested != active && !auth.IsParent(r.Context()):
		return "", errForbidden
	}
	return requested, nil
}
