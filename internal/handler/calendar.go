package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/ledger"
	"github.com/dukerupert/foyer/internal/model"
)

// LedgerHandler serves the read-only views: completion calendar, ranking and
// treasury.
type LedgerHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

func NewLedgerHandler(e *engine.Engine, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{engine: e, logger: logger}
}

// Completions lists history for ?window=day|week|month around ?date=.
func (h *LedgerHandler) Completions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := ledger.ParseWindow(q.Get("window"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	anchor := h.engine.Now()
	if s := q.Get("date"); s != "" {
		anchor, err = time.ParseInLocation(model.DateLayout, s, anchor.Location())
		if err != nil {
			writeError(w, h.logger, &model.ValidationError{Field: "date", Message: "expected YYYY-MM-DD"})
			return
		}
	}

	from, to := window.Bounds(anchor)
	records := h.engine.Calendar(window, anchor, q.Get("member"))
	if records == nil {
		records = []model.CompletionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"window":  window,
		"from":    from,
		"to":      to,
		"records": records,
	})
}

func (h *LedgerHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Ranking())
}

func (h *LedgerHandler) Treasury(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Progress())
}
