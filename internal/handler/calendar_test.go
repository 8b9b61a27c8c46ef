package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/foyer/internal/ledger"
	"github.com/dukerupert/foyer/internal/model"
)

type completionsResponse struct {
	Window  string                   `json:"window"`
	From    string                   `json:"from"`
	To      string                   `json:"to"`
	Records []model.CompletionRecord `json:"records"`
}

func TestCompletions(t *testing.T) {
	e := setupEngine(t)
	h := NewLedgerHandler(e, quietLogger())
	if _, err := e.DirectSettle(context.Background(), "Machine à laver", "Parent 1"); err != nil {
		t.Fatalf("settle: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Completions(rec, newRequest("GET", "/api/completions?window=week&date=2026-10-22", nil, child()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[completionsResponse](t, rec)
	if got.From != "2026-10-19" || got.To != "2026-10-25" {
		t.Errorf("bounds = %s..%s, want 2026-10-19..2026-10-25", got.From, got.To)
	}
	if len(got.Records) != 1 {
		t.Errorf("records = %d, want 1", len(got.Records))
	}

	rec = httptest.NewRecorder()
	h.Completions(rec, newRequest("GET", "/api/completions?member=Enfant+1", nil, child()))
	if got := decode[completionsResponse](t, rec); len(got.Records) != 0 || got.Window != string(ledger.WindowDay) {
		t.Errorf("child day view = %+v, want empty day window", got)
	}
}

func TestCompletionsBadInput(t *testing.T) {
	h := NewLedgerHandler(setupEngine(t), quietLogger())
	for _, target := range []string{"/api/completions?window=year", "/api/completions?date=22/10/2026"} {
		rec := httptest.NewRecorder()
		h.Completions(rec, newRequest("GET", target, nil, child()))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestRankingAndTreasury(t *testing.T) {
	e := setupEngine(t)
	h := NewLedgerHandler(e, quietLogger())
	if _, err := e.DirectSettle(context.Background(), "Aspirateur", "Parent 1"); err != nil {
		t.Fatalf("settle: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Ranking(rec, newRequest("GET", "/api/ranking", nil, child()))
	standings := decode[[]model.Standing](t, rec)
	if len(standings) != 2 || standings[0].Member != "Parent 1" || standings[0].Points != 30 {
		t.Errorf("ranking = %+v", standings)
	}

	rec = httptest.NewRecorder()
	h.Treasury(rec, newRequest("GET", "/api/treasury", nil, child()))
	progress := decode[ledger.TreasuryProgress](t, rec)
	if progress.Treasury != 30 || progress.Remaining != 70 {
		t.Errorf("progress = %+v, want 30 saved and 70 remaining", progress)
	}
}
