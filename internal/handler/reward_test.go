package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/model"
	"github.com/dukerupert/foyer/internal/reward"
)

// earn gives member points through settled tasks: a 25-point one-off plus a
// 5-point unrestricted task.
func earn(t *testing.T, e *engine.Engine, member string) {
	t.Helper()
	for _, task := range []string{"Aide aux courses", "Coup de main"} {
		if _, err := e.DirectSettle(context.Background(), task, member); err != nil {
			t.Fatalf("settle %s: %v", task, err)
		}
	}
}

func TestPurchase(t *testing.T) {
	e := setupEngine(t)
	h := NewRewardHandler(e, quietLogger())
	earn(t, e, "Enfant 1")

	req := newRequest("POST", "/", nil, child())
	req.SetPathValue("id", "4")
	rec := httptest.NewRecorder()
	h.Purchase(rec, req)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expensive purchase status = %d, want %d", rec.Code, http.StatusPaymentRequired)
	}
	body := decode[errorResponse](t, rec)
	if body.Balance == nil || *body.Balance != 30 {
		t.Errorf("balance = %v, want 30", body.Balance)
	}

	req = newRequest("POST", "/", nil, child())
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	h.Purchase(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[purchaseResponse](t, rec)
	if got.Purchase.Price != 30 || got.Ticket != nil {
		t.Errorf("response = %+v, want price 30 and no ticket", got)
	}

	rec = httptest.NewRecorder()
	h.List(rec, newRequest("GET", "/api/rewards", nil, child()))
	offers := decode[[]reward.Offer](t, rec)
	if len(offers) == 0 {
		t.Fatal("no offers")
	}
	for _, o := range offers {
		if o.Affordable {
			t.Errorf("reward %d affordable with 0 points", o.ID)
		}
	}
}

func TestPurchaseInvalidID(t *testing.T) {
	h := NewRewardHandler(setupEngine(t), quietLogger())
	req := newRequest("POST", "/", nil, child())
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	h.Purchase(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestQueuedDelivery(t *testing.T) {
	policy := engine.DefaultPolicy()
	policy.Fulfillment = reward.FulfillmentQueued
	e := setupEngine(t, engine.WithPolicy(policy))
	h := NewRewardHandler(e, quietLogger())
	earn(t, e, "Enfant 1")

	req := newRequest("POST", "/", nil, child())
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Purchase(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[purchaseResponse](t, rec)
	if got.Ticket == nil {
		t.Fatal("queued purchase should return a ticket")
	}

	rec = httptest.NewRecorder()
	h.Deliveries(rec, newRequest("GET", "/api/deliveries", nil, parent()))
	if tickets := decode[[]model.DeliveryTicket](t, rec); len(tickets) != 1 {
		t.Fatalf("tickets = %d, want 1", len(tickets))
	}

	for i, want := range []int{http.StatusOK, http.StatusNotFound} {
		req = newRequest("POST", "/", nil, parent())
		req.SetPathValue("id", got.Ticket.ID)
		rec = httptest.NewRecorder()
		h.Deliver(rec, req)
		if rec.Code != want {
			t.Errorf("deliver #%d status = %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestRewardCatalogEdits(t *testing.T) {
	h := NewRewardHandler(setupEngine(t), quietLogger())

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest("POST", "/api/rewards", rewardRequest{Name: "Glace", Price: 25}, parent()))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	created := decode[model.Reward](t, rec)
	if created.ID != 1000 {
		t.Errorf("id = %d, want 1000", created.ID)
	}

	req := newRequest("PUT", "/", rewardRequest{Name: "Glace double", Price: 35}, parent())
	req.SetPathValue("id", "1000")
	rec = httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[model.Reward](t, rec); got.Name != "Glace double" || got.Price != 35 {
		t.Errorf("updated = %+v", got)
	}

	req = newRequest("DELETE", "/", nil, parent())
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("delete builtin status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = httptest.NewRecorder()
	h.Create(rec, newRequest("POST", "/api/rewards", rewardRequest{Name: "", Price: 25}, parent()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
