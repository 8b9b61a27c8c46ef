package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/foyer/internal/catalog"
	"github.com/dukerupert/foyer/internal/eligibility"
	"github.com/dukerupert/foyer/internal/household"
	"github.com/dukerupert/foyer/internal/ledger"
	"github.com/dukerupert/foyer/internal/model"
	"github.com/dukerupert/foyer/internal/reward"
)

// Roster

func (e *Engine) Members(role model.Role) []model.Member {
	var out []model.Member
	e.view(func(st *model.State) { out = household.Members(st, role) })
	return out
}

func (e *Engine) Member(name string) (model.Member, error) {
	var (
		m   model.Member
		err error
	)
	e.view(func(st *model.State) { m, err = household.Find(st, name) })
	return m, err
}

func (e *Engine) AddMember(ctx context.Context, role model.Role) (model.Member, error) {
	var m model.Member
	err := e.update(ctx, "add_member", func(st *model.State) (Event, error) {
		var err error
		m, err = household.AddMember(st, role)
		return Event{Entity: "member", Action: "created", ID: m.Name}, err
	})
	return m, err
}

func (e *Engine) RenameMember(ctx context.Context, oldName, newName string) error {
	return e.update(ctx, "rename_member", func(st *model.State) (Event, error) {
		return Event{Entity: "member", Action: "renamed", ID: newName, Member: oldName},
			household.RenameMember(st, oldName, newName)
	})
}

func (e *Engine) ChangeRole(ctx context.Context, name string, role model.Role) error {
	return e.update(ctx, "change_role", func(st *model.State) (Event, error) {
		return Event{Entity: "member", Action: "updated", ID: name}, household.ChangeRole(st, name, role)
	})
}

func (e *Engine) RemoveMember(ctx context.Context, name string) error {
	return e.update(ctx, "remove_member", func(st *model.State) (Event, error) {
		return Event{Entity: "member", Action: "deleted", ID: name}, household.RemoveMember(st, name)
	})
}

// Tasks

// TaskGroup is one display category with the member's eligibility for each
// task.
type TaskGroup struct {
	Category string                   `json:"category"`
	Tasks    []eligibility.TaskStatus `json:"tasks"`
}

// Tasks lists the tasks available to member, grouped by category.
func (e *Engine) Tasks(member string) ([]TaskGroup, error) {
	today := e.Now()
	var (
		out []TaskGroup
		err error
	)
	e.view(func(st *model.State) {
		var m model.Member
		m, err = household.Find(st, member)
		if err != nil {
			return
		}
		for _, g := range catalog.ListFor(st, m.Role) {
			out = append(out, TaskGroup{
				Category: g.Category,
				Tasks:    eligibility.EvaluateAll(g.Tasks, m, st.History, today, e.eligibilityOptions()),
			})
		}
	})
	return out, err
}

func (e *Engine) AllTasks() []model.TaskDefinition {
	var out []model.TaskDefinition
	e.view(func(st *model.State) { out = catalog.All(st) })
	return out
}

func (e *Engine) CreateTask(ctx context.Context, def model.TaskDefinition) (model.TaskDefinition, error) {
	var created model.TaskDefinition
	err := e.update(ctx, "create_task", func(st *model.State) (Event, error) {
		var err error
		created, err = catalog.CreateCustom(st, def)
		return Event{Entity: "task", Action: "created", ID: created.Name}, err
	})
	return created, err
}

func (e *Engine) DeleteTask(ctx context.Context, name string) error {
	return e.update(ctx, "delete_task", func(st *model.State) (Event, error) {
		return Event{Entity: "task", Action: "deleted", ID: name}, catalog.DeleteCustom(st, name)
	})
}

// Claims

func (e *Engine) Submit(ctx context.Context, task, member string) (model.PendingClaim, error) {
	now := e.Now()
	var claim model.PendingClaim
	err := e.update(ctx, "submit", func(st *model.State) (Event, error) {
		var err error
		claim, err = ledger.Submit(st, task, member, now, e.eligibilityOptions())
		return Event{Entity: "claim", Action: "submitted", ID: claim.ID, Member: member}, err
	})
	return claim, err
}

func (e *Engine) Settle(ctx context.Context, claimID string) (model.CompletionRecord, error) {
	var rec model.CompletionRecord
	err := e.update(ctx, "settle", func(st *model.State) (Event, error) {
		var err error
		rec, err = ledger.Settle(st, claimID, e.loc)
		return Event{Entity: "claim", Action: "settled", ID: claimID, Member: rec.Member}, err
	})
	return rec, err
}

func (e *Engine) Reject(ctx context.Context, claimID string) (model.PendingClaim, error) {
	var claim model.PendingClaim
	err := e.update(ctx, "reject", func(st *model.State) (Event, error) {
		var err error
		claim, err = ledger.Reject(st, claimID)
		return Event{Entity: "claim", Action: "rejected", ID: claimID, Member: claim.Member}, err
	})
	return claim, err
}

func (e *Engine) DirectSettle(ctx context.Context, task, member string) (model.CompletionRecord, error) {
	now := e.Now()
	var rec model.CompletionRecord
	err := e.update(ctx, "direct_settle", func(st *model.State) (Event, error) {
		var err error
		rec, err = ledger.DirectSettle(st, task, member, now, e.eligibilityOptions())
		return Event{Entity: "completion", Action: "settled", ID: task, Member: member}, err
	})
	return rec, err
}

func (e *Engine) Pending() []model.PendingClaim {
	var out []model.PendingClaim
	e.view(func(st *model.State) { out = ledger.Pending(st) })
	return out
}

func (e *Engine) Calendar(w ledger.Window, anchor time.Time, member string) []model.CompletionRecord {
	var out []model.CompletionRecord
	e.view(func(st *model.State) { out = ledger.Calendar(st, w, anchor.In(e.loc), member) })
	return out
}

func (e *Engine) Ranking() []model.Standing {
	var out []model.Standing
	e.view(func(st *model.State) { out = ledger.Ranking(st) })
	return out
}

func (e *Engine) Progress() ledger.TreasuryProgress {
	var out ledger.TreasuryProgress
	e.view(func(st *model.State) { out = ledger.Progress(st, e.policy.Goal) })
	return out
}

// Rewards

func (e *Engine) Rewards(member string) ([]reward.Offer, error) {
	var (
		out []reward.Offer
		err error
	)
	e.view(func(st *model.State) { out, err = reward.List(st, member, e.rewardOptions()) })
	return out, err
}

func (e *Engine) AllRewards() []model.Reward {
	var out []model.Reward
	e.view(func(st *model.State) { out = reward.All(st) })
	return out
}

func (e *Engine) Purchase(ctx context.Context, member string, id int64) (model.PurchaseRecord, *model.DeliveryTicket, error) {
	now := e.Now()
	var (
		rec    model.PurchaseRecord
		ticket *model.DeliveryTicket
	)
	err := e.update(ctx, "purchase", func(st *model.State) (Event, error) {
		var err error
		rec, ticket, err = reward.Purchase(st, member, id, now, e.rewardOptions())
		return Event{Entity: "reward", Action: "purchased", ID: fmt.Sprint(id), Member: member}, err
	})
	return rec, ticket, err
}

func (e *Engine) Deliveries() []model.DeliveryTicket {
	var out []model.DeliveryTicket
	e.view(func(st *model.State) { out = append([]model.DeliveryTicket{}, st.Deliveries...) })
	return out
}

func (e *Engine) MarkDelivered(ctx context.Context, ticketID string) (model.DeliveryTicket, error) {
	var ticket model.DeliveryTicket
	err := e.update(ctx, "deliver", func(st *model.State) (Event, error) {
		var err error
		ticket, err = reward.MarkDelivered(st, ticketID)
		return Event{Entity: "delivery", Action: "delivered", ID: ticketID, Member: ticket.Member}, err
	})
	return ticket, err
}

func (e *Engine) CreateReward(ctx context.Context, def model.Reward) (model.Reward, error) {
	var created model.Reward
	err := e.update(ctx, "create_reward", func(st *model.State) (Event, error) {
		var err error
		created, err = reward.Create(st, def)
		return Event{Entity: "reward", Action: "created", ID: fmt.Sprint(created.ID)}, err
	})
	return created, err
}

func (e *Engine) UpdateReward(ctx context.Context, def model.Reward) (model.Reward, error) {
	var updated model.Reward
	err := e.update(ctx, "update_reward", func(st *model.State) (Event, error) {
		var err error
		updated, err = reward.Update(st, def)
		return Event{Entity: "reward", Action: "updated", ID: fmt.Sprint(def.ID)}, err
	})
	return updated, err
}

func (e *Engine) DeleteReward(ctx context.Context, id int64) error {
	return e.update(ctx, "delete_reward", func(st *model.State) (Event, error) {
		return Event{Entity: "reward", Action: "deleted", ID: fmt.Sprint(id)}, reward.Delete(st, id)
	})
}
