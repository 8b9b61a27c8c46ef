// Package ledger implements the claim workflow: a member submits a completed
// task, a parent settles or rejects it, and settled points are credited to
// the member's ranking and the household treasury.
package ledger

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/foyer/internal/catalog"
	"github.com/dukerupert/foyer/internal/eligibility"
	"github.com/dukerupert/foyer/internal/model"
)

// Submit records a claim awaiting parent approval. The unvalidated history
// record is written immediately so it counts toward recurrence limits.
func Submit(st *model.State, taskName, memberName string, now time.Time, opts eligibility.Options) (model.PendingClaim, error) {
	task, member, err := check(st, taskName, memberName, now, opts)
	if err != nil {
		return model.PendingClaim{}, err
	}

	claim := model.PendingClaim{
		ID:          uuid.NewString(),
		Member:      member.Name,
		Task:        task.Name,
		Points:      task.Points,
		SubmittedAt: now.UTC(),
	}
	st.History = append(st.History, model.CompletionRecord{
		ClaimID:   claim.ID,
		Task:      task.Name,
		Member:    member.Name,
		Date:      now.Format(model.DateLayout),
		Points:    task.Points,
		Timestamp: now.UTC(),
	})
	st.Pending = append(st.Pending, claim)
	return claim, nil
}

// Settle approves a pending claim and credits its points. A claim that is no
// longer pending yields a NotFoundError and changes nothing. loc is the
// household zone, used to date a history record that has to be rebuilt.
func Settle(st *model.State, claimID string, loc *time.Location) (model.CompletionRecord, error) {
	i := slices.IndexFunc(st.Pending, func(c model.PendingClaim) bool { return c.ID == claimID })
	if i < 0 {
		return model.CompletionRecord{}, &model.NotFoundError{Kind: "claim", Key: claimID}
	}
	claim := st.Pending[i]
	if _, ok := st.FindMember(claim.Member); !ok {
		return model.CompletionRecord{}, &model.NotFoundError{Kind: "member", Key: claim.Member}
	}

	st.Pending = slices.Delete(st.Pending, i, i+1)
	st.Ranking[claim.Member] += claim.Points
	st.Treasury += claim.Points

	j := findRecord(st.History, claim)
	if j < 0 {
		// Snapshot predates claim ids and lost the record; restore it.
		st.History = append(st.History, model.CompletionRecord{
			ClaimID:   claim.ID,
			Task:      claim.Task,
			Member:    claim.Member,
			Date:      claim.SubmittedAt.In(loc).Format(model.DateLayout),
			Points:    claim.Points,
			Timestamp: claim.SubmittedAt,
		})
		j = len(st.History) - 1
	}
	st.History[j].Validated = true
	return st.History[j], nil
}

// Reject drops a pending claim without credit. Its history record stays
// unvalidated as a trace of the attempt.
func Reject(st *model.State, claimID string) (model.PendingClaim, error) {
	i := slices.IndexFunc(st.Pending, func(c model.PendingClaim) bool { return c.ID == claimID })
	if i < 0 {
		return model.PendingClaim{}, &model.NotFoundError{Kind: "claim", Key: claimID}
	}
	claim := st.Pending[i]
	st.Pending = slices.Delete(st.Pending, i, i+1)
	return claim, nil
}

// DirectSettle credits a completion observed by a parent, skipping the
// pending queue.
func DirectSettle(st *model.State, taskName, memberName string, now time.Time, opts eligibility.Options) (model.CompletionRecord, error) {
	task, member, err := check(st, taskName, memberName, now, opts)
	if err != nil {
		return model.CompletionRecord{}, err
	}

	rec := model.CompletionRecord{
		Task:      task.Name,
		Member:    member.Name,
		Date:      now.Format(model.DateLayout),
		Points:    task.Points,
		Timestamp: now.UTC(),
		Validated: true,
	}
	st.History = append(st.History, rec)
	st.Ranking[member.Name] += task.Points
	st.Treasury += task.Points
	return rec, nil
}

// Pending returns the claims awaiting approval, oldest first.
func Pending(st *model.State) []model.PendingClaim {
	out := slices.Clone(st.Pending)
	slices.SortStableFunc(out, func(a, b model.PendingClaim) int { return a.SubmittedAt.Compare(b.SubmittedAt) })
	return out
}

func check(st *model.State, taskName, memberName string, now time.Time, opts eligibility.Options) (model.TaskDefinition, model.Member, error) {
	member, ok := st.FindMember(memberName)
	if !ok {
		return model.TaskDefinition{}, model.Member{}, &model.NotFoundError{Kind: "member", Key: memberName}
	}
	task, ok := catalog.Find(st, taskName)
	if !ok {
		return model.TaskDefinition{}, model.Member{}, &model.NotFoundError{Kind: "task", Key: taskName}
	}
	res := eligibility.Evaluate(task, member, st.History, now, opts)
	if err := res.Err(task, member); err != nil {
		return model.TaskDefinition{}, model.Member{}, err
	}
	return task, member, nil
}

func findRecord(history []model.CompletionRecord, claim model.PendingClaim) int {
	if i := slices.IndexFunc(history, func(h model.CompletionRecord) bool { return h.ClaimID == claim.ID }); i >= 0 {
		return i
	}
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		if h.ClaimID == "" && !h.Validated && h.Task == claim.Task && h.Member == claim.Member {
			return i
		}
	}
	return -1
}
