// Package eligibility decides whether a member may claim a task today, and
// when a blocked task next opens up.
package eligibility

import (
	"fmt"
	"time"

	"github.com/dukerupert/foyer/internal/cadence"
	"github.com/dukerupert/foyer/internal/model"
)

type Options struct {
	// OneOffRepeatable lets one-off tasks be claimed again after a first
	// completion.
	OneOffRepeatable bool
}

type Result struct {
	Eligible     bool   `json:"eligible"`
	Reason       string `json:"reason,omitempty"`
	NextEligible string `json:"next_eligible,omitempty"`
	NextLabel    string `json:"next_label,omitempty"`
}

// Err converts a negative result into an IneligibleError.
func (r Result) Err(task model.TaskDefinition, member model.Member) error {
	if r.Eligible {
		return nil
	}
	return &model.IneligibleError{
		Task:         task.Name,
		Member:       member.Name,
		Reason:       r.Reason,
		NextEligible: r.NextEligible,
	}
}

// TaskStatus pairs a task with its evaluation for one member.
type TaskStatus struct {
	model.TaskDefinition
	Status Result `json:"status"`
}

// Evaluate applies the task's recurrence rule to the member's history. Both
// validated and pending records count.
func Evaluate(task model.TaskDefinition, member model.Member, history []model.CompletionRecord, today time.Time, opts Options) Result {
	today = startOfDay(today)

	if !task.AllowedFor(member.Role) {
		return Result{Reason: fmt.Sprintf("not available to %s members", member.Role)}
	}

	switch task.Frequency {
	case model.FrequencyDaily:
		date := today.Format(model.DateLayout)
		for _, h := range history {
			if h.Task == task.Name && h.Member == member.Name && h.Date == date {
				tomorrow := today.AddDate(0, 0, 1)
				return Result{
					Reason:       "already done today",
					NextEligible: tomorrow.Format(model.DateLayout),
					NextLabel:    "tomorrow",
				}
			}
		}
		return Result{Eligible: true}

	case model.FrequencyWeekly:
		if task.Uncapped {
			return Result{Eligible: true, NextLabel: pickupLabel(task, today)}
		}
		start := WeekStart(today)
		from := start.Format(model.DateLayout)
		count := 0
		for _, h := range history {
			if h.Task == task.Name && h.Member == member.Name && h.Date >= from {
				count++
			}
		}
		limit := task.Cap()
		if count >= limit {
			next := start.AddDate(0, 0, 7)
			return Result{
				Reason:       fmt.Sprintf("weekly limit of %d reached", limit),
				NextEligible: next.Format(model.DateLayout),
				NextLabel:    "Monday " + next.Format(model.DateLayout),
			}
		}
		return Result{Eligible: true, NextLabel: fmt.Sprintf("%d of %d left this week", limit-count, limit)}

	case model.FrequencyOneOff:
		if opts.OneOffRepeatable {
			return Result{Eligible: true}
		}
		for _, h := range history {
			if h.Task == task.Name && h.Member == member.Name {
				return Result{Reason: "already done"}
			}
		}
		return Result{Eligible: true}
	}

	return Result{Eligible: true}
}

// EvaluateAll evaluates every task for member.
func EvaluateAll(tasks []model.TaskDefinition, member model.Member, history []model.CompletionRecord, today time.Time, opts Options) []TaskStatus {
	out := make([]TaskStatus, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskStatus{TaskDefinition: t, Status: Evaluate(t, member, history, today, opts)})
	}
	return out
}

// WeekStart returns midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func pickupLabel(task model.TaskDefinition, today time.Time) string {
	if task.Cadence == "" {
		return "no weekly limit"
	}
	rule, err := cadence.Parse(task.Cadence)
	if err != nil {
		return "no weekly limit"
	}
	next := rule.Next(today)
	return fmt.Sprintf("Pickup %s; next %s %s", rule.Describe(), next.Weekday().String()[:3], next.Format(model.DateLayout))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
