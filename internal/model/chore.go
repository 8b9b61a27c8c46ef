package model

import (
	"slices"
	"time"
)

type Frequency string

const (
	FrequencyNone   Frequency = "none"
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyOneOff Frequency = "oneoff"
)

// DateLayout is the calendar-day format used for CompletionRecord.Date.
// Dates in this layout sort lexically in chronological order.
const DateLayout = "2006-01-02"

// TaskDefinition describes a claimable household task. WeeklyCap, Uncapped and
// Cadence are only meaningful for weekly tasks.
type TaskDefinition struct {
	Name        string    `json:"name"`
	Points      int       `json:"points"`
	Category    string    `json:"category"`
	Roles       []Role    `json:"roles"`
	Frequency   Frequency `json:"frequency"`
	Description string    `json:"description"`
	WeeklyCap   int       `json:"weekly_cap,omitempty"`
	Uncapped    bool      `json:"uncapped,omitempty"`
	Cadence     string    `json:"cadence,omitempty"`
	Builtin     bool      `json:"-"`
}

// AllowedFor reports whether members with the given role may claim the task.
func (t TaskDefinition) AllowedFor(role Role) bool {
	return slices.Contains(t.Roles, role)
}

// Cap returns the number of completions allowed per Monday-anchored week.
func (t TaskDefinition) Cap() int {
	if t.WeeklyCap > 0 {
		return t.WeeklyCap
	}
	return 1
}

type CompletionRecord struct {
	ClaimID   string    `json:"claim_id,omitempty"`
	Task      string    `json:"task"`
	Member    string    `json:"member"`
	Date      string    `json:"date"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
	Validated bool      `json:"validated"`
}

type PendingClaim struct {
	ID          string    `json:"id"`
	Member      string    `json:"member"`
	Task        string    `json:"task"`
	Points      int       `json:"points"`
	SubmittedAt time.Time `json:"submitted_at"`
}
