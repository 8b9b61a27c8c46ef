package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/dukerupert/foyer/internal/eligibility"
	"github.com/dukerupert/foyer/internal/model"
)

type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case WindowDay, WindowWeek, WindowMonth:
		return Window(s), nil
	case "":
		return WindowDay, nil
	}
	return "", &model.ValidationError{Field: "window", Message: fmt.Sprintf("unknown window %q", s)}
}

// Bounds returns the first and last calendar dates of the window containing
// anchor, inclusive.
func (w Window) Bounds(anchor time.Time) (from, to string) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	var start, end time.Time
	switch w {
	case WindowWeek:
		start = eligibility.WeekStart(day)
		end = start.AddDate(0, 0, 6)
	case WindowMonth:
		start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		end = start.AddDate(0, 1, -1)
	default:
		start, end = day, day
	}
	return start.Format(model.DateLayout), end.Format(model.DateLayout)
}

// Calendar lists the history records dated inside the window, newest first.
// An empty member matches everyone.
func Calendar(st *model.State, w Window, anchor time.Time, member string) []model.CompletionRecord {
	from, to := w.Bounds(anchor)
	out := []model.CompletionRecord{}
	for _, h := range st.History {
		if h.Date < from || h.Date > to {
			continue
		}
		if member != "" && h.Member != member {
			continue
		}
		out = append(out, h)
	}
	slices.SortStableFunc(out, func(a, b model.CompletionRecord) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// Ranking lists roster members by balance, highest first. Equal balances
// share a rank and are ordered by name.
func Ranking(st *model.State) []model.Standing {
	out := make([]model.Standing, 0, len(st.Members))
	for _, m := range st.Members {
		out = append(out, model.Standing{Member: m.Name, Role: m.Role, Points: st.Ranking[m.Name]})
	}
	slices.SortFunc(out, func(a, b model.Standing) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.Member, b.Member)
	})
	for i := range out {
		if i > 0 && out[i].Points == out[i-1].Points {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}

// Goal is the shared target the treasury is saved toward.
type Goal struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type TreasuryProgress struct {
	Goal      Goal    `json:"goal"`
	Treasury  int     `json:"treasury"`
	Remaining int     `json:"remaining"`
	Ratio     float64 `json:"ratio"`
	Reached   bool    `json:"reached"`
}

func Progress(st *model.State, goal Goal) TreasuryProgress {
	p := TreasuryProgress{Goal: goal, Treasury: st.Treasury}
	if goal.Points <= 0 {
		p.Ratio = 1
		p.Reached = true
		return p
	}
	p.Remaining = max(goal.Points-st.Treasury, 0)
	p.Ratio = min(float64(st.Treasury)/float64(goal.Points), 1)
	p.Reached = st.Treasury >= goal.Points
	return p
}
