// Package cadence parses the small RRULE subset used to describe fixed
// household schedules, such as the weekday the bins are collected.
package cadence

import (
	"fmt"
	"strings"
	"time"
)

type Freq int

const (
	Daily Freq = iota
	Weekly
)

var freqNames = map[Freq]string{
	Daily:  "DAILY",
	Weekly: "WEEKLY",
}

var freqFromName = map[string]Freq{
	"DAILY":  Daily,
	"WEEKLY": Weekly,
}

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

type Rule struct {
	Freq  Freq
	ByDay []time.Weekday // WEEKLY only; empty means every day of the week
}

// Parse parses a rule like "FREQ=WEEKLY;BYDAY=TU,FR".
func Parse(rule string) (Rule, error) {
	if rule == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	var r Rule
	var hasFreq bool

	for _, part := range strings.Split(rule, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return Rule{}, fmt.Errorf("invalid rule part: %q", part)
		}
		key, val := kv[0], kv[1]

		switch key {
		case "FREQ":
			f, ok := freqFromName[val]
			if !ok {
				return Rule{}, fmt.Errorf("unknown frequency: %q", val)
			}
			r.Freq = f
			hasFreq = true

		case "BYDAY":
			for _, d := range strings.Split(val, ",") {
				wd, ok := dayNames[strings.TrimSpace(d)]
				if !ok {
					return Rule{}, fmt.Errorf("unknown day: %q", d)
				}
				r.ByDay = append(r.ByDay, wd)
			}

		default:
			return Rule{}, fmt.Errorf("unsupported rule key: %q", key)
		}
	}

	if !hasFreq {
		return Rule{}, fmt.Errorf("FREQ is required")
	}
	if r.Freq == Daily && len(r.ByDay) > 0 {
		return Rule{}, fmt.Errorf("BYDAY requires FREQ=WEEKLY")
	}

	return r, nil
}

// String serializes the rule back to RRULE form.
func (r Rule) String() string {
	s := "FREQ=" + freqNames[r.Freq]
	if len(r.ByDay) > 0 {
		var days []string
		for _, d := range r.ByDay {
			days = append(days, dayAbbrev[d])
		}
		s += ";BYDAY=" + strings.Join(days, ",")
	}
	return s
}

// Describe returns a short human-readable form, e.g. "Tue, Fri".
func (r Rule) Describe() string {
	if r.Freq == Daily || len(r.ByDay) == 0 {
		return "every day"
	}
	var names []string
	for _, d := range r.ByDay {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ", ")
}

// Next returns the first day on or after from that matches the rule,
// truncated to midnight in from's location.
func (r Rule) Next(from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	if r.Freq == Daily || len(r.ByDay) == 0 {
		return day
	}
	for i := 0; i < 7; i++ {
		candidate := day.AddDate(0, 0, i)
		for _, d := range r.ByDay {
			if candidate.Weekday() == d {
				return candidate
			}
		}
	}
	return day
}
