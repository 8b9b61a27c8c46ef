package cadence

import (
	"testing"
	"time"
)

func TestParseFreqOnly(t *testing.T) {
	tests := []struct {
		input string
		freq  Freq
	}{
		{"FREQ=DAILY", Daily},
		{"FREQ=WEEKLY", Weekly},
	}

	for _, tt := range tests {
		r, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if r.Freq != tt.freq {
			t.Errorf("Parse(%q).Freq = %d, want %d", tt.input, r.Freq, tt.freq)
		}
	}
}

func TestParseByDay(t *testing.T) {
	r, err := Parse("FREQ=WEEKLY;BYDAY=TU,FR")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(r.ByDay) != 2 || r.ByDay[0] != time.Tuesday || r.ByDay[1] != time.Friday {
		t.Errorf("ByDay = %v, want [Tuesday Friday]", r.ByDay)
	}
	if got := r.String(); got != "FREQ=WEEKLY;BYDAY=TU,FR" {
		t.Errorf("String() = %q, want %q", got, "FREQ=WEEKLY;BYDAY=TU,FR")
	}
	if got := r.Describe(); got != "Tue, Fri" {
		t.Errorf("Describe() = %q, want %q", got, "Tue, Fri")
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"BYDAY=MO",
		"FREQ=MONTHLY",
		"FREQ=WEEKLY;BYDAY=XX",
		"FREQ=WEEKLY;INTERVAL=2",
		"FREQ=DAILY;BYDAY=MO",
		"FREQ",
	}
	for _, input := range bad {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}

func TestNext(t *testing.T) {
	r, _ := Parse("FREQ=WEEKLY;BYDAY=TU,FR")

	tests := []struct {
		from time.Time
		want time.Time
	}{
		// Monday -> Tuesday
		{time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC), time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		// Tuesday -> same day
		{time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC), time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		// Saturday -> next Tuesday
		{time.Date(2026, 10, 24, 8, 0, 0, 0, time.UTC), time.Date(2026, 10, 27, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := r.Next(tt.from); !got.Equal(tt.want) {
			t.Errorf("Next(%v) = %v, want %v", tt.from, got, tt.want)
		}
	}
}

func TestNextDaily(t *testing.T) {
	r, _ := Parse("FREQ=DAILY")
	from := time.Date(2026, 10, 24, 8, 30, 0, 0, time.UTC)
	want := time.Date(2026, 10, 24, 0, 0, 0, 0, time.UTC)
	if got := r.Next(from); !got.Equal(want) {
		t.Errorf("Next = %v, want %v", got, want)
	}
	if r.Describe() != "every day" {
		t.Errorf("Describe() = %q, want %q", r.Describe(), "every day")
	}
}
