package entities

import (
	"math"
	"testing"
	"time"
)

func TestYearWeek(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected string
	}{
		{"mid_year", time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), "2025-24W"},
		{"single_digit_week", time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC), "2025-02W"},
		{"iso_year_rollover", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-01W"},
		{"zero_time", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YearWeek(tt.date); got != tt.expected {
				t.Errorf("YearWeek(%s) = %q, want %q", tt.date, got, tt.expected)
			}
		})
	}
}

func TestDaysBetween(t *testing.T) {
	from := time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)
	to := time.Date(2025, 6, 11, 2, 0, 0, 0, time.UTC)
	if got := DaysBetween(from, to); got != 10 {
		t.Errorf("Expected 10 days, got %d", got)
	}
	if got := DaysBetween(to, from); got != -10 {
		t.Errorf("Expected -10 days, got %d", got)
	}
}

func TestDaysBetween_AcrossLocations(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	invoice := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, jst)
	if got := DaysBetween(invoice, now); got != 15 {
		t.Errorf("Expected 15 days from a UTC date to a JST clock, got %d", got)
	}

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, ny)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, ny)
	if got := DaysBetween(from, to); got != 31 {
		t.Errorf("Expected 31 days across the DST change, got %d", got)
	}
}

func TestDayRange(t *testing.T) {
	r := DayRange{Low: 15, High: math.Inf(1)}
	if r.Bounded() {
		t.Errorf("Range with infinite high must not be bounded")
	}
	if !r.Contains(400) || r.Contains(14) {
		t.Errorf("Unexpected containment for %v", r)
	}

	b := DayRange{Low: 5, High: 10}
	if b.Midpoint() != 7.5 {
		t.Errorf("Expected midpoint 7.5, got %v", b.Midpoint())
	}
}
