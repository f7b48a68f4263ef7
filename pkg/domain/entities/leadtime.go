package entities

import "math"

// LeadTimeTier names the evidence that produced a lead-time value
type LeadTimeTier int

const (
	TierStatic LeadTimeTier = iota
	TierStatistical
	TierFallback
)

// String method for LeadTimeTier enum
func (t LeadTimeTier) String() string {
	switch t {
	case TierStatic:
		return "Static"
	case TierStatistical:
		return "Statistical"
	case TierFallback:
		return "Fallback"
	default:
		return "Unknown"
	}
}

// DayRange is a closed interval of days; High may be +Inf
type DayRange struct {
	Low  float64
	High float64
}

// Contains reports whether days lies inside the range
func (r DayRange) Contains(days float64) bool {
	return r.Low <= days && days <= r.High
}

// Bounded reports whether the range has a finite upper bound
func (r DayRange) Bounded() bool {
	return !math.IsInf(r.High, 1)
}

// Midpoint returns the middle of the range (+Inf when unbounded)
func (r DayRange) Midpoint() float64 {
	return (r.Low + r.High) / 2
}

// LeadTimeWindow is the plausible transit window resolved for one (mode, vendor, warehouse)
type LeadTimeWindow struct {
	Low  float64
	High float64
	Mean float64
	Tier LeadTimeTier
}

// Contains reports whether days lies inside [Low, High]
func (w LeadTimeWindow) Contains(days float64) bool {
	return w.Low <= days && days <= w.High
}
