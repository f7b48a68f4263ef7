package services

import (
	"math"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// Fixed cost added to every reassignment candidate so that keeping the
// recorded mode wins whenever it is plausible.
const reassignmentBaseCost = 20.0

type modePolicy struct {
	dayRange entities.DayRange
	group    entities.TransportGroup
}

type groupPair struct {
	from entities.TransportGroup
	to   entities.TransportGroup
}

// ModePolicyCatalog is the immutable table of transport modes, their
// plausible transit ranges, groups and switch rules.
type ModePolicyCatalog struct {
	policies   map[entities.TransportMode]modePolicy
	prohibited map[groupPair]struct{}
	assignable []entities.TransportMode
}

// DefaultCatalog returns the catalog used in production
func DefaultCatalog() *ModePolicyCatalog {
	inf := math.Inf(1)
	policies := map[entities.TransportMode]modePolicy{
		entities.ModeVessel:             {entities.DayRange{Low: 15, High: inf}, entities.GroupSlow},
		entities.ModeAir:                {entities.DayRange{Low: 0, High: 14}, entities.GroupInternationalFast},
		entities.ModeCourier:            {entities.DayRange{Low: 0, High: 7}, entities.GroupInternationalFast},
		entities.ModeTruck:              {entities.DayRange{Low: 0, High: 7}, entities.GroupDomestic},
		entities.ModeTrain:              {entities.DayRange{Low: 5, High: 10}, entities.GroupDomestic},
		entities.ModeTeleportation:      {entities.DayRange{Low: 0, High: 0.1}, entities.GroupUnknown},
		entities.ModeInternalTransfer:   {entities.DayRange{Low: 0, High: 5}, entities.GroupUnknown},
		entities.ModeUnknown:            {entities.DayRange{Low: 0, High: inf}, entities.GroupUnknown},
		entities.ModeInternationalTruck: {entities.DayRange{Low: 5, High: 10}, entities.GroupInternationalFast},
		entities.ModeInternationalTrain: {entities.DayRange{Low: 15, High: 40}, entities.GroupInternationalMiddle},
		entities.ModeDefault:            {entities.DayRange{Low: 0, High: inf}, entities.GroupUnknown},
	}

	prohibited := map[groupPair]struct{}{
		{entities.GroupDomestic, entities.GroupInternationalFast}:   {},
		{entities.GroupDomestic, entities.GroupInternationalMiddle}: {},
		{entities.GroupDomestic, entities.GroupSlow}:                {},
		{entities.GroupInternationalFast, entities.GroupDomestic}:   {},
		{entities.GroupSlow, entities.GroupDomestic}:                {},
	}

	return &ModePolicyCatalog{
		policies:   policies,
		prohibited: prohibited,
		assignable: []entities.TransportMode{
			entities.ModeVessel,
			entities.ModeAir,
			entities.ModeCourier,
			entities.ModeTruck,
			entities.ModeTrain,
		},
	}
}

// RangeOf returns the static transit range for a mode.
// Modes outside the table get [0, +Inf).
func (c *ModePolicyCatalog) RangeOf(mode entities.TransportMode) entities.DayRange {
	if p, ok := c.policies[mode]; ok {
		return p.dayRange
	}
	return entities.DayRange{Low: 0, High: math.Inf(1)}
}

// GroupOf returns the transport group of a mode
func (c *ModePolicyCatalog) GroupOf(mode entities.TransportMode) entities.TransportGroup {
	if p, ok := c.policies[mode]; ok {
		return p.group
	}
	return entities.GroupUnknown
}

// IsSwitchAllowed reports whether a record recorded as 'from' may be reassigned to 'to'
func (c *ModePolicyCatalog) IsSwitchAllowed(from, to entities.TransportMode) bool {
	if from == to {
		return true
	}
	gFrom, gTo := c.GroupOf(from), c.GroupOf(to)
	if gFrom == gTo {
		return false
	}
	_, banned := c.prohibited[groupPair{gFrom, gTo}]
	return !banned
}

// SwitchPenalty scores how disruptive a move between two groups is. Staying
// in the same group is free.
func (c *ModePolicyCatalog) SwitchPenalty(a, b entities.TransportGroup) float64 {
	if a == b {
		return 0
	}
	if a.IsInternational() || b.IsInternational() {
		return 50
	}
	return 100
}

// CandidateScore is the cost of reassigning to a mode whose expected
// transit time is mean, given the observed transit days.
func (c *ModePolicyCatalog) CandidateScore(from, to entities.TransportMode, days, mean float64) float64 {
	return math.Abs(days-mean) + c.SwitchPenalty(c.GroupOf(from), c.GroupOf(to)) + reassignmentBaseCost
}

// AssignableModes returns the modes a record may be reassigned to, in catalog order
func (c *ModePolicyCatalog) AssignableModes() []entities.TransportMode {
	out := make([]entities.TransportMode, len(c.assignable))
	copy(out, c.assignable)
	return out
}

// DefaultLeadTime is the transport days assumed for a mode when nothing
// better is known.
func (c *ModePolicyCatalog) DefaultLeadTime(mode entities.TransportMode) int {
	r := c.RangeOf(mode)
	if !r.Bounded() {
		return int(r.Low) + 7
	}
	return int(math.Floor((r.Low + r.High) / 2))
}

// MaxBoundedHigh returns the largest finite upper bound among the modes of a group
func (c *ModePolicyCatalog) MaxBoundedHigh(group entities.TransportGroup) (float64, bool) {
	best, found := 0.0, false
	for _, p := range c.policies {
		if p.group != group || !p.dayRange.Bounded() {
			continue
		}
		if !found || p.dayRange.High > best {
			best, found = p.dayRange.High, true
		}
	}
	return best, found
}
