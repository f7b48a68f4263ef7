package transport

import (
	"math"

	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/application/services/leadtime"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// DefaultToleranceDays is how far an observed transit time may sit from the window mean
const DefaultToleranceDays = 5.0

// CorrectOptions controls one Correct call
type CorrectOptions struct {
	// Overwrite writes the predicted mode back into TransportMode
	Overwrite bool
	// MapCourierToAir rewrites Courier as Air before evaluation
	MapCourierToAir bool
}

// CorrectionStats counts the outcome of a Correct call
type CorrectionStats struct {
	Accepted   int `json:"accepted"`
	Reassigned int `json:"reassigned"`
	Unresolved int `json:"unresolved"`
	NoEvidence int `json:"no_evidence"`
}

// Add accumulates another call's counts
func (s *CorrectionStats) Add(other CorrectionStats) {
	s.Accepted += other.Accepted
	s.Reassigned += other.Reassigned
	s.Unresolved += other.Unresolved
	s.NoEvidence += other.NoEvidence
}

// Corrector detects implausible recorded transport modes and predicts the
// most likely actual mode from the observed transit time.
type Corrector struct {
	catalog   *services.ModePolicyCatalog
	resolver  *leadtime.Resolver
	tolerance float64
	logger    *zap.Logger
}

// NewCorrector creates a corrector; a negative tolerance selects DefaultToleranceDays
func NewCorrector(resolver *leadtime.Resolver, toleranceDays float64, logger *zap.Logger) *Corrector {
	if toleranceDays < 0 {
		toleranceDays = DefaultToleranceDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Corrector{
		catalog:   resolver.Catalog(),
		resolver:  resolver,
		tolerance: toleranceDays,
		logger:    logger,
	}
}

// WithTolerance returns a copy of the corrector using another tolerance
func (c *Corrector) WithTolerance(toleranceDays float64) *Corrector {
	cp := *c
	cp.tolerance = toleranceDays
	return &cp
}

type windowKey struct {
	mode      entities.TransportMode
	vendor    string
	warehouse string
}

// Correct returns corrected copies of records. The input records are not modified.
func (c *Corrector) Correct(records []*entities.ShipmentRecord, opts CorrectOptions) ([]*entities.ShipmentRecord, CorrectionStats) {
	var stats CorrectionStats
	windows := make(map[windowKey]entities.LeadTimeWindow)
	windowOf := func(mode entities.TransportMode, vendor, warehouse string) entities.LeadTimeWindow {
		k := windowKey{mode: mode, vendor: vendor, warehouse: warehouse}
		if w, ok := windows[k]; ok {
			return w
		}
		w := c.resolver.RangeOf(mode, vendor, warehouse)
		windows[k] = w
		return w
	}

	out := make([]*entities.ShipmentRecord, len(records))
	for i, src := range records {
		r := *src
		if r.OriginalTransportMode == "" {
			r.OriginalTransportMode = r.TransportMode
		}
		if opts.MapCourierToAir && r.TransportMode == entities.ModeCourier {
			r.TransportMode = entities.ModeAir
		}

		if r.TransportTime == nil {
			r.PredictedTransportMode = r.TransportMode
			r.ModeStatus = entities.ModeNoEvidence
			stats.NoEvidence++
			out[i] = &r
			continue
		}

		predicted, status := c.predict(&r, *r.TransportTime, windowOf)
		r.PredictedTransportMode = predicted
		r.ModeStatus = status
		if opts.Overwrite {
			r.TransportMode = predicted
		}

		switch status {
		case entities.ModeAccepted:
			stats.Accepted++
		case entities.ModeReassigned:
			stats.Reassigned++
			c.logger.Debug("transport mode reassigned",
				zap.String("po", r.PONumber),
				zap.String("line", r.POLine),
				zap.String("from", r.OriginalTransportMode.String()),
				zap.String("to", predicted.String()),
				zap.Float64("transit_days", *r.TransportTime))
		case entities.ModeUnresolved:
			stats.Unresolved++
			c.logger.Debug("implausible transport mode kept, no candidate fits",
				zap.String("po", r.PONumber),
				zap.String("line", r.POLine),
				zap.String("mode", r.TransportMode.String()),
				zap.Float64("transit_days", *r.TransportTime))
		}
		out[i] = &r
	}
	return out, stats
}

func (c *Corrector) predict(
	r *entities.ShipmentRecord,
	days float64,
	windowOf func(entities.TransportMode, string, string) entities.LeadTimeWindow,
) (entities.TransportMode, entities.ModeStatus) {
	mode := r.TransportMode
	w := windowOf(mode, r.VendorCode, r.Warehouse)
	if c.plausible(w, days) {
		return mode, entities.ModeAccepted
	}

	best, bestScore, found := mode, math.Inf(1), false
	for _, cand := range c.catalog.AssignableModes() {
		if cand == mode || !c.catalog.IsSwitchAllowed(mode, cand) {
			continue
		}
		cw := windowOf(cand, r.VendorCode, r.Warehouse)
		if !cw.Contains(days) {
			continue
		}
		score := c.catalog.CandidateScore(mode, cand, days, cw.Mean)
		if !found || score < bestScore {
			best, bestScore, found = cand, score, true
		}
	}
	if !found {
		return mode, entities.ModeUnresolved
	}
	return best, entities.ModeReassigned
}

// plausible reports whether days fits the window and lies within tolerance
// of its mean. An infinite mean never matches.
func (c *Corrector) plausible(w entities.LeadTimeWindow, days float64) bool {
	return w.Contains(days) && math.Abs(days-w.Mean) <= c.tolerance
}
