package eta

import (
	"time"

	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/application/services/transport"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// ShippedSimulator estimates arrival of goods already on the way
type ShippedSimulator struct {
	catalog   *services.ModePolicyCatalog
	corrector *transport.Corrector
	days      *TransportDays
	logger    *zap.Logger
}

// NewShippedSimulator creates the simulator. corrector may be nil to skip mode correction.
func NewShippedSimulator(catalog *services.ModePolicyCatalog, corrector *transport.Corrector, days *TransportDays, logger *zap.Logger) *ShippedSimulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippedSimulator{catalog: catalog, corrector: corrector, days: days, logger: logger}
}

// Simulate returns ETA = invoice date + transport days. Fast shipments that
// have been travelling longer than any fast mode allows are re-checked by the
// corrector first.
func (s *ShippedSimulator) Simulate(lines []*OpenLine, now time.Time) ([]RowResult, transport.CorrectionStats) {
	var stats transport.CorrectionStats
	threshold, hasThreshold := s.catalog.MaxBoundedHigh(entities.GroupInternationalFast)

	modes := make([]entities.TransportMode, len(lines))
	var suspects []*entities.ShipmentRecord
	var suspectIdx []int
	for i, line := range lines {
		modes[i] = line.TransportMode
		if !line.HasInvoiceDate() {
			continue
		}
		elapsed := float64(entities.DaysBetween(line.InvoiceDate, now))
		if hasThreshold && s.catalog.GroupOf(line.TransportMode) == entities.GroupInternationalFast && elapsed > threshold {
			rec := *line.ShipmentRecord
			rec.TransportTime = entities.Float(elapsed)
			suspects = append(suspects, &rec)
			suspectIdx = append(suspectIdx, i)
		}
	}

	if len(suspects) > 0 && s.corrector != nil {
		corrected, cs := s.corrector.Correct(suspects, transport.CorrectOptions{Overwrite: true})
		stats = cs
		for j, r := range corrected {
			modes[suspectIdx[j]] = r.TransportMode
		}
		s.logger.Info("re-checked transport mode of overdue fast shipments",
			zap.Int("count", len(suspects)),
			zap.Float64("threshold_days", threshold),
			zap.Int("reassigned", cs.Reassigned))
	}

	results := make([]RowResult, 0, len(lines))
	for i, line := range lines {
		if !line.HasInvoiceDate() {
			results = append(results, failed(line, entities.CaseShipped, ErrMissingInvoiceDate))
			continue
		}
		rec := newRecommendation(line)
		rec.TransportMode = modes[i]
		lead := s.days.Resolve(line.VendorCode, line.Warehouse, modes[i])
		setETA(rec, entities.AddDays(line.InvoiceDate, lead.Days))
		rec.Quantity = line.InTransitQty
		rec.Flag = entities.FlagTransportEstimated
		rec.FallbackTransportUsed = lead.Fallback
		results = append(results, succeeded(line, entities.CaseShipped, rec))
	}
	return results, stats
}
