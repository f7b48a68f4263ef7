package delivery

import (
	"time"

	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/application/services/leadtime"
	"github.com/ErrorLSC/QMS/pkg/application/services/transport"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// DefaultToleranceDays is the corrector tolerance applied to historical records
const DefaultToleranceDays = 2.0

// Unifier merges closed history and open in-transit records into one
// delivery record set with corrected modes and virtual sub-lines.
type Unifier struct {
	catalog   *services.ModePolicyCatalog
	stats     leadtime.TransportStatLookup
	tolerance float64
	logger    *zap.Logger
}

// NewUnifier creates a unifier; a negative tolerance selects DefaultToleranceDays
func NewUnifier(catalog *services.ModePolicyCatalog, stats leadtime.TransportStatLookup, toleranceDays float64, logger *zap.Logger) *Unifier {
	if toleranceDays < 0 {
		toleranceDays = DefaultToleranceDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Unifier{catalog: catalog, stats: stats, tolerance: toleranceDays, logger: logger}
}

// MergeResult is the unified record set and what mode correction did to the history part
type MergeResult struct {
	Records     []*entities.ShipmentRecord
	Corrections transport.CorrectionStats
}

// Merge builds the unified delivery record set. Inputs are not modified.
func (u *Unifier) Merge(hist, inTransit []*entities.ShipmentRecord) MergeResult {
	histCopy := make([]*entities.ShipmentRecord, 0, len(hist))
	for _, h := range hist {
		r := *h
		r.Source = entities.SourceHistory
		histCopy = append(histCopy, &r)
	}

	cache := leadtime.BuildFallbackCache(u.catalog, histCopy, u.logger)
	resolver := leadtime.NewResolver(u.catalog, u.stats, cache, u.logger)
	corrector := transport.NewCorrector(resolver, u.tolerance, u.logger)
	corrected, stats := corrector.Correct(histCopy, transport.CorrectOptions{Overwrite: true, MapCourierToAir: true})

	all := make([]*entities.ShipmentRecord, 0, len(corrected)+len(inTransit))
	for _, r := range corrected {
		r.ShippedQty = r.ReceivedQty
		all = append(all, r)
	}

	dropped := 0
	for _, g := range inTransit {
		if !g.HasInvoiceDate() {
			dropped++
			continue
		}
		r := *g
		r.Source = entities.SourceInTransit
		r.ShippedQty = r.InTransitQty
		r.ActualDeliveryDate = time.Time{}
		r.Closed = false
		all = append(all, &r)
	}
	if dropped > 0 {
		u.logger.Debug("in-transit records without invoice date left out of delivery records", zap.Int("count", dropped))
	}

	unified := services.AssignSublines(all,
		func(r *entities.ShipmentRecord) (string, string) { return r.PONumber + "\x00" + r.POLine, r.POLine },
		deliveredBefore,
		func(r *entities.ShipmentRecord, line string) *entities.ShipmentRecord {
			r.UnifiedLine = line
			return r
		},
	)

	groupSize := make(map[entities.LineKey]int, len(unified))
	for _, r := range unified {
		r.BaseLine = services.BaseLine(r.POLine)
		groupSize[entities.LineKey{PONumber: r.PONumber, POLine: r.BaseLine}]++
	}
	for _, r := range unified {
		r.SplitDelivery = groupSize[entities.LineKey{PONumber: r.PONumber, POLine: r.BaseLine}] > 1
	}

	u.logger.Info("delivery records unified",
		zap.Int("history", len(hist)),
		zap.Int("in_transit", len(inTransit)-dropped),
		zap.Int("reassigned", stats.Reassigned),
		zap.Int("unresolved", stats.Unresolved))

	return MergeResult{Records: unified, Corrections: stats}
}

// deliveredBefore orders by invoice date, then actual delivery date; missing dates sort last
func deliveredBefore(a, b *entities.ShipmentRecord) bool {
	if c := compareDates(a.InvoiceDate, b.InvoiceDate); c != 0 {
		return c < 0
	}
	return compareDates(a.ActualDeliveryDate, b.ActualDeliveryDate) < 0
}

func compareDates(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// LastShipments maps (PO, base line) to the latest invoice date seen in the delivery records
type LastShipments map[entities.LineKey]time.Time

// LastShipmentLookup builds the latest shipment date per (PO, base line)
func LastShipmentLookup(unified []*entities.ShipmentRecord) LastShipments {
	out := make(LastShipments)
	for _, r := range unified {
		if !r.HasInvoiceDate() {
			continue
		}
		k := entities.LineKey{PONumber: r.PONumber, POLine: services.BaseLine(r.POLine)}
		if cur, ok := out[k]; !ok || r.InvoiceDate.After(cur) {
			out[k] = r.InvoiceDate
		}
	}
	return out
}

// Get returns the last shipment date of a PO line; the line may be a sub-line
func (l LastShipments) Get(poNumber, poLine string) (time.Time, bool) {
	t, ok := l[entities.LineKey{PONumber: poNumber, POLine: services.BaseLine(poLine)}]
	return t, ok
}
