package eta

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ErrorLSC/QMS/pkg/application/services/delivery"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// TailParams describes how the unshipped remainder of a line is expected to arrive
type TailParams struct {
	Count        int
	IntervalDays int
	TailShare    decimal.Decimal
	MinBatch     int64
	Flag         entities.ETAFlag
}

// TailParamStrategy is one tier of the tail batch parameter cascade
type TailParamStrategy interface {
	Name() string
	Params(line *OpenLine) (TailParams, bool)
}

// BehavioralTailParams reads batch parameters from the line's batch profile
// and delivery behaviour. It declines when the total lead time was itself a
// fallback value.
type BehavioralTailParams struct{}

func (BehavioralTailParams) Name() string { return "behavioral" }

func (BehavioralTailParams) Params(line *OpenLine) (TailParams, bool) {
	if line.Profile == nil || line.Profile.PredictedBatchCount == nil || line.FallbackTotalLeadUsed {
		return TailParams{}, false
	}
	p := TailParams{
		Count:        *line.Profile.PredictedBatchCount,
		IntervalDays: 7,
		Flag:         entities.FlagTailBatch,
	}
	if p.Count < 1 {
		p.Count = 1
	}
	if v := line.Profile.PredictedIntervalDays; v != nil && *v > 0 {
		p.IntervalDays = int(*v)
	}
	if v := line.Profile.PredictedTailQtyRate; v != nil && *v > 0 {
		p.TailShare = decimal.NewFromFloat(*v)
	}
	if line.Behavior != nil && line.Behavior.MaxSingleBatchQty != nil {
		p.MinBatch = int64(*line.Behavior.MaxSingleBatchQty)
	}
	return p, true
}

// SelfBootstrapTailParams infers the shipping interval from other shipments
// of the same PO line and assumes the remainder arrives in one batch.
type SelfBootstrapTailParams struct {
	shipments map[entities.LineKey][]*entities.ShipmentRecord
	minBatch  int64
}

// NewSelfBootstrapTailParams indexes unified delivery records by (PO, base line)
func NewSelfBootstrapTailParams(unified []*entities.ShipmentRecord, minBatch int64) *SelfBootstrapTailParams {
	idx := make(map[entities.LineKey][]*entities.ShipmentRecord)
	for _, r := range unified {
		if !r.HasInvoiceDate() {
			continue
		}
		base := r.BaseLine
		if base == "" {
			base = services.BaseLine(r.POLine)
		}
		k := entities.LineKey{PONumber: r.PONumber, POLine: base}
		idx[k] = append(idx[k], r)
	}
	for _, rs := range idx {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].InvoiceDate.Before(rs[j].InvoiceDate) })
	}
	return &SelfBootstrapTailParams{shipments: idx, minBatch: minBatch}
}

func (*SelfBootstrapTailParams) Name() string { return "self_bootstrap" }

func (s *SelfBootstrapTailParams) Params(line *OpenLine) (TailParams, bool) {
	k := entities.LineKey{PONumber: line.PONumber, POLine: services.BaseLine(line.POLine)}
	var others []*entities.ShipmentRecord
	for _, r := range s.shipments[k] {
		name := r.UnifiedLine
		if name == "" {
			name = r.POLine
		}
		if name != line.POLine {
			others = append(others, r)
		}
	}
	if len(others) < 2 {
		return TailParams{}, false
	}
	return TailParams{
		Count:        1,
		IntervalDays: entities.DaysBetween(others[0].InvoiceDate, others[1].InvoiceDate),
		MinBatch:     s.minBatch,
		Flag:         entities.FlagTailBatchSelfBoot,
	}, true
}

// DefaultTailParams always answers with configured defaults
type DefaultTailParams struct {
	IntervalDays int
	Count        int
	MinBatch     int64
}

func (DefaultTailParams) Name() string { return "default" }

func (d DefaultTailParams) Params(*OpenLine) (TailParams, bool) {
	return TailParams{
		Count:        d.Count,
		IntervalDays: d.IntervalDays,
		MinBatch:     d.MinBatch,
		Flag:         entities.FlagTailBatchDefault,
	}, true
}

// TailBatchSimulator produces the remaining batches of partially shipped lines
type TailBatchSimulator struct {
	strategies      []TailParamStrategy
	lastShipments   delivery.LastShipments
	days            *TransportDays
	defaultLeadDays int
}

// NewTailBatchSimulator creates the simulator with the behavioral, self-bootstrap, default cascade
func NewTailBatchSimulator(unified []*entities.ShipmentRecord, last delivery.LastShipments, days *TransportDays, opts Options) *TailBatchSimulator {
	return NewTailBatchSimulatorWith(last, days, opts.TailDefaultLeadDays,
		BehavioralTailParams{},
		NewSelfBootstrapTailParams(unified, opts.TailMinBatchQty),
		DefaultTailParams{IntervalDays: opts.TailIntervalDays, Count: opts.TailBatchCount, MinBatch: opts.TailMinBatchQty},
	)
}

// NewTailBatchSimulatorWith creates the simulator with an explicit strategy list
func NewTailBatchSimulatorWith(last delivery.LastShipments, days *TransportDays, defaultLeadDays int, strategies ...TailParamStrategy) *TailBatchSimulator {
	return &TailBatchSimulator{
		strategies:      strategies,
		lastShipments:   last,
		days:            days,
		defaultLeadDays: defaultLeadDays,
	}
}

// Simulate splits each line's remainder into batches shipped at a fixed
// interval after the last known shipment.
func (s *TailBatchSimulator) Simulate(lines []*OpenLine) []RowResult {
	results := make([]RowResult, 0, len(lines))
	for _, line := range lines {
		recs, err := s.simulateLine(line)
		if err != nil {
			results = append(results, failed(line, entities.CaseSplitInProgress, err))
			continue
		}
		results = append(results, succeeded(line, entities.CaseSplitInProgress, recs...))
	}
	return results
}

func (s *TailBatchSimulator) simulateLine(line *OpenLine) ([]*entities.ETARecommendation, error) {
	last, err := s.lastShipment(line)
	if err != nil {
		return nil, err
	}

	params, found := TailParams{}, false
	for _, st := range s.strategies {
		if params, found = st.Params(line); found {
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("no tail batch parameters")
	}

	total := line.RemainingQty.Round(0).IntPart()
	qtys := SplitQuantity(total, params.Count, params.TailShare, params.MinBatch)
	if len(qtys) == 0 {
		return nil, ErrNonPositiveQty
	}

	lead := s.days.Resolve(line.VendorCode, line.Warehouse, line.TransportMode)
	recs := make([]*entities.ETARecommendation, 0, len(qtys))
	for i, q := range qtys {
		ship := entities.AddDays(last, params.IntervalDays*(i+1))
		rec := newRecommendation(line)
		rec.POLine = services.SublineName(line.POLine, i+1)
		setETA(rec, entities.AddDays(ship, lead.Days))
		rec.Quantity = decimal.NewFromInt(q)
		rec.Flag = params.Flag
		rec.BatchIndex = i + 1
		rec.IsFinalBatch = entities.Bool(i == len(qtys)-1)
		rec.FallbackTransportUsed = lead.Fallback
		recs = append(recs, rec)
	}
	return recs, nil
}

// lastShipment is the latest known invoice date of the line, or the PO entry
// date plus total lead time when nothing has shipped yet.
func (s *TailBatchSimulator) lastShipment(line *OpenLine) (time.Time, error) {
	if t, ok := s.lastShipments.Get(line.PONumber, line.POLine); ok {
		return t, nil
	}
	if line.POEntryDate.IsZero() {
		return time.Time{}, ErrMissingEntryDate
	}
	lead := s.defaultLeadDays
	if line.TotalLeadTime != nil && *line.TotalLeadTime > 0 {
		lead = int(*line.TotalLeadTime)
	}
	return entities.AddDays(line.POEntryDate, lead), nil
}
