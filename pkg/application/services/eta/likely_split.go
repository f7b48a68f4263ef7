package eta

import (
	"github.com/shopspring/decimal"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// LikelySplitSimulator spreads untouched lines of batch-prone items over the predicted batches
type LikelySplitSimulator struct {
	days *TransportDays
}

// NewLikelySplitSimulator creates the simulator
func NewLikelySplitSimulator(days *TransportDays) *LikelySplitSimulator {
	return &LikelySplitSimulator{days: days}
}

// Simulate ships batch i at PO entry + prepare days + interval*i (i from 0).
// Output lines are renamed "{line}-{k}" in ETA order when a line yields more than one batch.
func (s *LikelySplitSimulator) Simulate(lines []*OpenLine) []RowResult {
	results := make([]RowResult, 0, len(lines))
	for _, line := range lines {
		recs, err := s.simulateLine(line)
		if err != nil {
			results = append(results, failed(line, entities.CaseLikelySplit, err))
			continue
		}
		recs = services.AssignSublines(recs,
			func(r *entities.ETARecommendation) (string, string) { return r.PONumber + "\x00" + r.POLine, r.POLine },
			func(a, b *entities.ETARecommendation) bool { return a.ETADate.Before(b.ETADate) },
			func(r *entities.ETARecommendation, name string) *entities.ETARecommendation {
				r.POLine = name
				return r
			},
		)
		results = append(results, succeeded(line, entities.CaseLikelySplit, recs...))
	}
	return results
}

func (s *LikelySplitSimulator) simulateLine(line *OpenLine) ([]*entities.ETARecommendation, error) {
	if line.POEntryDate.IsZero() {
		return nil, ErrMissingEntryDate
	}

	count, interval, share := 1, 7, decimal.Zero
	if p := line.Profile; p != nil {
		if p.PredictedBatchCount != nil && *p.PredictedBatchCount > 0 {
			count = *p.PredictedBatchCount
		}
		if p.PredictedIntervalDays != nil && *p.PredictedIntervalDays > 0 {
			interval = int(*p.PredictedIntervalDays)
		}
		if p.PredictedTailQtyRate != nil {
			share = decimal.NewFromFloat(*p.PredictedTailQtyRate)
		}
	}

	qtys := SplitQuantity(line.RemainingQty.Round(0).IntPart(), count, share, 0)
	if len(qtys) == 0 {
		return nil, ErrNonPositiveQty
	}

	lead := s.days.Resolve(line.VendorCode, line.Warehouse, line.TransportMode)
	start := entities.AddDays(line.POEntryDate, line.PrepDays)
	recs := make([]*entities.ETARecommendation, 0, len(qtys))
	for i, q := range qtys {
		rec := newRecommendation(line)
		setETA(rec, entities.AddDays(start, interval*i+lead.Days))
		rec.Quantity = decimal.NewFromInt(q)
		rec.Flag = entities.FlagLikelySplitSimulated
		rec.BatchIndex = i + 1
		rec.IsFinalBatch = entities.Bool(i == len(qtys)-1)
		rec.FallbackTransportUsed = lead.Fallback
		recs = append(recs, rec)
	}
	return recs, nil
}
