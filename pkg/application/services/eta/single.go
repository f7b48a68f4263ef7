package eta

import (
	"math"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// SingleDeliverySimulator estimates lines expected to arrive in one shipment
type SingleDeliverySimulator struct {
	// AbortOnPrecondition returns the PreconditionError instead of skipping the offending lines
	AbortOnPrecondition bool
}

// Simulate returns ETA = PO entry date + total lead time. Every line must
// carry a total lead time. With AbortOnPrecondition the lines lacking one
// fail the whole batch with a *PreconditionError; otherwise only those lines
// are skipped, each with its own *PreconditionError.
func (s SingleDeliverySimulator) Simulate(lines []*OpenLine) ([]RowResult, error) {
	var missing []entities.LineKey
	for _, line := range lines {
		if !hasTotalLead(line) {
			missing = append(missing, line.Key())
		}
	}
	if len(missing) > 0 && s.AbortOnPrecondition {
		return nil, &PreconditionError{Lines: missing}
	}

	results := make([]RowResult, 0, len(lines))
	for _, line := range lines {
		switch {
		case !hasTotalLead(line):
			results = append(results, failed(line, entities.CaseSingleDelivery, &PreconditionError{Lines: []entities.LineKey{line.Key()}}))
			continue
		case line.POEntryDate.IsZero():
			results = append(results, failed(line, entities.CaseSingleDelivery, ErrMissingEntryDate))
			continue
		case !line.RemainingQty.IsPositive():
			results = append(results, failed(line, entities.CaseSingleDelivery, ErrNonPositiveQty))
			continue
		}
		rec := newRecommendation(line)
		setETA(rec, entities.AddDays(line.POEntryDate, int(*line.TotalLeadTime)))
		rec.Quantity = line.RemainingQty
		rec.Comment = line.Comment
		rec.Flag = entities.FlagSimulatedSingle
		if line.FallbackTotalLeadUsed {
			rec.Flag = entities.FlagStaticWLEAD
		}
		results = append(results, succeeded(line, entities.CaseSingleDelivery, rec))
	}
	return results, nil
}

func hasTotalLead(line *OpenLine) bool {
	return line.TotalLeadTime != nil && !math.IsNaN(*line.TotalLeadTime)
}
