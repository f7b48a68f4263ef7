package eta

import (
	"strings"
	"time"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// newRecommendation copies the identifying fields of a line into a recommendation
func newRecommendation(line *OpenLine) *entities.ETARecommendation {
	mode := line.TransportMode
	if mode == "" {
		mode = entities.ModeDefault
	}
	return &entities.ETARecommendation{
		ItemCode:              line.ItemCode,
		Warehouse:             line.Warehouse,
		PONumber:              line.PONumber,
		POLine:                line.POLine,
		VendorCode:            line.VendorCode,
		TransportMode:         mode,
		FallbackTotalLeadUsed: line.FallbackTotalLeadUsed,
	}
}

func setETA(rec *entities.ETARecommendation, date time.Time) {
	rec.ETADate = entities.Day(date)
	rec.ETAWeek = entities.YearWeek(rec.ETADate)
}

// ConfirmedSimulator uses the supplier-confirmed invoice date as the ETA
type ConfirmedSimulator struct{}

// Simulate estimates confirmed lines. Lines whose week already passed get an overdue notice.
func (ConfirmedSimulator) Simulate(lines []*OpenLine, now time.Time) []RowResult {
	thisWeek := entities.YearWeek(now)
	results := make([]RowResult, 0, len(lines))
	for _, line := range lines {
		if !line.HasInvoiceDate() {
			results = append(results, failed(line, entities.CaseConfirmed, ErrMissingInvoiceDate))
			continue
		}
		rec := newRecommendation(line)
		setETA(rec, line.InvoiceDate)
		rec.Quantity = line.RemainingQty
		rec.Flag = entities.FlagConfirmedDate
		rec.Comment = line.Comment
		if rec.ETAWeek < thisWeek {
			rec.Comment = strings.TrimSpace(rec.Comment + " " + entities.OverdueComment)
		}
		results = append(results, succeeded(line, entities.CaseConfirmed, rec))
	}
	return results
}
