package eta

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

var (
	ErrMissingInvoiceDate = errors.New("missing invoice date")
	ErrMissingEntryDate   = errors.New("missing PO entry date")
	ErrNonPositiveQty     = errors.New("quantity must be positive")
)

// PreconditionError reports SingleDelivery lines that reached simulation
// without a total lead time.
type PreconditionError struct {
	Lines []entities.LineKey
}

func (e *PreconditionError) Error() string {
	names := make([]string, len(e.Lines))
	for i, k := range e.Lines {
		names[i] = k.String()
	}
	return fmt.Sprintf("%d single-delivery line(s) have no total lead time after fallback: %s",
		len(e.Lines), strings.Join(names, ", "))
}

// RowResult is the outcome of simulating one open line: recommendations or a failure reason
type RowResult struct {
	Key  entities.LineKey
	Case entities.CaseLabel
	Recs []*entities.ETARecommendation
	Err  error
}

func succeeded(line *OpenLine, c entities.CaseLabel, recs ...*entities.ETARecommendation) RowResult {
	return RowResult{Key: line.Key(), Case: c, Recs: recs}
}

func failed(line *OpenLine, c entities.CaseLabel, err error) RowResult {
	return RowResult{Key: line.Key(), Case: c, Err: err}
}

// SkipEntry is one line the engine could not estimate
type SkipEntry struct {
	Key    entities.LineKey   `json:"key"`
	Case   entities.CaseLabel `json:"case"`
	Reason string             `json:"reason"`
}

// SkipLog collects skipped lines
type SkipLog []SkipEntry

// Count returns the number of skipped lines
func (l SkipLog) Count() int {
	return len(l)
}

// Partition separates successful rows from failures
func Partition(results []RowResult) ([]*entities.ETARecommendation, SkipLog) {
	var recs []*entities.ETARecommendation
	var skips SkipLog
	for _, r := range results {
		if r.Err != nil {
			skips = append(skips, SkipEntry{Key: r.Key, Case: r.Case, Reason: r.Err.Error()})
			continue
		}
		recs = append(recs, r.Recs...)
	}
	return recs, skips
}
