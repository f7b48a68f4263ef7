package eta

import (
	"strings"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

var confirmationMarkers = []string{"DELIVERY DATE CONFIRMED", "ESTIMATED DELIVERY DATE"}

// Cases is the partition of open lines by delivery state
type Cases struct {
	Confirmed       []*OpenLine
	Shipped         []*OpenLine
	SplitInProgress []*OpenLine
	LikelySplit     []*OpenLine
	SingleDelivery  []*OpenLine
}

// Total returns the number of routed lines
func (c Cases) Total() int {
	return len(c.Confirmed) + len(c.Shipped) + len(c.SplitInProgress) + len(c.LikelySplit) + len(c.SingleDelivery)
}

// Counts returns the number of lines per case
func (c Cases) Counts() map[entities.CaseLabel]int {
	return map[entities.CaseLabel]int{
		entities.CaseConfirmed:       len(c.Confirmed),
		entities.CaseShipped:         len(c.Shipped),
		entities.CaseSplitInProgress: len(c.SplitInProgress),
		entities.CaseLikelySplit:     len(c.LikelySplit),
		entities.CaseSingleDelivery:  len(c.SingleDelivery),
	}
}

// Classify returns the case of one line; the first matching rule wins
func Classify(line *OpenLine) entities.CaseLabel {
	switch {
	case isConfirmed(line.Comment):
		return entities.CaseConfirmed
	case line.InTransitQty.IsPositive():
		return entities.CaseShipped
	case line.RemainingQty.IsPositive() && line.RemainingQty.LessThan(line.OrderedQty):
		return entities.CaseSplitInProgress
	case line.RemainingQty.Equal(line.OrderedQty) && line.BatchProne():
		return entities.CaseLikelySplit
	default:
		return entities.CaseSingleDelivery
	}
}

// Route partitions lines into cases. Every line lands in exactly one case.
func Route(lines []*OpenLine) Cases {
	var c Cases
	for _, l := range lines {
		switch Classify(l) {
		case entities.CaseConfirmed:
			c.Confirmed = append(c.Confirmed, l)
		case entities.CaseShipped:
			c.Shipped = append(c.Shipped, l)
		case entities.CaseSplitInProgress:
			c.SplitInProgress = append(c.SplitInProgress, l)
		case entities.CaseLikelySplit:
			c.LikelySplit = append(c.LikelySplit, l)
		default:
			c.SingleDelivery = append(c.SingleDelivery, l)
		}
	}
	return c
}

func isConfirmed(comment string) bool {
	norm := strings.ToUpper(comment)
	for _, m := range confirmationMarkers {
		if strings.Contains(norm, m) {
			return true
		}
	}
	return false
}
