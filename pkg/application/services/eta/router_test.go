package eta

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

func openLine(po, line string, ordered, remaining, inTransit int64) *OpenLine {
	return &OpenLine{ShipmentRecord: &entities.ShipmentRecord{
		PONumber:      po,
		POLine:        line,
		ItemCode:      "ITEM-1",
		Warehouse:     "WH1",
		VendorCode:    "V1",
		TransportMode: entities.ModeAir,
		OrderedQty:    decimal.NewFromInt(ordered),
		RemainingQty:  decimal.NewFromInt(remaining),
		InTransitQty:  decimal.NewFromInt(inTransit),
	}}
}

func TestClassify(t *testing.T) {
	confirmedAndShipped := openLine("PO1", "1", 100, 100, 5)
	confirmedAndShipped.Comment = "Estimated delivery date 06/30 per supplier"

	prone := openLine("PO1", "4", 100, 100, 0)
	prone.Profile = &entities.BatchProfile{BatchProne: true}

	notProne := openLine("PO1", "5", 100, 100, 0)
	notProne.Profile = &entities.BatchProfile{BatchProne: false}

	tests := []struct {
		name string
		line *OpenLine
		want entities.CaseLabel
	}{
		{"confirmed_wins_over_shipped", confirmedAndShipped, entities.CaseConfirmed},
		{"in_transit_is_shipped", openLine("PO1", "2", 100, 100, 5), entities.CaseShipped},
		{"partially_received", openLine("PO1", "3", 100, 40, 0), entities.CaseSplitInProgress},
		{"untouched_batch_prone", prone, entities.CaseLikelySplit},
		{"untouched_not_prone", notProne, entities.CaseSingleDelivery},
		{"no_profile", openLine("PO1", "6", 100, 100, 0), entities.CaseSingleDelivery},
		{"nothing_remaining", openLine("PO1", "7", 100, 0, 0), entities.CaseSingleDelivery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestClassify_ConfirmationIsCaseInsensitive(t *testing.T) {
	l := openLine("PO1", "1", 10, 10, 0)
	l.Comment = "delivery date confirmed"
	assert.Equal(t, entities.CaseConfirmed, Classify(l))
}

func TestRoute_PartitionIsComplete(t *testing.T) {
	confirmed := openLine("PO1", "1", 10, 10, 0)
	confirmed.Comment = "DELIVERY DATE CONFIRMED"
	prone := openLine("PO1", "4", 10, 10, 0)
	prone.Profile = &entities.BatchProfile{BatchProne: true}

	lines := []*OpenLine{
		confirmed,
		openLine("PO1", "2", 10, 10, 3),
		openLine("PO1", "3", 10, 4, 0),
		prone,
		openLine("PO1", "5", 10, 10, 0),
		openLine("PO1", "6", 10, 10, 0),
	}

	cases := Route(lines)
	assert.Equal(t, len(lines), cases.Total())

	counts := cases.Counts()
	assert.Equal(t, 1, counts[entities.CaseConfirmed])
	assert.Equal(t, 1, counts[entities.CaseShipped])
	assert.Equal(t, 1, counts[entities.CaseSplitInProgress])
	assert.Equal(t, 1, counts[entities.CaseLikelySplit])
	assert.Equal(t, 2, counts[entities.CaseSingleDelivery])

	seen := make(map[*OpenLine]int)
	for _, group := range [][]*OpenLine{cases.Confirmed, cases.Shipped, cases.SplitInProgress, cases.LikelySplit, cases.SingleDelivery} {
		for _, l := range group {
			seen[l]++
		}
	}
	for _, l := range lines {
		assert.Equal(t, 1, seen[l], "line %s routed %d times", l.POLine, seen[l])
	}
}
