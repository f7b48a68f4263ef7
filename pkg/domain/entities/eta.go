package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CaseLabel is the delivery state an open PO line is routed to
type CaseLabel int

const (
	CaseConfirmed CaseLabel = iota
	CaseShipped
	CaseSplitInProgress
	CaseLikelySplit
	CaseSingleDelivery
)

// AllCases lists the labels in routing priority order
var AllCases = []CaseLabel{
	CaseConfirmed,
	CaseShipped,
	CaseSplitInProgress,
	CaseLikelySplit,
	CaseSingleDelivery,
}

// String method for CaseLabel enum
func (c CaseLabel) String() string {
	switch c {
	case CaseConfirmed:
		return "Confirmed"
	case CaseShipped:
		return "Shipped"
	case CaseSplitInProgress:
		return "SplitInProgress"
	case CaseLikelySplit:
		return "LikelySplit"
	case CaseSingleDelivery:
		return "SingleDelivery"
	default:
		return "Unknown"
	}
}

// ETAFlag names the estimation path that produced a recommendation
type ETAFlag string

const (
	FlagConfirmedDate        ETAFlag = "ConfirmedDate"
	FlagTransportEstimated   ETAFlag = "TransportEstimatedDate"
	FlagSimulatedSingle      ETAFlag = "SimulatedSingle"
	FlagStaticWLEAD          ETAFlag = "StaticWLEAD"
	FlagTailBatch            ETAFlag = "TailBatchSimulated"
	FlagTailBatchSelfBoot    ETAFlag = "TailBatchSimulated_FB_SelfBoot"
	FlagTailBatchDefault     ETAFlag = "TailBatchSimulated_FB_Default"
	FlagLikelySplitSimulated ETAFlag = "LikelySplitSimulated"
)

// OverdueComment is appended to confirmed lines whose date already passed
const OverdueComment = "ETA overdue! Contact supplier."

// ETARecommendation is one dated, quantity-bearing arrival prediction
type ETARecommendation struct {
	ItemCode      string          `json:"item_code"`
	Warehouse     string          `json:"warehouse"`
	PONumber      string          `json:"po_number"`
	POLine        string          `json:"po_line"`
	VendorCode    string          `json:"vendor_code"`
	TransportMode TransportMode   `json:"transport_mode"`
	Quantity      decimal.Decimal `json:"quantity"`
	ETADate       time.Time       `json:"eta_date"`
	ETAWeek       string          `json:"eta_week"`
	Flag          ETAFlag         `json:"eta_flag"`
	Comment       string          `json:"comment,omitempty"`

	BatchIndex   int   `json:"batch_index"`
	IsFinalBatch *bool `json:"is_final_batch,omitempty"`

	FallbackTransportUsed bool `json:"fallback_transport_used"`
	FallbackTotalLeadUsed bool `json:"fallback_total_lead_used"`
	Overdue               bool `json:"overdue"`
}

// RecommendationKey is the natural key used by snapshot stores
type RecommendationKey struct {
	ItemCode  string
	Warehouse string
	PONumber  string
	POLine    string
}

// Key returns the natural key of the recommendation
func (r *ETARecommendation) Key() RecommendationKey {
	return RecommendationKey{ItemCode: r.ItemCode, Warehouse: r.Warehouse, PONumber: r.PONumber, POLine: r.POLine}
}

// Bool returns a pointer to v, for optional flags
func Bool(v bool) *bool {
	return &v
}

// MarshalText renders the label by name in JSON and CSV output
func (c CaseLabel) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a label written by MarshalText
func (c *CaseLabel) UnmarshalText(b []byte) error {
	for _, l := range AllCases {
		if l.String() == string(b) {
			*c = l
			return nil
		}
	}
	return fmt.Errorf("unknown case label %q", string(b))
}
