package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SourceTag tells whether a record comes from closed history or open in-transit data
type SourceTag string

const (
	SourceHistory   SourceTag = "HIST"
	SourceInTransit SourceTag = "GIT"
)

// ModeStatus records what the transport-mode corrector concluded for a record
type ModeStatus int

const (
	ModeNotChecked ModeStatus = iota
	ModeAccepted
	ModeReassigned
	ModeUnresolved
	ModeNoEvidence
)

// String method for ModeStatus enum
func (s ModeStatus) String() string {
	switch s {
	case ModeNotChecked:
		return "NotChecked"
	case ModeAccepted:
		return "Accepted"
	case ModeReassigned:
		return "Reassigned"
	case ModeUnresolved:
		return "Unresolved"
	case ModeNoEvidence:
		return "NoEvidence"
	default:
		return "Unknown"
	}
}

// LineKey identifies a purchase-order line
type LineKey struct {
	PONumber string
	POLine   string
}

func (k LineKey) String() string {
	return k.PONumber + "/" + k.POLine
}

// ShipmentRecord is one row of purchase-order activity, historical or in transit
type ShipmentRecord struct {
	PONumber   string
	POLine     string
	ItemCode   string
	Warehouse  string
	VendorCode string

	TransportMode          TransportMode
	OriginalTransportMode  TransportMode
	PredictedTransportMode TransportMode
	ModeStatus             ModeStatus

	OrderedQty   decimal.Decimal
	RemainingQty decimal.Decimal
	InTransitQty decimal.Decimal
	ReceivedQty  decimal.Decimal
	ShippedQty   decimal.Decimal

	POEntryDate        time.Time
	InvoiceDate        time.Time
	ActualDeliveryDate time.Time

	// TransportTime is the observed transit time in days, nil when unknown
	TransportTime *float64

	Closed    bool
	Comment   string
	OrderType string
	Source    SourceTag

	// Filled by the delivery unifier
	UnifiedLine   string
	BaseLine      string
	SplitDelivery bool
}

// NewShipmentRecord creates a validated ShipmentRecord
func NewShipmentRecord(
	poNumber, poLine, itemCode, warehouse, vendorCode string,
	mode TransportMode,
	orderedQty, remainingQty decimal.Decimal,
	source SourceTag,
) (*ShipmentRecord, error) {
	if strings.TrimSpace(poNumber) == "" {
		return nil, fmt.Errorf("po number cannot be empty")
	}
	if strings.TrimSpace(poLine) == "" {
		return nil, fmt.Errorf("po line cannot be empty")
	}
	if strings.TrimSpace(itemCode) == "" {
		return nil, fmt.Errorf("item code cannot be empty")
	}
	if orderedQty.IsNegative() {
		return nil, fmt.Errorf("ordered quantity cannot be negative, got %s", orderedQty)
	}
	if remainingQty.GreaterThan(orderedQty) {
		return nil, fmt.Errorf("remaining quantity %s exceeds ordered quantity %s", remainingQty, orderedQty)
	}
	if mode == "" {
		mode = ModeDefault
	}

	return &ShipmentRecord{
		PONumber:      poNumber,
		POLine:        poLine,
		ItemCode:      itemCode,
		Warehouse:     warehouse,
		VendorCode:    vendorCode,
		TransportMode: mode,
		OrderedQty:    orderedQty,
		RemainingQty:  remainingQty,
		Source:        source,
	}, nil
}

// Key returns the (PO, line) key of the record
func (r *ShipmentRecord) Key() LineKey {
	return LineKey{PONumber: r.PONumber, POLine: r.POLine}
}

// HasInvoiceDate reports whether the record carries a shipment date
func (r *ShipmentRecord) HasInvoiceDate() bool {
	return !r.InvoiceDate.IsZero()
}

// Float returns a pointer to v, for optional numeric fields
func Float(v float64) *float64 {
	return &v
}
