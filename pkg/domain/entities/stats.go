package entities

// StatKey identifies statistics kept per (vendor, warehouse, mode)
type StatKey struct {
	VendorCode string
	Warehouse  string
	Mode       TransportMode
}

// ItemStatKey identifies statistics kept per (item, warehouse, vendor, mode)
type ItemStatKey struct {
	ItemCode   string
	Warehouse  string
	VendorCode string
	Mode       TransportMode
}

// VendorTransportStat holds observed transit statistics for a vendor lane.
// Nil fields mean the statistic was not computed.
type VendorTransportStat struct {
	VendorCode string
	Warehouse  string
	Mode       TransportMode

	Mean     *float64
	Std      *float64
	Modal    *float64 // most frequent transit time
	Q60      *float64
	Q90      *float64
	Smoothed *float64

	SampleCount int
}

// Key returns the lane key of the statistic
func (s *VendorTransportStat) Key() StatKey {
	return StatKey{VendorCode: s.VendorCode, Warehouse: s.Warehouse, Mode: s.Mode}
}

// VendorMasterEntry is the static transport lead time agreed with a vendor
type VendorMasterEntry struct {
	VendorCode   string
	VendorName   string
	Mode         TransportMode
	LeadTimeDays int
	VendorType   string
	Active       bool
}

// DeliveryBehaviorStat summarises how an item has historically been delivered
type DeliveryBehaviorStat struct {
	ItemCode   string
	Warehouse  string
	VendorCode string
	Mode       TransportMode

	TotalPOs              int
	SplitRate             float64
	AvgBatchCount         float64
	TailQtyRate           float64
	IntervalDays          float64
	TypicalSingleBatchQty float64
	MaxSingleBatchQty     *float64
}

// Key returns the item lane key of the statistic
func (s *DeliveryBehaviorStat) Key() ItemStatKey {
	return ItemStatKey{ItemCode: s.ItemCode, Warehouse: s.Warehouse, VendorCode: s.VendorCode, Mode: s.Mode}
}

// BatchProfile is the predicted batching behaviour for an item lane
type BatchProfile struct {
	ItemCode   string
	Warehouse  string
	VendorCode string
	Mode       TransportMode

	BatchProne            bool
	BatchTriggerQty       *float64
	PredictedBatchCount   *int
	PredictedBatchQty     *float64
	PredictedIntervalDays *float64
	PredictedTailQtyRate  *float64
}

// Key returns the item lane key of the profile
func (p *BatchProfile) Key() ItemStatKey {
	return ItemStatKey{ItemCode: p.ItemCode, Warehouse: p.Warehouse, VendorCode: p.VendorCode, Mode: p.Mode}
}

// SmartLeadTime holds combined prepare+transport lead-time quantiles
type SmartLeadTime struct {
	ItemCode   string
	Warehouse  string
	VendorCode string
	Mode       TransportMode

	Mean     *float64
	Modal    *float64
	Q60      *float64
	Q90      *float64
	Smoothed *float64
	Q60Prep  *float64

	SampleCount int
}

// Key returns the item lane key of the estimate
func (s *SmartLeadTime) Key() ItemStatKey {
	return ItemStatKey{ItemCode: s.ItemCode, Warehouse: s.Warehouse, VendorCode: s.VendorCode, Mode: s.Mode}
}

// InventoryLeadTime is the static item master lead time for a warehouse
type InventoryLeadTime struct {
	ItemCode     string
	Warehouse    string
	LeadTimeDays float64
}
