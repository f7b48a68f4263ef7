package repositories

import (
	"errors"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
)

// ErrNotFound is returned by lookups that have no row for the requested key
var ErrNotFound = errors.New("not found")

// VendorStatsRepository provides vendor-level transit statistics and master data
type VendorStatsRepository interface {
	GetTransportStat(key entities.StatKey) (*entities.VendorTransportStat, error)
	GetAllTransportStats() ([]*entities.VendorTransportStat, error)
	// GetVendorMaster returns the active master entry for a vendor and mode
	GetVendorMaster(vendorCode string, mode entities.TransportMode) (*entities.VendorMasterEntry, error)
	LoadTransportStats(stats []*entities.VendorTransportStat) error
	LoadVendorMaster(entries []*entities.VendorMasterEntry) error
}

// ItemStatsRepository provides item-level delivery behaviour and lead-time estimates
type ItemStatsRepository interface {
	GetBatchProfile(key entities.ItemStatKey) (*entities.BatchProfile, error)
	GetDeliveryBehavior(key entities.ItemStatKey) (*entities.DeliveryBehaviorStat, error)
	GetSmartLeadTime(key entities.ItemStatKey) (*entities.SmartLeadTime, error)
	GetInventoryLeadTime(itemCode, warehouse string) (*entities.InventoryLeadTime, error)
	LoadBatchProfiles(profiles []*entities.BatchProfile) error
	LoadDeliveryBehavior(stats []*entities.DeliveryBehaviorStat) error
	LoadSmartLeadTimes(estimates []*entities.SmartLeadTime) error
	LoadInventoryLeadTimes(rows []*entities.InventoryLeadTime) error
}
