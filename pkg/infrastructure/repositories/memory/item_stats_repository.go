package memory

import (
	"fmt"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
)

type itemWarehouseKey struct {
	itemCode  string
	warehouse string
}

// ItemStatsRepository provides in-memory item delivery behaviour and lead-time estimates
type ItemStatsRepository struct {
	profiles  map[entities.ItemStatKey]entities.BatchProfile
	behavior  map[entities.ItemStatKey]entities.DeliveryBehaviorStat
	smartLead map[entities.ItemStatKey]entities.SmartLeadTime
	invLead   map[itemWarehouseKey]entities.InventoryLeadTime
}

// NewItemStatsRepository creates a new in-memory item statistics repository
func NewItemStatsRepository() *ItemStatsRepository {
	return &ItemStatsRepository{
		profiles:  make(map[entities.ItemStatKey]entities.BatchProfile),
		behavior:  make(map[entities.ItemStatKey]entities.DeliveryBehaviorStat),
		smartLead: make(map[entities.ItemStatKey]entities.SmartLeadTime),
		invLead:   make(map[itemWarehouseKey]entities.InventoryLeadTime),
	}
}

// Verify interface compliance
var _ repositories.ItemStatsRepository = (*ItemStatsRepository)(nil)

// LoadBatchProfiles loads batch profiles into the repository
func (r *ItemStatsRepository) LoadBatchProfiles(profiles []*entities.BatchProfile) error {
	for _, p := range profiles {
		r.profiles[p.Key()] = *p
	}
	return nil
}

// LoadDeliveryBehavior loads delivery behaviour statistics into the repository
func (r *ItemStatsRepository) LoadDeliveryBehavior(stats []*entities.DeliveryBehaviorStat) error {
	for _, s := range stats {
		r.behavior[s.Key()] = *s
	}
	return nil
}

// LoadSmartLeadTimes loads combined lead-time estimates into the repository
func (r *ItemStatsRepository) LoadSmartLeadTimes(estimates []*entities.SmartLeadTime) error {
	for _, e := range estimates {
		r.smartLead[e.Key()] = *e
	}
	return nil
}

// LoadInventoryLeadTimes loads item master lead times into the repository
func (r *ItemStatsRepository) LoadInventoryLeadTimes(rows []*entities.InventoryLeadTime) error {
	for _, row := range rows {
		r.invLead[itemWarehouseKey{itemCode: row.ItemCode, warehouse: row.Warehouse}] = *row
	}
	return nil
}

// GetBatchProfile returns the batch profile of an item lane
func (r *ItemStatsRepository) GetBatchProfile(key entities.ItemStatKey) (*entities.BatchProfile, error) {
	p, exists := r.profiles[key]
	if !exists {
		return nil, fmt.Errorf("batch profile %s: %w", formatItemKey(key), repositories.ErrNotFound)
	}
	return &p, nil
}

// GetDeliveryBehavior returns the delivery behaviour of an item lane
func (r *ItemStatsRepository) GetDeliveryBehavior(key entities.ItemStatKey) (*entities.DeliveryBehaviorStat, error) {
	s, exists := r.behavior[key]
	if !exists {
		return nil, fmt.Errorf("delivery behavior %s: %w", formatItemKey(key), repositories.ErrNotFound)
	}
	return &s, nil
}

// GetSmartLeadTime returns the combined lead-time estimate of an item lane
func (r *ItemStatsRepository) GetSmartLeadTime(key entities.ItemStatKey) (*entities.SmartLeadTime, error) {
	e, exists := r.smartLead[key]
	if !exists {
		return nil, fmt.Errorf("smart lead time %s: %w", formatItemKey(key), repositories.ErrNotFound)
	}
	return &e, nil
}

// GetInventoryLeadTime returns the item master lead time at a warehouse
func (r *ItemStatsRepository) GetInventoryLeadTime(itemCode, warehouse string) (*entities.InventoryLeadTime, error) {
	row, exists := r.invLead[itemWarehouseKey{itemCode: itemCode, warehouse: warehouse}]
	if !exists {
		return nil, fmt.Errorf("inventory lead time %s/%s: %w", itemCode, warehouse, repositories.ErrNotFound)
	}
	return &row, nil
}

func formatItemKey(key entities.ItemStatKey) string {
	return fmt.Sprintf("%s/%s/%s/%s", key.ItemCode, key.Warehouse, key.VendorCode, key.Mode)
}
