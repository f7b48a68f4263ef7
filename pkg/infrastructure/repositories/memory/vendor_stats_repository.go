package memory

import (
	"fmt"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
)

type vendorModeKey struct {
	vendorCode string
	mode       entities.TransportMode
}

// VendorStatsRepository provides in-memory vendor transit statistics and master data
type VendorStatsRepository struct {
	stats    []entities.VendorTransportStat
	statsMap map[entities.StatKey]int

	master    []entities.VendorMasterEntry
	masterMap map[vendorModeKey]int
}

// NewVendorStatsRepository creates a new in-memory vendor statistics repository
func NewVendorStatsRepository(expectedRows int) *VendorStatsRepository {
	return &VendorStatsRepository{
		stats:     make([]entities.VendorTransportStat, 0, expectedRows),
		statsMap:  make(map[entities.StatKey]int, expectedRows),
		masterMap: make(map[vendorModeKey]int),
	}
}

// Verify interface compliance
var _ repositories.VendorStatsRepository = (*VendorStatsRepository)(nil)

// LoadTransportStats loads transit statistics; later rows for the same key win
func (r *VendorStatsRepository) LoadTransportStats(stats []*entities.VendorTransportStat) error {
	for _, s := range stats {
		r.AddTransportStat(*s)
	}
	return nil
}

// AddTransportStat adds one statistic row
func (r *VendorStatsRepository) AddTransportStat(stat entities.VendorTransportStat) {
	if idx, exists := r.statsMap[stat.Key()]; exists {
		r.stats[idx] = stat
		return
	}
	r.statsMap[stat.Key()] = len(r.stats)
	r.stats = append(r.stats, stat)
}

// LoadVendorMaster loads vendor master rows. Inactive rows are kept but never returned.
func (r *VendorStatsRepository) LoadVendorMaster(entries []*entities.VendorMasterEntry) error {
	for _, e := range entries {
		r.AddVendorMaster(*e)
	}
	return nil
}

// AddVendorMaster adds one vendor master row
func (r *VendorStatsRepository) AddVendorMaster(entry entities.VendorMasterEntry) {
	r.master = append(r.master, entry)
	if !entry.Active {
		return
	}
	k := vendorModeKey{vendorCode: entry.VendorCode, mode: entry.Mode}
	if _, exists := r.masterMap[k]; !exists {
		r.masterMap[k] = len(r.master) - 1
	}
}

// GetTransportStat returns the statistic row for a vendor lane
func (r *VendorStatsRepository) GetTransportStat(key entities.StatKey) (*entities.VendorTransportStat, error) {
	idx, exists := r.statsMap[key]
	if !exists {
		return nil, fmt.Errorf("transport stat %s/%s/%s: %w", key.VendorCode, key.Warehouse, key.Mode, repositories.ErrNotFound)
	}
	return &r.stats[idx], nil
}

// GetAllTransportStats returns all statistic rows in load order
func (r *VendorStatsRepository) GetAllTransportStats() ([]*entities.VendorTransportStat, error) {
	out := make([]*entities.VendorTransportStat, 0, len(r.stats))
	for i := range r.stats {
		out = append(out, &r.stats[i])
	}
	return out, nil
}

// GetVendorMaster returns the first active master row for a vendor and mode
func (r *VendorStatsRepository) GetVendorMaster(vendorCode string, mode entities.TransportMode) (*entities.VendorMasterEntry, error) {
	idx, exists := r.masterMap[vendorModeKey{vendorCode: vendorCode, mode: mode}]
	if !exists {
		return nil, fmt.Errorf("vendor master %s/%s: %w", vendorCode, mode, repositories.ErrNotFound)
	}
	return &r.master[idx], nil
}
