package leadtime

import (
	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// FallbackCache holds the historical mean transit time per (vendor, warehouse, mode).
// Only means inside the mode's static range are kept.
type FallbackCache struct {
	means map[entities.StatKey]float64
}

// BuildFallbackCache averages the observed transit times of historical records
func BuildFallbackCache(catalog *services.ModePolicyCatalog, historical []*entities.ShipmentRecord, logger *zap.Logger) *FallbackCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[entities.StatKey]*acc)
	for _, r := range historical {
		if r.TransportTime == nil || r.TransportMode == "" {
			continue
		}
		k := entities.StatKey{VendorCode: r.VendorCode, Warehouse: r.Warehouse, Mode: r.TransportMode}
		a, ok := sums[k]
		if !ok {
			a = &acc{}
			sums[k] = a
		}
		a.sum += *r.TransportTime
		a.count++
	}

	cache := &FallbackCache{means: make(map[entities.StatKey]float64, len(sums))}
	for k, a := range sums {
		mean := a.sum / float64(a.count)
		if !catalog.RangeOf(k.Mode).Contains(mean) {
			logger.Debug("discarding fallback mean outside static range",
				zap.String("vendor", k.VendorCode),
				zap.String("warehouse", k.Warehouse),
				zap.String("mode", k.Mode.String()),
				zap.Float64("mean", mean))
			continue
		}
		cache.means[k] = mean
	}
	return cache
}

// Get returns the cached mean for a lane
func (c *FallbackCache) Get(vendor, warehouse string, mode entities.TransportMode) (float64, bool) {
	if c == nil {
		return 0, false
	}
	v, ok := c.means[entities.StatKey{VendorCode: vendor, Warehouse: warehouse, Mode: mode}]
	return v, ok
}

// Len returns the number of cached lanes
func (c *FallbackCache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.means)
}
