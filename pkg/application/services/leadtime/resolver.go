package leadtime

import (
	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// TransportStatLookup finds the statistics row of a vendor lane
type TransportStatLookup interface {
	GetTransportStat(key entities.StatKey) (*entities.VendorTransportStat, error)
}

// WindowRefiner narrows a lead-time window using one source of evidence.
// It overrides only the fields it has evidence for and reports whether it changed anything.
type WindowRefiner interface {
	Name() string
	Refine(w *entities.LeadTimeWindow, static entities.DayRange, key entities.StatKey) bool
}

// Resolver computes the plausible transit window of a lane by running its
// refiners in order over the mode's static range.
type Resolver struct {
	catalog  *services.ModePolicyCatalog
	refiners []WindowRefiner
	logger   *zap.Logger
}

// NewResolver builds a resolver with the standard refiner order: statistics, then fallback cache.
// Either source may be nil.
func NewResolver(catalog *services.ModePolicyCatalog, stats TransportStatLookup, cache *FallbackCache, logger *zap.Logger) *Resolver {
	var refiners []WindowRefiner
	if stats != nil {
		refiners = append(refiners, &StatisticalRefiner{stats: stats})
	}
	if cache != nil {
		refiners = append(refiners, &FallbackRefiner{cache: cache})
	}
	return NewResolverWithRefiners(catalog, logger, refiners...)
}

// NewResolverWithRefiners builds a resolver with an explicit refiner list
func NewResolverWithRefiners(catalog *services.ModePolicyCatalog, logger *zap.Logger, refiners ...WindowRefiner) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{catalog: catalog, refiners: refiners, logger: logger}
}

// Catalog returns the policy catalog the resolver reads static ranges from
func (r *Resolver) Catalog() *services.ModePolicyCatalog {
	return r.catalog
}

// RangeOf resolves the window for a mode shipped by vendor into warehouse
func (r *Resolver) RangeOf(mode entities.TransportMode, vendor, warehouse string) entities.LeadTimeWindow {
	static := r.catalog.RangeOf(mode)
	w := entities.LeadTimeWindow{
		Low:  static.Low,
		High: static.High,
		Mean: static.Midpoint(),
		Tier: entities.TierStatic,
	}
	key := entities.StatKey{VendorCode: vendor, Warehouse: warehouse, Mode: mode}
	for _, ref := range r.refiners {
		if ref.Refine(&w, static, key) {
			r.logger.Debug("lead time window refined",
				zap.String("refiner", ref.Name()),
				zap.String("mode", mode.String()),
				zap.String("vendor", vendor),
				zap.String("warehouse", warehouse))
		}
	}
	return w
}

// StatisticalRefiner applies a vendor lane's transit statistics
type StatisticalRefiner struct {
	stats TransportStatLookup
}

// NewStatisticalRefiner creates a refiner backed by a statistics lookup
func NewStatisticalRefiner(stats TransportStatLookup) *StatisticalRefiner {
	return &StatisticalRefiner{stats: stats}
}

func (s *StatisticalRefiner) Name() string { return "statistical" }

// Refine takes Q90 as the high bound, Mean as the mean and the first of
// Modal/Smoothed as the low bound, each only when it fits the static range.
func (s *StatisticalRefiner) Refine(w *entities.LeadTimeWindow, static entities.DayRange, key entities.StatKey) bool {
	row, err := s.stats.GetTransportStat(key)
	if err != nil {
		return false
	}

	changed := false
	if row.Q90 != nil && *row.Q90 <= static.High {
		w.High = *row.Q90
		changed = true
	}
	if row.Mean != nil && static.Contains(*row.Mean) {
		w.Mean = *row.Mean
		changed = true
	}
	for _, v := range []*float64{row.Modal, row.Smoothed} {
		if v != nil && static.Contains(*v) {
			w.Low = *v
			changed = true
			break
		}
	}
	if changed {
		w.Tier = entities.TierStatistical
	}
	return changed
}

// FallbackRefiner applies the historical mean from a FallbackCache
type FallbackRefiner struct {
	cache *FallbackCache
}

// NewFallbackRefiner creates a refiner backed by a fallback cache
func NewFallbackRefiner(cache *FallbackCache) *FallbackRefiner {
	return &FallbackRefiner{cache: cache}
}

func (f *FallbackRefiner) Name() string { return "fallback" }

// Refine replaces the mean with the cached historical mean when it fits the static range
func (f *FallbackRefiner) Refine(w *entities.LeadTimeWindow, static entities.DayRange, key entities.StatKey) bool {
	mean, ok := f.cache.Get(key.VendorCode, key.Warehouse, key.Mode)
	if !ok || !static.Contains(mean) {
		return false
	}
	w.Mean = mean
	w.Tier = entities.TierFallback
	return true
}
