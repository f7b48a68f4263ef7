package eta

import (
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// TransportDaysSource is one tier of the transport lead-time cascade
type TransportDaysSource interface {
	Name() string
	Days(vendor, warehouse string, mode entities.TransportMode) (int, bool)
}

// TransportDays resolves shipping-to-arrival days by asking its sources in order
type TransportDays struct {
	sources []TransportDaysSource
}

// NewTransportDays builds the cascade: vendor statistic, vendor master, catalog default
func NewTransportDays(catalog *services.ModePolicyCatalog, vendors repositories.VendorStatsRepository, metric LeadMetric) *TransportDays {
	return NewTransportDaysFrom(
		&statisticSource{vendors: vendors, metric: metric},
		&vendorMasterSource{vendors: vendors},
		&catalogSource{catalog: catalog},
	)
}

// NewTransportDaysFrom builds a cascade from explicit sources
func NewTransportDaysFrom(sources ...TransportDaysSource) *TransportDays {
	return &TransportDays{sources: sources}
}

// TransportLead is a resolved transport lead time
type TransportLead struct {
	Days   int
	Source string
	// Fallback is set when a lower tier than the first answered
	Fallback bool
}

// Resolve asks the sources in order and returns the first answer
func (t *TransportDays) Resolve(vendor, warehouse string, mode entities.TransportMode) TransportLead {
	for i, s := range t.sources {
		if d, ok := s.Days(vendor, warehouse, mode); ok {
			return TransportLead{Days: d, Source: s.Name(), Fallback: i > 0}
		}
	}
	return TransportLead{Source: "none", Fallback: true}
}

type statisticSource struct {
	vendors repositories.VendorStatsRepository
	metric  LeadMetric
}

func (s *statisticSource) Name() string { return "statistic" }

func (s *statisticSource) Days(vendor, warehouse string, mode entities.TransportMode) (int, bool) {
	if s.vendors == nil {
		return 0, false
	}
	stat, err := s.vendors.GetTransportStat(entities.StatKey{VendorCode: vendor, Warehouse: warehouse, Mode: mode})
	if err != nil {
		return 0, false
	}
	v := s.metric.FromTransportStat(stat)
	if v == nil {
		return 0, false
	}
	return int(*v), true
}

type vendorMasterSource struct {
	vendors repositories.VendorStatsRepository
}

func (s *vendorMasterSource) Name() string { return "vendor_master" }

func (s *vendorMasterSource) Days(vendor, _ string, mode entities.TransportMode) (int, bool) {
	if s.vendors == nil {
		return 0, false
	}
	entry, err := s.vendors.GetVendorMaster(vendor, mode)
	if err != nil {
		return 0, false
	}
	return entry.LeadTimeDays, true
}

type catalogSource struct {
	catalog *services.ModePolicyCatalog
}

func (s *catalogSource) Name() string { return "catalog_default" }

func (s *catalogSource) Days(_, _ string, mode entities.TransportMode) (int, bool) {
	return s.catalog.DefaultLeadTime(mode), true
}
