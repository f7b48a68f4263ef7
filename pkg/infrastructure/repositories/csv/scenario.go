package csv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ErrorLSC/QMS/pkg/application/services/eta"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/repositories/memory"
)

// File names expected inside a scenario directory
const (
	HistoryFile           = "history.csv"
	InTransitFile         = "in_transit.csv"
	VendorTransportFile   = "vendor_transport_stats.csv"
	VendorMasterFile      = "vendor_master.csv"
	BatchProfileFile      = "batch_profile.csv"
	DeliveryBehaviorFile  = "delivery_behavior.csv"
	SmartLeadTimeFile     = "smart_leadtime.csv"
	InventoryLeadTimeFile = "inventory_leadtime.csv"
)

// Scenario holds every table of one scenario directory
type Scenario struct {
	History            []*entities.ShipmentRecord
	InTransit          []*entities.ShipmentRecord
	TransportStats     []*entities.VendorTransportStat
	VendorMaster       []*entities.VendorMasterEntry
	BatchProfiles      []*entities.BatchProfile
	DeliveryBehavior   []*entities.DeliveryBehaviorStat
	SmartLeadTimes     []*entities.SmartLeadTime
	InventoryLeadTimes []*entities.InventoryLeadTime
}

// LoadScenario loads a scenario directory. in_transit.csv is required; any
// other missing table loads as empty.
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	s := &Scenario{}
	var err error

	if s.InTransit, err = l.LoadInTransit(filepath.Join(dir, InTransitFile)); err != nil {
		return nil, err
	}
	if s.History, err = optional(l.LoadHistory, dir, HistoryFile); err != nil {
		return nil, err
	}
	if s.TransportStats, err = optional(l.LoadVendorTransportStats, dir, VendorTransportFile); err != nil {
		return nil, err
	}
	if s.VendorMaster, err = optional(l.LoadVendorMaster, dir, VendorMasterFile); err != nil {
		return nil, err
	}
	if s.BatchProfiles, err = optional(l.LoadBatchProfiles, dir, BatchProfileFile); err != nil {
		return nil, err
	}
	if s.DeliveryBehavior, err = optional(l.LoadDeliveryBehavior, dir, DeliveryBehaviorFile); err != nil {
		return nil, err
	}
	if s.SmartLeadTimes, err = optional(l.LoadSmartLeadTimes, dir, SmartLeadTimeFile); err != nil {
		return nil, err
	}
	if s.InventoryLeadTimes, err = optional(l.LoadInventoryLeadTimes, dir, InventoryLeadTimeFile); err != nil {
		return nil, err
	}
	return s, nil
}

func optional[T any](load func(string) ([]T, error), dir, name string) ([]T, error) {
	rows, err := load(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", dir, err)
	}
	return rows, nil
}

// Inputs indexes the scenario's statistics tables into in-memory repositories
func (s *Scenario) Inputs() (eta.Inputs, error) {
	vendors := memory.NewVendorStatsRepository(len(s.TransportStats))
	if err := vendors.LoadTransportStats(s.TransportStats); err != nil {
		return eta.Inputs{}, fmt.Errorf("failed to load transport stats: %w", err)
	}
	if err := vendors.LoadVendorMaster(s.VendorMaster); err != nil {
		return eta.Inputs{}, fmt.Errorf("failed to load vendor master: %w", err)
	}

	items := memory.NewItemStatsRepository()
	if err := items.LoadBatchProfiles(s.BatchProfiles); err != nil {
		return eta.Inputs{}, fmt.Errorf("failed to load batch profiles: %w", err)
	}
	if err := items.LoadDeliveryBehavior(s.DeliveryBehavior); err != nil {
		return eta.Inputs{}, fmt.Errorf("failed to load delivery behavior: %w", err)
	}
	if err := items.LoadSmartLeadTimes(s.SmartLeadTimes); err != nil {
		return eta.Inputs{}, fmt.Errorf("failed to load smart lead times: %w", err)
	}
	if err := items.LoadInventoryLeadTimes(s.InventoryLeadTimes); err != nil {
		return eta.Inputs{}, fmt.Errorf("failed to load inventory lead times: %w", err)
	}

	return eta.Inputs{
		History:     s.History,
		InTransit:   s.InTransit,
		VendorStats: vendors,
		ItemStats:   items,
	}, nil
}

// DirectorySource reads a scenario directory on every Load, so a scheduled
// job sees files replaced between runs.
type DirectorySource struct {
	loader *Loader
	dir    string
}

func NewDirectorySource(dir string) *DirectorySource {
	return &DirectorySource{loader: NewLoader(), dir: dir}
}

func (d *DirectorySource) Load(ctx context.Context) (eta.Inputs, error) {
	if err := ctx.Err(); err != nil {
		return eta.Inputs{}, err
	}
	s, err := d.loader.LoadScenario(d.dir)
	if err != nil {
		return eta.Inputs{}, err
	}
	return s.Inputs()
}

func (d *DirectorySource) String() string {
	return d.dir
}
