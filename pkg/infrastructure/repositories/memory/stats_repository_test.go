package memory

import (
	"errors"
	"testing"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
)

func TestVendorStatsRepository_TransportStats(t *testing.T) {
	repo := NewVendorStatsRepository(4)

	stat := &entities.VendorTransportStat{
		VendorCode: "V1",
		Warehouse:  "WH1",
		Mode:       entities.ModeAir,
		Q60:        entities.Float(6),
	}
	if err := repo.LoadTransportStats([]*entities.VendorTransportStat{stat}); err != nil {
		t.Fatalf("Failed to load stats: %v", err)
	}

	got, err := repo.GetTransportStat(stat.Key())
	if err != nil {
		t.Fatalf("Failed to get stat: %v", err)
	}
	if *got.Q60 != 6 {
		t.Errorf("Expected Q60 6, got %v", *got.Q60)
	}

	// same key replaces
	repo.AddTransportStat(entities.VendorTransportStat{VendorCode: "V1", Warehouse: "WH1", Mode: entities.ModeAir, Q60: entities.Float(8)})
	all, _ := repo.GetAllTransportStats()
	if len(all) != 1 || *all[0].Q60 != 8 {
		t.Errorf("Expected replaced stat with Q60 8, got %d rows", len(all))
	}

	_, err = repo.GetTransportStat(entities.StatKey{VendorCode: "V2", Warehouse: "WH1", Mode: entities.ModeAir})
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestVendorStatsRepository_VendorMasterSkipsInactive(t *testing.T) {
	repo := NewVendorStatsRepository(0)

	err := repo.LoadVendorMaster([]*entities.VendorMasterEntry{
		{VendorCode: "V1", Mode: entities.ModeVessel, LeadTimeDays: 30, Active: false},
		{VendorCode: "V1", Mode: entities.ModeVessel, LeadTimeDays: 35, Active: true},
		{VendorCode: "V2", Mode: entities.ModeAir, LeadTimeDays: 5, Active: false},
	})
	if err != nil {
		t.Fatalf("Failed to load vendor master: %v", err)
	}

	entry, err := repo.GetVendorMaster("V1", entities.ModeVessel)
	if err != nil {
		t.Fatalf("Expected active entry, got %v", err)
	}
	if entry.LeadTimeDays != 35 {
		t.Errorf("Expected lead time 35, got %d", entry.LeadTimeDays)
	}

	if _, err := repo.GetVendorMaster("V2", entities.ModeAir); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Inactive vendor rows must not be returned, got %v", err)
	}
}

func TestItemStatsRepository_Lookups(t *testing.T) {
	repo := NewItemStatsRepository()
	key := entities.ItemStatKey{ItemCode: "I1", Warehouse: "WH1", VendorCode: "V1", Mode: entities.ModeTruck}

	count := 3
	_ = repo.LoadBatchProfiles([]*entities.BatchProfile{{ItemCode: "I1", Warehouse: "WH1", VendorCode: "V1", Mode: entities.ModeTruck, BatchProne: true, PredictedBatchCount: &count}})
	_ = repo.LoadDeliveryBehavior([]*entities.DeliveryBehaviorStat{{ItemCode: "I1", Warehouse: "WH1", VendorCode: "V1", Mode: entities.ModeTruck, MaxSingleBatchQty: entities.Float(20)}})
	_ = repo.LoadSmartLeadTimes([]*entities.SmartLeadTime{{ItemCode: "I1", Warehouse: "WH1", VendorCode: "V1", Mode: entities.ModeTruck, Q60: entities.Float(30)}})
	_ = repo.LoadInventoryLeadTimes([]*entities.InventoryLeadTime{{ItemCode: "I1", Warehouse: "WH1", LeadTimeDays: 45}})

	profile, err := repo.GetBatchProfile(key)
	if err != nil || !profile.BatchProne || *profile.PredictedBatchCount != 3 {
		t.Errorf("Unexpected batch profile %+v (%v)", profile, err)
	}
	behavior, err := repo.GetDeliveryBehavior(key)
	if err != nil || *behavior.MaxSingleBatchQty != 20 {
		t.Errorf("Unexpected behavior %+v (%v)", behavior, err)
	}
	smart, err := repo.GetSmartLeadTime(key)
	if err != nil || *smart.Q60 != 30 {
		t.Errorf("Unexpected smart lead time %+v (%v)", smart, err)
	}
	inv, err := repo.GetInventoryLeadTime("I1", "WH1")
	if err != nil || inv.LeadTimeDays != 45 {
		t.Errorf("Unexpected inventory lead time %+v (%v)", inv, err)
	}

	other := key
	other.Mode = entities.ModeAir
	if _, err := repo.GetBatchProfile(other); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown lane, got %v", err)
	}
}
