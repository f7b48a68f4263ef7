package eta

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErrorLSC/QMS/pkg/application/services/delivery"
	"github.com/ErrorLSC/QMS/pkg/application/services/leadtime"
	"github.com/ErrorLSC/QMS/pkg/application/services/transport"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/repositories/memory"
)

// 2025-06-11 is a Wednesday in ISO week 24
var testNow = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

func catalogDays() *TransportDays {
	return NewTransportDays(services.DefaultCatalog(), nil, MetricQ60)
}

func TestConfirmedSimulator_OverdueNotice(t *testing.T) {
	past := openLine("PO1", "1", 10, 10, 0)
	past.Comment = "Delivery Date Confirmed"
	past.InvoiceDate = testNow.AddDate(0, 0, -14)

	future := openLine("PO1", "2", 10, 6, 0)
	future.Comment = "Delivery Date Confirmed"
	future.InvoiceDate = testNow.AddDate(0, 0, 7)

	noDate := openLine("PO1", "3", 10, 10, 0)
	noDate.Comment = "Delivery Date Confirmed"

	results := ConfirmedSimulator{}.Simulate([]*OpenLine{past, future, noDate}, testNow)
	recs, skips := Partition(results)

	require.Len(t, recs, 2)
	assert.Contains(t, recs[0].Comment, entities.OverdueComment)
	assert.Equal(t, "2025-22W", recs[0].ETAWeek)
	assert.Equal(t, entities.FlagConfirmedDate, recs[0].Flag)
	assert.True(t, recs[0].Quantity.Equal(decimal.NewFromInt(10)))

	assert.NotContains(t, recs[1].Comment, entities.OverdueComment)
	assert.True(t, recs[1].Quantity.Equal(decimal.NewFromInt(6)))

	require.Len(t, skips, 1)
	assert.Equal(t, entities.LineKey{PONumber: "PO1", POLine: "3"}, skips[0].Key)
	assert.Equal(t, ErrMissingInvoiceDate.Error(), skips[0].Reason)
}

func TestShippedSimulator_TransportDays(t *testing.T) {
	vendors := memory.NewVendorStatsRepository(1)
	vendors.AddTransportStat(entities.VendorTransportStat{
		VendorCode: "V1", Warehouse: "WH1", Mode: entities.ModeAir, Q60: entities.Float(5),
	})
	catalog := services.DefaultCatalog()

	line := openLine("PO1", "1", 10, 10, 4)
	line.InvoiceDate = testNow.AddDate(0, 0, -3)

	t.Run("statistic", func(t *testing.T) {
		days := NewTransportDays(catalog, vendors, MetricQ60)
		results, _ := NewShippedSimulator(catalog, nil, days, nil).Simulate([]*OpenLine{line}, testNow)
		recs, skips := Partition(results)
		require.Empty(t, skips)
		require.Len(t, recs, 1)
		assert.Equal(t, line.InvoiceDate.AddDate(0, 0, 5), recs[0].ETADate)
		assert.True(t, recs[0].Quantity.Equal(decimal.NewFromInt(4)))
		assert.Equal(t, entities.FlagTransportEstimated, recs[0].Flag)
		assert.False(t, recs[0].FallbackTransportUsed)
	})

	t.Run("catalog_default", func(t *testing.T) {
		results, _ := NewShippedSimulator(catalog, nil, catalogDays(), nil).Simulate([]*OpenLine{line}, testNow)
		recs, _ := Partition(results)
		require.Len(t, recs, 1)
		// Air default is the midpoint of [0, 14]
		assert.Equal(t, line.InvoiceDate.AddDate(0, 0, 7), recs[0].ETADate)
		assert.True(t, recs[0].FallbackTransportUsed)
	})
}

func TestShippedSimulator_RechecksOverdueFastShipments(t *testing.T) {
	catalog := services.DefaultCatalog()
	corrector := transport.NewCorrector(leadtime.NewResolver(catalog, nil, nil, nil), 0, nil)

	overdue := openLine("PO1", "1", 10, 10, 10)
	overdue.InvoiceDate = testNow.AddDate(0, 0, -30)
	recent := openLine("PO1", "2", 10, 10, 10)
	recent.InvoiceDate = testNow.AddDate(0, 0, -10)
	noInvoice := openLine("PO1", "3", 10, 10, 10)

	results, stats := NewShippedSimulator(catalog, corrector, catalogDays(), nil).
		Simulate([]*OpenLine{overdue, recent, noInvoice}, testNow)
	recs, skips := Partition(results)

	assert.Equal(t, 1, stats.Reassigned)
	require.Len(t, recs, 2)
	assert.Equal(t, entities.ModeVessel, recs[0].TransportMode)
	// Vessel default is low bound 15 + 7
	assert.Equal(t, overdue.InvoiceDate.AddDate(0, 0, 22), recs[0].ETADate)
	assert.Equal(t, entities.ModeAir, recs[1].TransportMode)

	require.Len(t, skips, 1)
	assert.Equal(t, entities.CaseShipped, skips[0].Case)

	// the open line itself keeps its recorded mode
	assert.Equal(t, entities.ModeAir, overdue.TransportMode)
}

func TestShippedSimulator_ElapsedDaysUseCalendarDates(t *testing.T) {
	catalog := services.DefaultCatalog()
	corrector := transport.NewCorrector(leadtime.NewResolver(catalog, nil, nil, nil), 0, nil)

	// 15 calendar days after a UTC invoice date, read on a JST clock
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.FixedZone("JST", 9*60*60))
	line := openLine("PO1", "1", 10, 10, 10)
	line.InvoiceDate = time.Date(2025, 5, 27, 0, 0, 0, 0, time.UTC)

	results, stats := NewShippedSimulator(catalog, corrector, catalogDays(), nil).Simulate([]*OpenLine{line}, now)
	recs, _ := Partition(results)

	assert.Equal(t, 1, stats.Reassigned)
	require.Len(t, recs, 1)
	assert.Equal(t, entities.ModeVessel, recs[0].TransportMode)
}

func TestSingleDeliverySimulator(t *testing.T) {
	entry := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	withLead := openLine("PO1", "1", 10, 10, 0)
	withLead.POEntryDate = entry
	withLead.TotalLeadTime = entities.Float(30)

	fromMaster := openLine("PO1", "2", 10, 10, 0)
	fromMaster.POEntryDate = entry
	fromMaster.TotalLeadTime = entities.Float(45)
	fromMaster.FallbackTotalLeadUsed = true

	recs, skips := mustSimulateSingle(t, SingleDeliverySimulator{AbortOnPrecondition: true}, withLead, fromMaster)
	assert.Empty(t, skips)
	require.Len(t, recs, 2)
	assert.Equal(t, entry.AddDate(0, 0, 30), recs[0].ETADate)
	assert.Equal(t, entities.FlagSimulatedSingle, recs[0].Flag)
	assert.Equal(t, entry.AddDate(0, 0, 45), recs[1].ETADate)
	assert.Equal(t, entities.FlagStaticWLEAD, recs[1].Flag)
	assert.True(t, recs[1].FallbackTotalLeadUsed)
}

func TestSingleDeliverySimulator_Precondition(t *testing.T) {
	entry := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	ok := openLine("PO1", "1", 10, 10, 0)
	ok.POEntryDate = entry
	ok.TotalLeadTime = entities.Float(30)

	missing := openLine("PO2", "1", 10, 10, 0)
	missing.POEntryDate = entry

	t.Run("abort", func(t *testing.T) {
		_, err := SingleDeliverySimulator{AbortOnPrecondition: true}.Simulate([]*OpenLine{ok, missing})
		require.Error(t, err)

		var perr *PreconditionError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, []entities.LineKey{{PONumber: "PO2", POLine: "1"}}, perr.Lines)
		assert.Contains(t, err.Error(), "PO2/1")
	})

	t.Run("skip_offending_line", func(t *testing.T) {
		recs, skips := mustSimulateSingle(t, SingleDeliverySimulator{}, ok, missing)
		require.Len(t, recs, 1)
		assert.Equal(t, "PO1", recs[0].PONumber)
		require.Len(t, skips, 1)
		assert.Equal(t, entities.LineKey{PONumber: "PO2", POLine: "1"}, skips[0].Key)
	})
}

func mustSimulateSingle(t *testing.T, s SingleDeliverySimulator, lines ...*OpenLine) ([]*entities.ETARecommendation, SkipLog) {
	t.Helper()
	results, err := s.Simulate(lines)
	require.NoError(t, err)
	return Partition(results)
}

func TestTailBatchSimulator_Behavioral(t *testing.T) {
	last := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	line := openLine("PO1", "1", 100, 40, 0)
	line.TransportMode = entities.ModeVessel
	line.TotalLeadTime = entities.Float(60)
	count := 2
	line.Profile = &entities.BatchProfile{
		PredictedBatchCount:   &count,
		PredictedIntervalDays: entities.Float(10),
		PredictedTailQtyRate:  entities.Float(0.6),
	}

	lastShipments := delivery.LastShipments{{PONumber: "PO1", POLine: "1"}: last}
	sim := NewTailBatchSimulator(nil, lastShipments, catalogDays(), DefaultOptions())

	recs, skips := Partition(sim.Simulate([]*OpenLine{line}))
	require.Empty(t, skips)
	require.Len(t, recs, 2)

	assert.True(t, recs[0].Quantity.Equal(decimal.NewFromInt(16)))
	assert.True(t, recs[1].Quantity.Equal(decimal.NewFromInt(24)))
	assert.Equal(t, "1-1", recs[0].POLine)
	assert.Equal(t, "1-2", recs[1].POLine)
	// ship every 10 days after the last shipment, Vessel default 22 transport days
	assert.Equal(t, last.AddDate(0, 0, 32), recs[0].ETADate)
	assert.Equal(t, last.AddDate(0, 0, 42), recs[1].ETADate)
	assert.Equal(t, entities.FlagTailBatch, recs[0].Flag)
	assert.False(t, *recs[0].IsFinalBatch)
	assert.True(t, *recs[1].IsFinalBatch)
}

func TestTailBatchSimulator_BehavioralTailShare(t *testing.T) {
	last := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	lastShipments := delivery.LastShipments{{PONumber: "PO1", POLine: "1"}: last}
	sim := NewTailBatchSimulator(nil, lastShipments, catalogDays(), DefaultOptions())

	tests := []struct {
		name string
		rate *float64
		want []int64
	}{
		{"no_rate_splits_equally", nil, []int64{20, 20}},
		{"full_rate_is_one_batch", entities.Float(1), []int64{40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := openLine("PO1", "1", 100, 40, 0)
			line.TotalLeadTime = entities.Float(60)
			count := 2
			line.Profile = &entities.BatchProfile{PredictedBatchCount: &count, PredictedTailQtyRate: tt.rate}

			recs, skips := Partition(sim.Simulate([]*OpenLine{line}))
			require.Empty(t, skips)
			require.Len(t, recs, len(tt.want))
			for i, q := range tt.want {
				assert.True(t, recs[i].Quantity.Equal(decimal.NewFromInt(q)), "batch %d", i+1)
			}
			assert.True(t, *recs[len(recs)-1].IsFinalBatch)
		})
	}
}

func TestTailBatchSimulator_SelfBootstrap(t *testing.T) {
	first := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	unified := []*entities.ShipmentRecord{
		{PONumber: "PO2", POLine: "1", UnifiedLine: "1-1", BaseLine: "1", InvoiceDate: first},
		{PONumber: "PO2", POLine: "1", UnifiedLine: "1-2", BaseLine: "1", InvoiceDate: first.AddDate(0, 0, 12)},
	}

	line := openLine("PO2", "1", 100, 30, 0)
	sim := NewTailBatchSimulator(unified, delivery.LastShipmentLookup(unified), catalogDays(), DefaultOptions())

	recs, skips := Partition(sim.Simulate([]*OpenLine{line}))
	require.Empty(t, skips)
	require.Len(t, recs, 1)
	assert.Equal(t, entities.FlagTailBatchSelfBoot, recs[0].Flag)
	assert.True(t, recs[0].Quantity.Equal(decimal.NewFromInt(30)))
	// last shipment + 12 day interval + Air default 7
	assert.Equal(t, first.AddDate(0, 0, 12+12+7), recs[0].ETADate)
}

func TestTailBatchSimulator_Defaults(t *testing.T) {
	entry := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	line := openLine("PO3", "2", 100, 30, 0)
	line.POEntryDate = entry

	noEntry := openLine("PO3", "3", 100, 30, 0)

	sim := NewTailBatchSimulator(nil, delivery.LastShipments{}, catalogDays(), DefaultOptions())
	recs, skips := Partition(sim.Simulate([]*OpenLine{line, noEntry}))

	require.Len(t, recs, 1)
	assert.Equal(t, entities.FlagTailBatchDefault, recs[0].Flag)
	// entry + default 14 day lead, + 7 day interval, + Air default 7
	assert.Equal(t, entry.AddDate(0, 0, 14+7+7), recs[0].ETADate)

	require.Len(t, skips, 1)
	assert.Equal(t, ErrMissingEntryDate.Error(), skips[0].Reason)
}

func TestLikelySplitSimulator(t *testing.T) {
	entry := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	count := 3

	line := openLine("PO1", "7", 30, 30, 0)
	line.POEntryDate = entry
	line.PrepDays = 4
	line.Profile = &entities.BatchProfile{
		BatchProne:            true,
		PredictedBatchCount:   &count,
		PredictedIntervalDays: entities.Float(5),
	}

	recs, skips := Partition(NewLikelySplitSimulator(catalogDays()).Simulate([]*OpenLine{line}))
	require.Empty(t, skips)
	require.Len(t, recs, 3)

	for i, rec := range recs {
		assert.Equal(t, services.SublineName("7", i+1), rec.POLine)
		assert.Equal(t, i+1, rec.BatchIndex)
		assert.Equal(t, entry.AddDate(0, 0, 4+5*i+7), rec.ETADate)
		assert.True(t, rec.Quantity.Equal(decimal.NewFromInt(10)))
		assert.Equal(t, entities.FlagLikelySplitSimulated, rec.Flag)
	}
	assert.True(t, *recs[2].IsFinalBatch)
	// the open line keeps its own name
	assert.Equal(t, "7", line.POLine)
}

func TestLikelySplitSimulator_SingleBatchKeepsLineName(t *testing.T) {
	entry := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	line := openLine("PO1", "8", 12, 12, 0)
	line.POEntryDate = entry
	line.Profile = &entities.BatchProfile{BatchProne: true}

	recs, _ := Partition(NewLikelySplitSimulator(catalogDays()).Simulate([]*OpenLine{line}))
	require.Len(t, recs, 1)
	assert.Equal(t, "8", recs[0].POLine)
	assert.Equal(t, entry.AddDate(0, 0, 7), recs[0].ETADate)
}
