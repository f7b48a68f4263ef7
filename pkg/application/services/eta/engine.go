package eta

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/application/dto"
	"github.com/ErrorLSC/QMS/pkg/application/services/delivery"
	"github.com/ErrorLSC/QMS/pkg/application/services/leadtime"
	"github.com/ErrorLSC/QMS/pkg/application/services/transport"
	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// Inputs is everything one run reads
type Inputs struct {
	History   []*entities.ShipmentRecord
	InTransit []*entities.ShipmentRecord

	VendorStats repositories.VendorStatsRepository
	ItemStats   repositories.ItemStatsRepository
}

// Engine turns open PO lines into arrival-date recommendations
type Engine struct {
	catalog *services.ModePolicyCatalog
	opts    Options
	logger  *zap.Logger
}

// NewEngine creates an engine. A nil catalog selects the default catalog.
func NewEngine(catalog *services.ModePolicyCatalog, opts Options, logger *zap.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}
	if catalog == nil {
		catalog = services.DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{catalog: catalog, opts: opts, logger: logger}, nil
}

// Run executes one batch: unify delivery records, prepare and route the open
// lines, simulate every case and aggregate the result.
func (e *Engine) Run(ctx context.Context, in Inputs) (*dto.ETAResult, error) {
	now := e.opts.now()
	runID := uuid.NewString()
	log := e.logger.With(zap.String("run_id", runID))

	var vendorStats leadtime.TransportStatLookup
	if in.VendorStats != nil {
		vendorStats = in.VendorStats
	}

	// Step 1: unified delivery records with corrected history modes
	unifier := delivery.NewUnifier(e.catalog, vendorStats, e.opts.DeliveryToleranceDays, log)
	merged := unifier.Merge(in.History, in.InTransit)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 2: lead-time estimates and case routing
	lines := Prepare(in.InTransit, in.ItemStats, e.opts, log)
	cases := Route(lines)
	log.Info("open lines routed",
		zap.Int("total", cases.Total()),
		zap.Int("confirmed", len(cases.Confirmed)),
		zap.Int("shipped", len(cases.Shipped)),
		zap.Int("split_in_progress", len(cases.SplitInProgress)),
		zap.Int("likely_split", len(cases.LikelySplit)),
		zap.Int("single_delivery", len(cases.SingleDelivery)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: simulators
	days := NewTransportDays(e.catalog, in.VendorStats, e.opts.LeadMetric)
	cache := leadtime.BuildFallbackCache(e.catalog, in.History, log)
	resolver := leadtime.NewResolver(e.catalog, vendorStats, cache, log)
	corrector := transport.NewCorrector(resolver, e.opts.ShippedToleranceDays, log)

	single, err := SingleDeliverySimulator{AbortOnPrecondition: e.opts.AbortOnPrecondition}.Simulate(cases.SingleDelivery)
	if err != nil {
		return nil, fmt.Errorf("single delivery simulation: %w", err)
	}
	shipped, shippedStats := NewShippedSimulator(e.catalog, corrector, days, log).Simulate(cases.Shipped, now)
	tail := NewTailBatchSimulator(merged.Records, delivery.LastShipmentLookup(merged.Records), days, e.opts).Simulate(cases.SplitInProgress)
	likely := NewLikelySplitSimulator(days).Simulate(cases.LikelySplit)
	confirmed := ConfirmedSimulator{}.Simulate(cases.Confirmed, now)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 4: aggregate
	var parts [][]*entities.ETARecommendation
	var skips SkipLog
	for _, rows := range [][]RowResult{confirmed, shipped, tail, likely, single} {
		recs, s := Partition(rows)
		parts = append(parts, recs)
		skips = append(skips, s...)
	}
	recs := Aggregate(now, parts...)

	for _, s := range skips {
		log.Warn("line skipped",
			zap.String("line", s.Key.String()),
			zap.Stringer("case", s.Case),
			zap.String("reason", s.Reason))
	}

	result := &dto.ETAResult{
		RunID:           runID,
		GeneratedAt:     now,
		Recommendations: recs,
		Skips:           make([]dto.Skip, 0, len(skips)),
		CaseCounts:      cases.Counts(),
		Corrections: map[string]dto.ModeCorrectionCounts{
			dto.CorrectionDelivery: correctionCounts(merged.Corrections),
			dto.CorrectionShipped:  correctionCounts(shippedStats),
		},
	}
	for _, s := range skips {
		result.Skips = append(result.Skips, dto.Skip{
			PONumber: s.Key.PONumber,
			POLine:   s.Key.POLine,
			Case:     s.Case,
			Reason:   s.Reason,
		})
	}

	log.Info("eta run complete",
		zap.Int("recommendations", len(recs)),
		zap.Int("skipped", skips.Count()))
	return result, nil
}

func correctionCounts(s transport.CorrectionStats) dto.ModeCorrectionCounts {
	return dto.ModeCorrectionCounts{
		Accepted:   s.Accepted,
		Reassigned: s.Reassigned,
		Unresolved: s.Unresolved,
		NoEvidence: s.NoEvidence,
	}
}
