package eta

import (
	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
)

// OpenLine is an in-transit PO line enriched with the estimates the simulators need
type OpenLine struct {
	*entities.ShipmentRecord

	// TotalLeadTime is prepare plus transport days, nil when no estimate exists
	TotalLeadTime         *float64
	FallbackTotalLeadUsed bool
	PrepDays              int

	Profile  *entities.BatchProfile
	Behavior *entities.DeliveryBehaviorStat
}

func (l *OpenLine) itemKey() entities.ItemStatKey {
	return entities.ItemStatKey{
		ItemCode:   l.ItemCode,
		Warehouse:  l.Warehouse,
		VendorCode: l.VendorCode,
		Mode:       l.TransportMode,
	}
}

// BatchProne reports whether the line's batch profile expects split deliveries
func (l *OpenLine) BatchProne() bool {
	return l.Profile != nil && l.Profile.BatchProne
}

// Prepare copies the open records and attaches lead-time estimates, batch
// profiles and delivery behaviour. Missing total lead times fall back to the
// item master lead time.
func Prepare(open []*entities.ShipmentRecord, stats repositories.ItemStatsRepository, opts Options, logger *zap.Logger) []*OpenLine {
	if logger == nil {
		logger = zap.NewNop()
	}

	lines := make([]*OpenLine, 0, len(open))
	fallbacks, missing := 0, 0
	for _, src := range open {
		rec := *src
		if rec.TransportMode == "" {
			rec.TransportMode = entities.ModeDefault
		}
		line := &OpenLine{ShipmentRecord: &rec, PrepDays: opts.DefaultPrepDays}
		key := line.itemKey()

		if stats != nil {
			if smart, err := stats.GetSmartLeadTime(key); err == nil {
				if v := opts.LeadMetric.FromSmartLeadTime(smart); v != nil {
					line.TotalLeadTime = entities.Float(*v)
				}
				if smart.Q60Prep != nil {
					line.PrepDays = int(*smart.Q60Prep)
				}
			}
			if line.TotalLeadTime == nil {
				if inv, err := stats.GetInventoryLeadTime(rec.ItemCode, rec.Warehouse); err == nil {
					line.TotalLeadTime = entities.Float(inv.LeadTimeDays)
					line.FallbackTotalLeadUsed = true
					fallbacks++
				}
			}
			if p, err := stats.GetBatchProfile(key); err == nil {
				line.Profile = p
			}
			if b, err := stats.GetDeliveryBehavior(key); err == nil {
				line.Behavior = b
			}
		}
		if line.TotalLeadTime == nil {
			missing++
		}
		lines = append(lines, line)
	}

	if fallbacks > 0 || missing > 0 {
		logger.Warn("total lead time incomplete",
			zap.String("metric", string(opts.LeadMetric)),
			zap.Int("inventory_fallback", fallbacks),
			zap.Int("still_missing", missing))
	}
	return lines
}
