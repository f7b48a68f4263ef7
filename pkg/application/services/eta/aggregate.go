package eta

import (
	"sort"
	"time"

	"github.com/ErrorLSC/QMS/pkg/domain/entities"
	"github.com/ErrorLSC/QMS/pkg/domain/services"
)

// Aggregate concatenates simulator outputs into one ordered result set and
// marks recommendations whose ETA week is before the week of now.
func Aggregate(now time.Time, parts ...[]*entities.ETARecommendation) []*entities.ETARecommendation {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]*entities.ETARecommendation, 0, n)
	thisWeek := entities.YearWeek(now)
	for _, p := range parts {
		for _, r := range p {
			if r.TransportMode == "" {
				r.TransportMode = entities.ModeDefault
			}
			if r.ETAWeek == "" {
				r.ETAWeek = entities.YearWeek(r.ETADate)
			}
			r.Overdue = r.ETAWeek != "" && r.ETAWeek < thisWeek
			out = append(out, r)
		}
	}

	lc := services.NewLineComparator()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ItemCode != b.ItemCode {
			return a.ItemCode < b.ItemCode
		}
		if a.Warehouse != b.Warehouse {
			return a.Warehouse < b.Warehouse
		}
		if a.PONumber != b.PONumber {
			return a.PONumber < b.PONumber
		}
		if c := lc.Compare(a.POLine, b.POLine); c != 0 {
			return c < 0
		}
		return a.BatchIndex < b.BatchIndex
	})
	return out
}
