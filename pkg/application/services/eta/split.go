package eta

import (
	"github.com/shopspring/decimal"
)

// SplitQuantity divides total into at most count whole-unit batches whose sum is total.
//
// A total at or below minBatch, or a count of one or less, is not split.
// With a positive tail share and at least two batches the final batch
// receives round(total*share), capped at total, and the rest is spread over
// the other batches; a zero share gives equal batches. Any remainder goes to
// the final batch and empty batches are dropped.
func SplitQuantity(total int64, count int, tailShare decimal.Decimal, minBatch int64) []int64 {
	if total <= 0 {
		return nil
	}
	if total <= minBatch || count <= 1 {
		return []int64{total}
	}

	qtys := make([]int64, count)
	if tailShare.IsPositive() {
		tail := decimal.NewFromInt(total).Mul(tailShare).Round(0).IntPart()
		if tail > total {
			tail = total
		}
		front := total - tail
		each := front / int64(count-1)
		for i := 0; i < count-1; i++ {
			qtys[i] = each
		}
		qtys[count-1] = tail + front - each*int64(count-1)
	} else {
		each := total / int64(count)
		for i := range qtys {
			qtys[i] = each
		}
		qtys[count-1] += total - each*int64(count)
	}

	out := qtys[:0]
	for _, q := range qtys {
		if q > 0 {
			out = append(out, q)
		}
	}
	return out
}
