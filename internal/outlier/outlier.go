// Package outlier computes the amount-magnitude cutoff for the top1pct rule.
package outlier

import (
	"math"
	"sort"

	"github.com/opensource-finance/kite/internal/domain"
)

// Cutoff returns the quantile cutoff over the absolute values of all
// non-null amounts in the batch. Batches with at least cfg.LargeBatchSize
// total rows use cfg.LargeBatchQuantile, smaller batches use
// cfg.SmallBatchQuantile. Null amounts are excluded from the population but
// still count toward the batch size. An empty population yields +Inf so
// that no entry qualifies.
func Cutoff(entries []*domain.Entry, cfg *domain.Config) float64 {
	values := make([]float64, 0, len(entries))
	for _, e := range entries {
		if e.Amount != nil {
			values = append(values, math.Abs(*e.Amount))
		}
	}

	q := cfg.SmallBatchQuantile
	if len(entries) >= cfg.LargeBatchSize {
		q = cfg.LargeBatchQuantile
	}

	return Quantile(values, q)
}

// Quantile computes the q-quantile of values using linear interpolation
// between order statistics: rank = q * (n-1) over the sorted values, with
// the result interpolated between the floor and ceiling ranks. Values must
// not contain NaN; ingestion nulls NaN amounts before they can reach the
// population, and a NaN here would propagate into the cutoff.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.Inf(1)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
