package stats

import (
	"sort"

	"github.com/verte-zerg/ghostkeys/internal/model"
)

// SlowestClasses returns up to n class names ordered by mean delay, slowest
// first. Ties break on name.
func SlowestClasses(aggs []model.ClassAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.ClassAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Count > 0 {
			items = append(items, agg)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		mi, mj := items[i].MeanMs(), items[j].MeanMs()
		if mi == mj {
			return items[i].Class < items[j].Class
		}
		return mi > mj
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for _, agg := range items[:n] {
		out = append(out, agg.Class)
	}
	return out
}
