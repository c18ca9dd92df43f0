package dataprocessing

import (
	"math"
	"time"

	"hydrocli/pkg/contracts/domain"
)

// AggregateDaily resamples a table to one row per calendar day, from the day
// of the earliest timestamp through the day of the latest. Each cell is the
// mean of that day's non-missing values, NaN when there are none. An empty
// table yields an empty table with the same columns.
func AggregateDaily(t *domain.Table) *domain.Table {
	out := domain.NewTable(t.Columns)
	first, last, ok := t.Span()
	if !ok {
		return out
	}

	startDay := truncateDay(first)
	start := dayNumber(first)
	days := int(dayNumber(last)-start) + 1

	sums := make([][]float64, days)
	counts := make([][]int, days)
	for d := range sums {
		sums[d] = make([]float64, len(t.Columns))
		counts[d] = make([]int, len(t.Columns))
	}

	for i, ts := range t.Index {
		d := int(dayNumber(ts) - start)
		for j, v := range t.Rows[i] {
			if math.IsNaN(v) {
				continue
			}
			sums[d][j] += v
			counts[d][j]++
		}
	}

	row := make([]float64, len(t.Columns))
	for d := 0; d < days; d++ {
		for j := range row {
			if counts[d][j] == 0 {
				row[j] = math.NaN()
			} else {
				row[j] = sums[d][j] / float64(counts[d][j])
			}
		}
		out.Append(startDay.AddDate(0, 0, d), row)
	}
	return out
}

// dayNumber counts calendar days since the epoch, ignoring the UTC offset
func dayNumber(ts time.Time) int64 {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// truncateDay returns midnight of ts's calendar day in ts's location
func truncateDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
