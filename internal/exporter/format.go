package exporter

import (
	"math"
	"strconv"
	"time"
)

// formatFloat formats a value in its shortest round-trip form; NaN is an empty cell
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatTime formats an index value with the given layout
func formatTime(ts time.Time, layout string) string {
	return ts.Format(layout)
}
