package exporter

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrocli/pkg/contracts/domain"
)

func TestTableExporter_WriteTimeSeries(t *testing.T) {
	_, paths := setupTestEnv(t)
	exp := NewTableExporter(paths)

	tbl := domain.NewTable([]string{"temperature_C", "depth_m"})
	tbl.Append(time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC), []float64{12.5, 3})
	tbl.Append(time.Date(2024, 5, 21, 0, 15, 0, 0, time.UTC), []float64{math.NaN(), 3.25})

	target := paths.PiezometerFormattedPath("P1")
	require.NoError(t, exp.WriteTimeSeries(target, tbl))

	assert.Equal(t, []string{
		"Timestamps,temperature_C,depth_m",
		"2024-05-21 00:00:00,12.5,3",
		"2024-05-21 00:15:00,,3.25",
	}, readLines(t, target))
}

func TestTableExporter_WriteDaily(t *testing.T) {
	_, paths := setupTestEnv(t)
	exp := NewTableExporter(paths)

	tbl := domain.NewTable([]string{"v"})
	tbl.Append(time.Date(2024, 5, 21, 0, 0, 0, 0, time.UTC), []float64{15})

	target := paths.DailyPath("piezo-data_P1")
	require.NoError(t, exp.WriteDaily(target, tbl))
	assert.Equal(t, []string{"Timestamps,v", "2024-05-21,15"}, readLines(t, target))
}

func TestTableExporter_EmptyTableIsHeaderOnly(t *testing.T) {
	_, paths := setupTestEnv(t)
	exp := NewTableExporter(paths)

	target := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, exp.WriteTimeSeries(target, domain.NewTable(nil)))
	assert.Equal(t, []string{"Timestamps"}, readLines(t, target))
}

func TestTableExporter_RejectsMalformedTable(t *testing.T) {
	_, paths := setupTestEnv(t)
	exp := NewTableExporter(paths)

	bad := &domain.Table{
		Index:   []time.Time{time.Now()},
		Columns: []string{"a", "b"},
		Rows:    [][]float64{{1}},
	}
	target := filepath.Join(t.TempDir(), "bad.csv")
	err := exp.WriteTimeSeries(target, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to write")
}

func TestTableExporter_KeepsRepeatedTimestamps(t *testing.T) {
	_, paths := setupTestEnv(t)
	exp := NewTableExporter(paths)

	ts := time.Date(2024, 5, 21, 9, 15, 0, 0, time.UTC)
	tbl := domain.NewTable([]string{"v"})
	tbl.Append(ts, []float64{1})
	tbl.Append(ts, []float64{2})

	target := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, exp.WriteTimeSeries(target, tbl))
	assert.Equal(t, []string{
		"Timestamps,v",
		"2024-05-21 09:15:00,1",
		"2024-05-21 09:15:00,2",
	}, readLines(t, target))
}
