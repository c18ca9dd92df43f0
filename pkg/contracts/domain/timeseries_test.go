package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.DateTime, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTable_AppendAndClone(t *testing.T) {
	tbl := NewTable([]string{"a", "b"})
	row := []float64{1, 2}
	tbl.Append(ts("2024-05-21 00:00:00"), row)
	row[0] = 99

	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, 1.0, tbl.Rows[0][0], "Append must copy the row")

	c := tbl.Clone()
	c.Rows[0][1] = 42
	c.Columns[0] = "z"
	assert.Equal(t, 2.0, tbl.Rows[0][1])
	assert.Equal(t, "a", tbl.Columns[0])
}

func TestTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		table   *Table
		wantErr string
	}{
		{
			name: "valid",
			table: &Table{
				Index:   []time.Time{ts("2024-05-21 00:00:00"), ts("2024-05-21 01:00:00")},
				Columns: []string{"x"},
				Rows:    [][]float64{{1}, {2}},
			},
		},
		{
			name: "row width mismatch",
			table: &Table{
				Index:   []time.Time{ts("2024-05-21 00:00:00")},
				Columns: []string{"x", "y"},
				Rows:    [][]float64{{1}},
			},
			wantErr: "row 0 has 1 values",
		},
		{
			name: "index length mismatch",
			table: &Table{
				Index:   []time.Time{},
				Columns: []string{"x"},
				Rows:    [][]float64{{1}},
			},
			wantErr: "index has 0 entries",
		},
		{
			name: "duplicate timestamp",
			table: &Table{
				Index:   []time.Time{ts("2024-05-21 00:00:00"), ts("2024-05-21 00:00:00")},
				Columns: []string{"x"},
				Rows:    [][]float64{{1}, {2}},
			},
			wantErr: "duplicate timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTable_CheckShapeAllowsRepeatedIndex(t *testing.T) {
	tbl := &Table{
		Index:   []time.Time{ts("2024-05-21 00:00:00"), ts("2024-05-21 00:00:00")},
		Columns: []string{"x"},
		Rows:    [][]float64{{1}, {2}},
	}
	assert.NoError(t, tbl.CheckShape())
	assert.Error(t, tbl.Validate())
}

func TestTable_CheckMonotonicAndSpan(t *testing.T) {
	tbl := NewTable([]string{"x"})
	tbl.Append(ts("2024-05-21 02:00:00"), []float64{1})
	tbl.Append(ts("2024-05-21 01:00:00"), []float64{2})
	tbl.Append(ts("2024-05-21 03:00:00"), []float64{math.NaN()})

	assert.Equal(t, 1, tbl.CheckMonotonic())

	first, last, ok := tbl.Span()
	require.True(t, ok)
	assert.Equal(t, ts("2024-05-21 01:00:00"), first)
	assert.Equal(t, ts("2024-05-21 03:00:00"), last)
	assert.Equal(t, 1, tbl.CountMissing())

	_, _, ok = NewTable(nil).Span()
	assert.False(t, ok)
}

func TestCheckCampaigns(t *testing.T) {
	day := func(s string) time.Time {
		d, _ := time.Parse(time.DateOnly, s)
		return d
	}

	tests := []struct {
		name      string
		campaigns []Campaign
		wantErr   string
	}{
		{
			name: "adjacent windows are allowed",
			campaigns: []Campaign{
				{Name: "A", Start: day("2024-05-21"), End: day("2024-05-23")},
				{Name: "B", Start: day("2024-05-23"), End: day("2024-05-25")},
			},
		},
		{
			name: "overlap rejected",
			campaigns: []Campaign{
				{Name: "B", Start: day("2024-05-22"), End: day("2024-05-25")},
				{Name: "A", Start: day("2024-05-21"), End: day("2024-05-23")},
			},
			wantErr: "overlaps",
		},
		{
			name: "out of order rejected",
			campaigns: []Campaign{
				{Name: "Jul", Start: day("2024-07-25"), End: day("2024-07-28")},
				{Name: "May", Start: day("2024-05-21"), End: day("2024-05-23")},
			},
			wantErr: "is listed after",
		},
		{
			name: "empty window rejected",
			campaigns: []Campaign{
				{Name: "A", Start: day("2024-05-21"), End: day("2024-05-21")},
			},
			wantErr: "ends before it starts",
		},
		{
			name: "duplicate name rejected",
			campaigns: []Campaign{
				{Name: "A", Start: day("2024-05-21"), End: day("2024-05-22")},
				{Name: "A", Start: day("2024-06-21"), End: day("2024-06-22")},
			},
			wantErr: "duplicate campaign name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCampaigns(tt.campaigns)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCampaign_Contains(t *testing.T) {
	c := Campaign{Name: "May 2024", Start: ts("2024-05-21 00:00:00"), End: ts("2024-05-23 00:00:00")}

	assert.True(t, c.Contains(ts("2024-05-21 00:00:00")))
	assert.True(t, c.Contains(ts("2024-05-22 23:59:59")))
	assert.False(t, c.Contains(ts("2024-05-23 00:00:00")), "end is exclusive")
	assert.False(t, c.Contains(ts("2024-05-20 23:59:59")))
}

func TestPortMap(t *testing.T) {
	p := PortMap{"z6-25818": "", "Port1": "TEROS12_48cm"}

	assert.True(t, p.Has("z6-25818"))
	assert.False(t, p.Has("Port9"))
	s, ok := p.Sensor("Port1")
	assert.True(t, ok)
	assert.Equal(t, "TEROS12_48cm", s)
	assert.Equal(t, 1, p.SensorCount())
}
