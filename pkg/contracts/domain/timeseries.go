package domain

import (
	"fmt"
	"math"
	"time"
)

// TimestampColumn is the label written for the index column of every table.
const TimestampColumn = "Timestamps"

// Table is a time-indexed table of named numeric channels.
// Rows are stored row-major; a missing value is math.NaN().
type Table struct {
	Index   []time.Time `json:"index"`
	Columns []string    `json:"columns" validate:"dive,required"`
	Rows    [][]float64 `json:"rows"`
}

// NewTable creates an empty table with the given columns
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Index:   []time.Time{},
		Columns: cols,
		Rows:    [][]float64{},
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Index)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Append adds a row. The row is copied.
func (t *Table) Append(ts time.Time, values []float64) {
	row := make([]float64, len(values))
	copy(row, values)
	t.Index = append(t.Index, ts)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the position of a column or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of one column's values
func (t *Table) Column(j int) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	c := &Table{
		Index:   make([]time.Time, len(t.Index)),
		Columns: make([]string, len(t.Columns)),
		Rows:    make([][]float64, len(t.Rows)),
	}
	copy(c.Index, t.Index)
	copy(c.Columns, t.Columns)
	for i, row := range t.Rows {
		r := make([]float64, len(row))
		copy(r, row)
		c.Rows[i] = r
	}
	return c
}

// CheckShape checks that every row has one value per column and one timestamp
func (t *Table) CheckShape() error {
	if len(t.Index) != len(t.Rows) {
		return fmt.Errorf("index has %d entries but table has %d rows", len(t.Index), len(t.Rows))
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// Validate checks the shape and that the index is a unique key
func (t *Table) Validate() error {
	if err := t.CheckShape(); err != nil {
		return err
	}
	seen := make(map[time.Time]int, len(t.Index))
	for i, ts := range t.Index {
		if prev, ok := seen[ts]; ok {
			return fmt.Errorf("duplicate timestamp %s at rows %d and %d", ts.Format(time.DateTime), prev, i)
		}
		seen[ts] = i
	}
	return nil
}

// CheckMonotonic returns the number of positions where the index does not
// strictly increase over the previous row.
func (t *Table) CheckMonotonic() int {
	violations := 0
	for i := 1; i < len(t.Index); i++ {
		if !t.Index[i].After(t.Index[i-1]) {
			violations++
		}
	}
	return violations
}

// Span returns the earliest and latest timestamps. ok is false for an empty table.
func (t *Table) Span() (first, last time.Time, ok bool) {
	if t.Empty() {
		return time.Time{}, time.Time{}, false
	}
	first, last = t.Index[0], t.Index[0]
	for _, ts := range t.Index[1:] {
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	return first, last, true
}

// CountMissing returns the number of NaN cells
func (t *Table) CountMissing() int {
	n := 0
	for _, row := range t.Rows {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}
