package domain

import (
	"fmt"
	"slices"
	"time"
)

// OutputRow is an ordered column -> value mapping assembled for one group.
// Column order is insertion order.
type OutputRow struct {
	columns []string
	values  []string
	index   map[string]int
}

// NewOutputRow creates an empty row.
func NewOutputRow() *OutputRow {
	return &OutputRow{index: make(map[string]int)}
}

// Set appends a column. Setting the same column twice is an error: a stage
// must never emit two values under one header.
func (r *OutputRow) Set(column, value string) error {
	if _, exists := r.index[column]; exists {
		return fmt.Errorf("duplicate column %q", column)
	}
	r.index[column] = len(r.columns)
	r.columns = append(r.columns, column)
	r.values = append(r.values, value)
	return nil
}

// Get returns the value stored under column.
func (r *OutputRow) Get(column string) (string, bool) {
	i, ok := r.index[column]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Columns returns the column names in emission order.
func (r *OutputRow) Columns() []string { return r.columns }

// Values returns the cell values aligned with Columns.
func (r *OutputRow) Values() []string { return r.values }

// Table holds every row of one stage. All rows share the same header.
type Table struct {
	Stage   string
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with a fixed header.
func NewTable(stage string, columns []string) *Table {
	return &Table{Stage: stage, Columns: columns}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of column in the header, or -1.
func (t *Table) ColumnIndex(column string) int {
	return slices.Index(t.Columns, column)
}

// Row returns row i as a column -> value map.
func (t *Table) Row(i int) map[string]string {
	m := make(map[string]string, len(t.Columns))
	for j, c := range t.Columns {
		m[c] = t.Rows[i][j]
	}
	return m
}

// AppendRow adds an assembled row. The row header must equal the table header.
func (t *Table) AppendRow(row *OutputRow) error {
	if !slices.Equal(row.Columns(), t.Columns) {
		return fmt.Errorf("row has %d columns %v, table expects %d", len(row.Columns()), row.Columns(), len(t.Columns))
	}
	t.Rows = append(t.Rows, slices.Clone(row.Values()))
	return nil
}

// Filter returns a new table keeping only the rows accepted by keep.
func (t *Table) Filter(keep func(row map[string]string) bool) *Table {
	out := NewTable(t.Stage, slices.Clone(t.Columns))
	for i, r := range t.Rows {
		if keep(t.Row(i)) {
			out.Rows = append(out.Rows, slices.Clone(r))
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := NewTable(t.Stage, slices.Clone(t.Columns))
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}

// StageResult is the outcome of generating one stage.
// Exactly one of Table and Err is set.
type StageResult struct {
	Stage    string
	Name     string
	Table    *Table
	Err      error
	Duration time.Duration
}

// OK reports whether the stage produced a table.
func (r StageResult) OK() bool {
	return r.Err == nil && r.Table != nil
}
