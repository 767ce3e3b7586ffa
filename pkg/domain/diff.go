package domain

import (
	"slices"
	"sort"
)

// TableDiff represents the structural differences between a generated table and its reference.
// It is designed to be serialized to JSON for reports.
type TableDiff struct {
	Stage string `json:"stage"`

	// MissingColumns are present in the reference but not generated.
	MissingColumns []string `json:"missing_columns,omitempty"`
	// ExtraColumns are generated but absent from the reference.
	ExtraColumns []string `json:"extra_columns,omitempty"`

	GeneratedRows int `json:"generated_rows"`
	ReferenceRows int `json:"reference_rows"`

	// Mismatches holds at most the first N differing cells (N = limit given to DiffTables).
	Mismatches []CellMismatch `json:"mismatches,omitempty"`
	// TotalMismatches counts every differing cell, including those not listed.
	TotalMismatches int `json:"total_mismatches"`
}

// CellMismatch is a single differing cell. Row indexes the unmatched rows
// in canonical order.
type CellMismatch struct {
	Row       int    `json:"row"`
	Column    string `json:"column"`
	Generated string `json:"generated"`
	Reference string `json:"reference"`
}

// DiffTables compares generated against reference.
// Column sets are compared as sets. Rows equal on the shared columns (in name
// order) are matched regardless of position; only the rows left over on both
// sides are paired, in canonical order, and compared cell by cell. A row that
// exists on one side only shows up in the row counts, not as mismatches.
// At most limit mismatches are listed; limit <= 0 lists none.
//
// A generated table without header or rows has an unknown header: it matches
// any reference without rows.
func DiffTables(generated, reference *Table, limit int) *TableDiff {
	diff := &TableDiff{
		Stage:         generated.Stage,
		GeneratedRows: generated.Len(),
		ReferenceRows: reference.Len(),
	}
	if len(generated.Columns) == 0 && generated.Len() == 0 && reference.Len() == 0 {
		return diff
	}

	// 1. Column sets
	for _, c := range reference.Columns {
		if generated.ColumnIndex(c) < 0 {
			diff.MissingColumns = append(diff.MissingColumns, c)
		}
	}
	var shared []string
	for _, c := range generated.Columns {
		if reference.ColumnIndex(c) < 0 {
			diff.ExtraColumns = append(diff.ExtraColumns, c)
		} else {
			shared = append(shared, c)
		}
	}
	sort.Strings(shared)

	// 2. Canonical row order over shared columns, identical rows matched
	genRows, refRows := unmatched(canonicalRows(generated, shared), canonicalRows(reference, shared))

	// 3. Cell-wise comparison of the leftovers
	n := min(len(genRows), len(refRows))
	for i := 0; i < n; i++ {
		for j, c := range shared {
			if genRows[i][j] == refRows[i][j] {
				continue
			}
			diff.TotalMismatches++
			if len(diff.Mismatches) < limit {
				diff.Mismatches = append(diff.Mismatches, CellMismatch{
					Row:       i,
					Column:    c,
					Generated: genRows[i][j],
					Reference: refRows[i][j],
				})
			}
		}
	}

	return diff
}

// unmatched walks two sorted row lists and drops the rows present in both,
// counting duplicates.
func unmatched(a, b [][]string) ([][]string, [][]string) {
	var restA, restB [][]string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch c := slices.Compare(a[i], b[j]); {
		case c == 0:
			i++
			j++
		case c < 0:
			restA = append(restA, a[i])
			i++
		default:
			restB = append(restB, b[j])
			j++
		}
	}
	return append(restA, a[i:]...), append(restB, b[j:]...)
}

// canonicalRows projects t onto columns and sorts the projected rows lexicographically.
func canonicalRows(t *Table, columns []string) [][]string {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.ColumnIndex(c)
	}

	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		projected := make([]string, len(idx))
		for j, k := range idx {
			projected[j] = r[k]
		}
		rows[i] = projected
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return slices.Compare(rows[a], rows[b]) < 0
	})
	return rows
}

// IsEmpty checks if the diff contains no differences at all.
func (d *TableDiff) IsEmpty() bool {
	return len(d.MissingColumns) == 0 &&
		len(d.ExtraColumns) == 0 &&
		d.GeneratedRows == d.ReferenceRows &&
		d.TotalMismatches == 0
}
