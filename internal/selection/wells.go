// Package selection restricts a run to a subset of wells.
package selection

import (
	"fmt"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/bmatcuk/doublestar/v4"
)

// Wells matches well labels against glob patterns ("A1", "A*", "{A,B}1").
// The zero value matches every well.
type Wells struct {
	patterns []string
}

// ParseWells parses a comma-separated pattern list. Commas inside braces
// belong to the pattern. An empty expression matches every well.
func ParseWells(expr string) (Wells, error) {
	var w Wells
	for _, p := range splitPatterns(expr) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return Wells{}, fmt.Errorf("invalid well pattern %q", p)
		}
		w.patterns = append(w.patterns, p)
	}
	return w, nil
}

func splitPatterns(expr string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				out = append(out, expr[start:i])
				start = i + 1
			}
		}
	}
	return append(out, expr[start:])
}

// All reports whether no restriction applies.
func (w Wells) All() bool { return len(w.patterns) == 0 }

// String returns the patterns joined by commas.
func (w Wells) String() string { return strings.Join(w.patterns, ",") }

// Match reports whether well is selected.
func (w Wells) Match(well string) bool {
	if w.All() {
		return true
	}
	for _, p := range w.patterns {
		// patterns are validated in ParseWells
		if ok, _ := doublestar.Match(p, well); ok {
			return true
		}
	}
	return false
}

// Records keeps the records of selected wells, in input order.
func (w Wells) Records(records []domain.SampleRecord) []domain.SampleRecord {
	if w.All() {
		return records
	}
	var out []domain.SampleRecord
	for _, r := range records {
		if w.Match(r.Well) {
			out = append(out, r)
		}
	}
	return out
}

// Table keeps the rows whose well column is selected. Tables without the
// column are returned unchanged.
func (w Wells) Table(t *domain.Table, column string) *domain.Table {
	if w.All() || t.ColumnIndex(column) < 0 {
		return t
	}
	return t.Filter(func(row map[string]string) bool {
		return w.Match(row[column])
	})
}
