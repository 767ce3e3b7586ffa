package validator

import (
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
)

// NormalizeCell returns the canonical form of a cell before comparison:
// surrounding space trimmed, integral floats written as integers ("1.0" -> "1"),
// and on PathName_ columns backslashes turned into slashes with trailing
// slashes removed.
func NormalizeCell(column, value string) string {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(column, domain.PrefixPathName) {
		v = strings.ReplaceAll(v, `\`, "/")
		if trimmed := strings.TrimRight(v, "/"); trimmed != "" {
			v = trimmed
		}
		return v
	}
	return normalizeNumber(v)
}

func normalizeNumber(v string) string {
	if !strings.ContainsAny(v, ".eE") {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return v
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Normalize returns a copy of t with every cell normalized.
func Normalize(t *domain.Table) *domain.Table {
	out := t.Clone()
	for _, row := range out.Rows {
		for j, c := range out.Columns {
			row[j] = NormalizeCell(c, row[j])
		}
	}
	return out
}
