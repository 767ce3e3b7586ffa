package runtime

import (
	"slices"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
)

var prefixOrder = []string{
	domain.PrefixMetadata,
	domain.PrefixPathName,
	domain.PrefixFileName,
	domain.PrefixFrame,
}

func prefixRank(column string) int {
	for i, p := range prefixOrder {
		if strings.HasPrefix(column, p) {
			return i
		}
	}
	return len(prefixOrder)
}

// applyLayout reorders the columns of t in place. The declared layout keeps
// emission order; by_prefix stably groups columns by their prefix.
func applyLayout(t *domain.Table, layout spec.Layout) {
	if layout != spec.LayoutByPrefix || len(t.Columns) == 0 {
		return
	}
	perm := make([]int, len(t.Columns))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		return prefixRank(t.Columns[a]) - prefixRank(t.Columns[b])
	})

	columns := make([]string, len(perm))
	for i, j := range perm {
		columns[i] = t.Columns[j]
	}
	t.Columns = columns
	for r, row := range t.Rows {
		reordered := make([]string, len(perm))
		for i, j := range perm {
			reordered[i] = row[j]
		}
		t.Rows[r] = reordered
	}
}
