package runtime

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/stagegen/internal/compiler"
	"github.com/aretw0/stagegen/pkg/domain"
)

// group is every record sharing one grouping-key tuple.
type group struct {
	values  map[string]any // grouping key -> value
	members []domain.SampleRecord
}

// filterRecords returns the records accepted by the stage filter, in input order.
func (sp *StagePlan) filterRecords(records []domain.SampleRecord) ([]domain.SampleRecord, error) {
	var out []domain.SampleRecord
	for _, r := range records {
		ok, err := sp.filter.Match(compiler.RecordEnv(r))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// partition groups records by keys, preserving the first-seen order of key tuples.
// Members of each group are sorted by cycle, site and path so the
// representative record does not depend on input order.
func partition(stage string, keys []string, records []domain.SampleRecord) ([]*group, error) {
	var groups []*group
	index := make(map[string]*group)

	for _, r := range records {
		values := make(map[string]any, len(keys))
		var id strings.Builder
		for _, k := range keys {
			if k == domain.KeyTile {
				return nil, &domain.GroupingError{Stage: stage, Key: k, Reason: "only synthetic stages can group by tile"}
			}
			v, ok := r.Field(k)
			if !ok {
				return nil, &domain.GroupingError{Stage: stage, Key: k, Reason: fmt.Sprintf("record %s has no %s", r.Path, k)}
			}
			values[k] = v
			fmt.Fprintf(&id, "%v\x00", v)
		}

		g, ok := index[id.String()]
		if !ok {
			g = &group{values: values}
			index[id.String()] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, r)
	}

	for _, g := range groups {
		slices.SortStableFunc(g.members, compareMembers)
	}
	return groups, nil
}

func compareMembers(a, b domain.SampleRecord) int {
	return cmp.Or(
		cmp.Compare(intOr(a.Cycle, -1), intOr(b.Cycle, -1)),
		cmp.Compare(intOr(a.Site, -1), intOr(b.Site, -1)),
		strings.Compare(a.Path, b.Path),
	)
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// cycles returns the distinct cycles carried by members, ascending.
func cycles(members []domain.SampleRecord) []int {
	var out []int
	for _, m := range members {
		if m.Cycle != nil && !slices.Contains(out, *m.Cycle) {
			out = append(out, *m.Cycle)
		}
	}
	slices.Sort(out)
	return out
}

// inCycle returns the members acquired in cycle c.
func inCycle(members []domain.SampleRecord, c int) []domain.SampleRecord {
	var out []domain.SampleRecord
	for _, m := range members {
		if m.Cycle != nil && *m.Cycle == c {
			out = append(out, m)
		}
	}
	return out
}

// describeGroup renders a key tuple as "plate=P1,well=A01".
func describeGroup(keys []string, values map[string]any) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, values[k])
	}
	return strings.Join(parts, ",")
}
