package runtime

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
)

// syntheticGroups enumerates the groups of a synthetic stage: the upstream
// stage's groups projected onto the non-axis keys, times every tile.
// Projected groups with no member passing this stage's filter are dropped.
func (p *Plan) syntheticGroups(sp *StagePlan, records []domain.SampleRecord) ([]*group, error) {
	syn := sp.synthetic
	up, ok := p.stages[syn.from]
	if !ok {
		return nil, fmt.Errorf("stage %q: upstream %w: %q", sp.ID, domain.ErrStageNotFound, syn.from)
	}

	// 1. Upstream groups
	filtered, err := up.filterRecords(records)
	if err != nil {
		return nil, err
	}
	upstream, err := partition(up.ID, up.Grouping, filtered)
	if err != nil {
		return nil, fmt.Errorf("upstream stage %q: %w", up.ID, err)
	}

	// 2. Projection onto the non-axis keys
	var projected []*group
	index := make(map[string]*group)
	for _, ug := range upstream {
		members, err := sp.filterRecords(ug.members)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			continue
		}

		values := make(map[string]any, len(syn.project)+1)
		var id strings.Builder
		for _, k := range syn.project {
			values[k] = ug.values[k]
			fmt.Fprintf(&id, "%v\x00", ug.values[k])
		}
		g, ok := index[id.String()]
		if !ok {
			g = &group{values: values}
			index[id.String()] = g
			projected = append(projected, g)
		}
		g.members = append(g.members, members...)
	}

	// 3. Tile enumeration
	out := make([]*group, 0, len(projected)*len(syn.tiles))
	for _, g := range projected {
		slices.SortStableFunc(g.members, compareMembers)
		for _, tile := range syn.tiles {
			values := maps.Clone(g.values)
			values[syn.axis] = tile
			out = append(out, &group{values: values, members: g.members})
		}
	}
	return out, nil
}
