package runtime

import (
	"strings"

	"github.com/aretw0/stagegen/internal/compiler"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
)

// assemble expands every column group, in declared order, into the row of group g.
func (sp *StagePlan) assemble(g *group) (*domain.OutputRow, error) {
	row := domain.NewOutputRow()
	set := func(column, value string) error {
		if err := row.Set(column, value); err != nil {
			return &domain.TemplateError{Stage: sp.ID, Column: column, Reason: err.Error()}
		}
		return nil
	}
	base := env{consts: sp.consts, group: g.values}

	for _, c := range sp.columns {
		switch {
		case c.static != nil:
			v, err := c.static.value.Render(&base)
			if err != nil {
				return nil, compiler.Annotate(err, sp.ID, c.static.name)
			}
			if c.static.path {
				v = sp.rewrite(v, spec.TargetPath)
			}
			if err := set(c.static.name, v); err != nil {
				return nil, err
			}

		case c.channel != nil:
			if err := sp.expandChannels(set, c.channel, base, g.members, nil); err != nil {
				return nil, err
			}

		case c.cycle != nil:
			list := c.cycle.cycles
			if c.cycle.observed {
				list = cycles(g.members)
			}
			for _, cy := range list {
				members := inCycle(g.members, cy)
				for _, cp := range c.cycle.groups {
					if err := sp.expandChannels(set, cp, base, members, &cy); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return row, nil
}

// expandChannels emits the PathName/FileName/Frame triplet of every channel of cp.
// Owner fields resolve against the first member carrying the channel.
func (sp *StagePlan) expandChannels(set func(string, string) error, cp *channelPlan, base env, members []domain.SampleRecord, cycle *int) error {
	channels := cp.channels
	if cp.fromRecord {
		if len(members) == 0 {
			return &domain.TemplateError{
				Stage:       sp.ID,
				Column:      cp.name.String(),
				Placeholder: domain.FieldChannels,
				Reason:      "no record in scope to take channels from",
			}
		}
		channels = members[0].Channels
	}

	for _, ch := range channels {
		if !cp.rule.Emits(ch, cycle) {
			continue
		}
		e := base
		e.channel = ch
		e.cycle = cycle
		if !sp.Synthetic() {
			e.owner = owner(members, ch)
		}

		name, err := cp.name.Render(&e)
		if err != nil {
			return compiler.Annotate(err, sp.ID, cp.name.String())
		}
		pathCol := domain.PrefixPathName + name
		fileCol := domain.PrefixFileName + name

		p, err := cp.path.Render(&e)
		if err != nil {
			return compiler.Annotate(err, sp.ID, pathCol)
		}
		f, err := cp.file.Render(&e)
		if err != nil {
			return compiler.Annotate(err, sp.ID, fileCol)
		}
		if err := set(pathCol, sp.rewrite(p, spec.TargetPath)); err != nil {
			return err
		}
		if err := set(fileCol, sp.rewrite(f, spec.TargetFile)); err != nil {
			return err
		}

		if cp.frame != nil {
			frameCol := domain.PrefixFrame + name
			fr, err := cp.frame.Render(&e)
			if err != nil {
				return compiler.Annotate(err, sp.ID, frameCol)
			}
			if err := set(frameCol, fr); err != nil {
				return err
			}
		}
	}
	return nil
}

func owner(members []domain.SampleRecord, channel string) *domain.SampleRecord {
	for i := range members {
		if members[i].HasChannel(channel) {
			return &members[i]
		}
	}
	return nil
}

// rewrite applies synthetic substitutions for target, then the container path
// translation for path cells.
func (sp *StagePlan) rewrite(v string, target spec.SubstitutionTarget) string {
	if sp.synthetic != nil {
		for _, s := range sp.synthetic.substitutions {
			if s.Applies(target) {
				v = strings.ReplaceAll(v, s.From, s.To)
			}
		}
	}
	if target == spec.TargetPath {
		v = sp.translate.Apply(v)
	}
	return v
}

// header derives the column header of a stage without any group. It reports
// false when a column name depends on records: channels taken from the
// record or cycles observed in the group.
func (sp *StagePlan) header() ([]string, bool) {
	var columns []string
	base := env{consts: sp.consts}
	names := func(cp *channelPlan, cycle *int) bool {
		if cp.fromRecord {
			return false
		}
		for _, ch := range cp.channels {
			if !cp.rule.Emits(ch, cycle) {
				continue
			}
			e := base
			e.channel = ch
			e.cycle = cycle
			name, err := cp.name.Render(&e)
			if err != nil {
				return false
			}
			columns = append(columns, domain.PrefixPathName+name, domain.PrefixFileName+name)
			if cp.frame != nil {
				columns = append(columns, domain.PrefixFrame+name)
			}
		}
		return true
	}

	for _, c := range sp.columns {
		switch {
		case c.static != nil:
			columns = append(columns, c.static.name)
		case c.channel != nil:
			if !names(c.channel, nil) {
				return nil, false
			}
		case c.cycle != nil:
			if c.cycle.observed {
				return nil, false
			}
			for _, cy := range c.cycle.cycles {
				for _, cp := range c.cycle.groups {
					if !names(cp, &cy) {
						return nil, false
					}
				}
			}
		}
	}
	return columns, true
}
