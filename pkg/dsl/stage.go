package dsl

import "github.com/aretw0/stagegen/pkg/spec"

// StageBuilder provides a fluent API for configuring a stage.
type StageBuilder struct {
	stage   spec.Stage
	builder *Builder
}

// Name sets the human-readable stage name.
func (s *StageBuilder) Name(name string) *StageBuilder {
	s.stage.Name = name
	return s
}

// Filter sets the record filter expression.
func (s *StageBuilder) Filter(expr string) *StageBuilder {
	s.stage.Filter = expr
	return s
}

// Group sets the grouping keys, in order.
func (s *StageBuilder) Group(keys ...string) *StageBuilder {
	s.stage.Grouping = keys
	return s
}

// ByPrefix orders columns Metadata, PathName, FileName, Frame, then the rest.
func (s *StageBuilder) ByPrefix() *StageBuilder {
	s.stage.Layout = spec.LayoutByPrefix
	return s
}

// Synthetic makes the stage enumerate count tiles, numbered from start,
// for every group of the upstream stage.
func (s *StageBuilder) Synthetic(from string, count, start int) *StageBuilder {
	s.stage.Synthetic = &spec.Synthetic{From: from, Count: count, Start: start}
	return s
}

// Substitute adds a literal replacement applied to synthesized values.
// It has no effect before Synthetic.
func (s *StageBuilder) Substitute(from, to string, target spec.SubstitutionTarget) *StageBuilder {
	if s.stage.Synthetic != nil {
		s.stage.Synthetic.Substitutions = append(s.stage.Synthetic.Substitutions,
			spec.Substitution{From: from, To: to, Target: target})
	}
	return s
}

// Static adds a single templated column.
func (s *StageBuilder) Static(name, template string) *StageBuilder {
	return s.addStatic(name, template, false)
}

// StaticPath adds a single templated column that receives path rewriting.
func (s *StageBuilder) StaticPath(name, template string) *StageBuilder {
	return s.addStatic(name, template, true)
}

func (s *StageBuilder) addStatic(name, template string, path bool) *StageBuilder {
	s.stage.Columns = append(s.stage.Columns, spec.ColumnGroup{
		Static: &spec.Static{Name: name, Template: template, Path: path},
	})
	return s
}

// PerChannel adds a per-channel column family.
func (s *StageBuilder) PerChannel(g *ChannelGroup) *StageBuilder {
	pc := g.build()
	s.stage.Columns = append(s.stage.Columns, spec.ColumnGroup{PerChannel: &pc})
	return s
}

// PerCycle nests channel families once per cycle. Pass Observed() or Cycles(...).
func (s *StageBuilder) PerCycle(cycles spec.CycleSource, groups ...*ChannelGroup) *StageBuilder {
	pc := &spec.PerCycle{Cycles: cycles}
	for _, g := range groups {
		pc.Groups = append(pc.Groups, g.build())
	}
	s.stage.Columns = append(s.stage.Columns, spec.ColumnGroup{PerCycle: pc})
	return s
}

// Stage switches to another stage of the same document.
func (s *StageBuilder) Stage(id string) *StageBuilder {
	return s.builder.Stage(id)
}

// Observed iterates every cycle present in the group.
func Observed() spec.CycleSource {
	return spec.CycleSource{Observed: true}
}

// Cycles iterates a fixed list of cycles.
func Cycles(cycles ...int) spec.CycleSource {
	return spec.CycleSource{List: cycles}
}
