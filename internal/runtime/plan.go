package runtime

import (
	"fmt"

	"github.com/aretw0/stagegen/internal/compiler"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
)

// Plan is a rule document with every filter and template compiled.
type Plan struct {
	doc    *spec.Document
	order  []string
	stages map[string]*StagePlan
}

// StagePlan is the compiled form of one stage.
type StagePlan struct {
	ID       string
	Name     string
	Grouping []string
	Layout   spec.Layout

	consts    map[string]any
	filter    *compiler.Expr
	columns   []columnPlan
	synthetic *syntheticPlan
	translate *spec.PathTranslation
}

type columnPlan struct {
	static  *staticPlan
	channel *channelPlan
	cycle   *cyclePlan
}

type staticPlan struct {
	name  string
	value *compiler.Template
	path  bool
}

type channelPlan struct {
	rule       *spec.PerChannel
	fromRecord bool
	channels   []string
	name       *compiler.Template
	path       *compiler.Template
	file       *compiler.Template
	frame      *compiler.Template // nil when no Frame_ column is emitted
}

type cyclePlan struct {
	observed bool
	cycles   []int
	groups   []*channelPlan
}

type syntheticPlan struct {
	from          string
	axis          string
	project       []string // grouping keys other than the axis
	tiles         []int
	substitutions []spec.Substitution
}

// Compile validates doc and compiles every stage.
// Any problem is returned as a *domain.SpecError; nothing is compiled partially.
func Compile(doc *spec.Document) (*Plan, error) {
	if err := spec.Validate(doc); err != nil {
		return nil, err
	}

	p := &Plan{doc: doc, order: doc.StageIDs(), stages: make(map[string]*StagePlan, len(doc.Stages))}
	var errs []*domain.SpecError
	for _, id := range p.order {
		sp, stageErrs := compileStage(doc, doc.Stages[id])
		errs = append(errs, stageErrs...)
		p.stages[id] = sp
	}
	if err := spec.Join(errs); err != nil {
		return nil, err
	}
	return p, nil
}

// Document returns the source document.
func (p *Plan) Document() *spec.Document { return p.doc }

// Stages lists stage ids in execution order.
func (p *Plan) Stages() []string { return p.order }

// Stage returns the compiled stage.
func (p *Plan) Stage(id string) (*StagePlan, bool) {
	sp, ok := p.stages[id]
	return sp, ok
}

func compileStage(doc *spec.Document, st *spec.Stage) (*StagePlan, []*domain.SpecError) {
	var errs []*domain.SpecError
	fail := func(field string, err error) {
		errs = append(errs, &domain.SpecError{Stage: st.ID, Field: field, Err: compiler.Annotate(err, st.ID, "")})
	}

	sp := &StagePlan{
		ID:        st.ID,
		Name:      st.Name,
		Grouping:  st.Grouping,
		Layout:    st.Layout,
		consts:    make(map[string]any, len(doc.Vars)+1),
		translate: doc.PathTranslation,
	}
	for k, v := range doc.Vars {
		sp.consts[k] = v
	}
	sp.consts[keyStage] = st.ID

	// 1. Filter
	filter, err := compiler.CompileFilter(st.Filter, compiler.RecordScope())
	if err != nil {
		fail("filter", err)
	}
	sp.filter = filter

	// 2. Synthetic enumeration
	if syn := st.Synthetic; syn != nil {
		plan := &syntheticPlan{
			from:          syn.From,
			axis:          syn.Axis,
			tiles:         syn.Tiles(),
			substitutions: syn.Substitutions,
		}
		for _, k := range st.Grouping {
			if k != syn.Axis {
				plan.project = append(plan.project, k)
			}
		}
		sp.synthetic = plan
	}

	// 3. Column groups
	sc := newScopes(sp.consts, st.Grouping, st.IsSynthetic())
	for i, g := range st.Columns {
		field := fmt.Sprintf("columns[%d].%s", i, g.Kind())
		switch {
		case g.Static != nil:
			value, err := compiler.CompileTemplate(g.Static.Template, sc.static)
			if err != nil {
				fail(field+".template", err)
				continue
			}
			sp.columns = append(sp.columns, columnPlan{static: &staticPlan{name: g.Static.Name, value: value, path: g.Static.Path}})
		case g.PerChannel != nil:
			cp, err := compileChannel(doc, g.PerChannel, sc.channelName, sc.channel)
			if err != nil {
				fail(field+"."+err.field, err.err)
				continue
			}
			sp.columns = append(sp.columns, columnPlan{channel: cp})
		case g.PerCycle != nil:
			cy := &cyclePlan{observed: g.PerCycle.Cycles.Observed, cycles: g.PerCycle.Cycles.List}
			ok := true
			for j := range g.PerCycle.Groups {
				cp, err := compileChannel(doc, &g.PerCycle.Groups[j], sc.cycleName, sc.cycle)
				if err != nil {
					fail(fmt.Sprintf("%s.groups[%d].%s", field, j, err.field), err.err)
					ok = false
					continue
				}
				cy.groups = append(cy.groups, cp)
			}
			if ok {
				sp.columns = append(sp.columns, columnPlan{cycle: cy})
			}
		}
	}
	return sp, errs
}

type fieldErr struct {
	field string
	err   error
}

func compileChannel(doc *spec.Document, rule *spec.PerChannel, nameScope, valueScope compiler.Scope) (*channelPlan, *fieldErr) {
	cp := &channelPlan{rule: rule, fromRecord: rule.Channels.Record}
	switch {
	case rule.Channels.Set != "":
		cp.channels = doc.ChannelSets[rule.Channels.Set]
	case !rule.Channels.Record:
		cp.channels = rule.Channels.List
	}

	var err error
	if cp.name, err = compiler.CompileTemplate(rule.Name, nameScope); err != nil {
		return nil, &fieldErr{"name", err}
	}
	if cp.path, err = compiler.CompileTemplate(rule.Path, valueScope); err != nil {
		return nil, &fieldErr{"path", err}
	}
	if cp.file, err = compiler.CompileTemplate(rule.File, valueScope); err != nil {
		return nil, &fieldErr{"file", err}
	}
	if rule.Frame != "" {
		if cp.frame, err = compiler.CompileTemplate(rule.Frame, valueScope); err != nil {
			return nil, &fieldErr{"frame", err}
		}
	}
	return cp, nil
}

// Synthetic reports whether the stage enumerates an upstream stage.
func (sp *StagePlan) Synthetic() bool { return sp.synthetic != nil }

// Filter returns the compiled filter expression.
func (sp *StagePlan) Filter() *compiler.Expr { return sp.filter }
