package spec

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/schema"
	"github.com/go-playground/validator/v10"
)

// docValidate is the shared validator for rule documents.
var docValidate *validator.Validate

func init() {
	docValidate = validator.New(validator.WithRequiredStructEnabled())
	docValidate.RegisterTagNameFunc(mapstructureName)

	_ = docValidate.RegisterValidation("groupkey", validateGroupKey)
	docValidate.RegisterStructValidation(validateColumnGroup, ColumnGroup{})
	docValidate.RegisterStructValidation(validatePerChannel, PerChannel{})
	docValidate.RegisterStructValidation(validatePerCycle, PerCycle{})
}

func mapstructureName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func validateGroupKey(fl validator.FieldLevel) bool {
	return domain.IsGroupingKey(fl.Field().String())
}

func validateColumnGroup(sl validator.StructLevel) {
	g := sl.Current().Interface().(ColumnGroup)
	n := 0
	for _, set := range []bool{g.Static != nil, g.PerChannel != nil, g.PerCycle != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		sl.ReportError(g, "kind", "Kind", "onevariant", fmt.Sprint(n))
	}
}

func validatePerChannel(sl validator.StructLevel) {
	p := sl.Current().Interface().(PerChannel)
	if p.Channels.IsZero() {
		sl.ReportError(p.Channels, "channels", "Channels", "channelsource", "")
	}
}

func validatePerCycle(sl validator.StructLevel) {
	p := sl.Current().Interface().(PerCycle)
	if !p.Cycles.Observed && len(p.Cycles.List) == 0 {
		sl.ReportError(p.Cycles, "cycles", "Cycles", "cyclesource", "")
	}
}

// Validate checks the structure of a document: required fields, allowed
// grouping keys, exactly one variant per column group, resolvable channel
// sources and synthetic upstream references.
// Every problem is collected; the result is a *domain.SpecError.
func Validate(doc *Document) error {
	var errs []*domain.SpecError

	if err := docValidate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &domain.SpecError{Reason: "validation failed", Err: err}
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}

	for _, id := range doc.StageIDs() {
		if st := doc.Stages[id]; st != nil {
			errs = append(errs, crossCheck(doc, st)...)
		}
	}

	return Join(errs)
}

// Join combines spec errors: nil for none, the error itself for one,
// otherwise a SpecError wrapping a *schema.AggregateError sorted by stage and field.
func Join(errs []*domain.SpecError) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	slices.SortStableFunc(errs, func(a, b *domain.SpecError) int {
		if c := NaturalCompare(a.Stage, b.Stage); c != 0 {
			return c
		}
		return strings.Compare(a.Field, b.Field)
	})
	aggr := &schema.AggregateError{}
	for _, e := range errs {
		aggr.Errors = append(aggr.Errors, e)
	}
	return &domain.SpecError{Reason: fmt.Sprintf("%d problems", len(errs)), Err: aggr}
}

// fieldError converts a validator failure into a SpecError.
// Namespaces look like "Document.stages[3].columns[1].per_channel.name".
func fieldError(fe validator.FieldError) *domain.SpecError {
	ns := fe.Namespace()
	_, ns, _ = strings.Cut(ns, ".")

	stage := ""
	if rest, ok := strings.CutPrefix(ns, "stages["); ok {
		if id, tail, found := strings.Cut(rest, "]"); found {
			stage = id
			ns = strings.TrimPrefix(tail, ".")
		}
	}
	return &domain.SpecError{Stage: stage, Field: ns, Reason: describeTag(fe)}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "unique":
		return "must not repeat keys"
	case "groupkey":
		return fmt.Sprintf("%q is not a grouping key (allowed: %s)", fmt.Sprint(fe.Value()), strings.Join(domain.GroupingKeys, ", "))
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "eq":
		return fmt.Sprintf("must be %q", fe.Param())
	case "contains":
		return fmt.Sprintf("must contain %q", fe.Param())
	case "onevariant":
		return fmt.Sprintf("must declare exactly one of static, per_channel, per_cycle (found %s)", fe.Param())
	case "channelsource":
		return fmt.Sprintf("must be %q, a channel set name or a list", RecordChannels)
	case "cyclesource":
		return fmt.Sprintf("must be %q or a list of cycles", ObservedCycles)
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func crossCheck(doc *Document, st *Stage) []*domain.SpecError {
	var errs []*domain.SpecError
	fail := func(field, format string, args ...any) {
		errs = append(errs, &domain.SpecError{Stage: st.ID, Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	// 1. Named channel sets must exist
	eachPerChannel(st, func(field string, p *PerChannel) {
		if p.Channels.Set != "" {
			if _, ok := doc.ChannelSets[p.Channels.Set]; !ok {
				fail(field+".channels", "unknown channel set %q", p.Channels.Set)
			}
		}
	})

	// 2. Synthetic stages enumerate an upstream stage
	syn := st.Synthetic
	if syn == nil {
		return errs
	}
	if !slices.Contains(st.Grouping, syn.Axis) {
		fail("grouping", "synthetic stage must group by its axis %q", syn.Axis)
	}
	up, ok := doc.Stages[syn.From]
	switch {
	case syn.From == st.ID:
		fail("synthetic.from", "stage cannot enumerate itself")
	case !ok || up == nil:
		fail("synthetic.from", "unknown upstream stage %q", syn.From)
	case up.IsSynthetic():
		fail("synthetic.from", "upstream stage %q is itself synthetic", syn.From)
	default:
		for _, k := range st.Grouping {
			if k != syn.Axis && !slices.Contains(up.Grouping, k) {
				fail("grouping", "key %q is not a grouping key of upstream stage %q", k, syn.From)
			}
		}
	}
	return errs
}

// eachPerChannel visits every per-channel group of a stage, nested ones included.
func eachPerChannel(st *Stage, fn func(field string, p *PerChannel)) {
	for i, g := range st.Columns {
		switch {
		case g.PerChannel != nil:
			fn(fmt.Sprintf("columns[%d].per_channel", i), g.PerChannel)
		case g.PerCycle != nil:
			for j := range g.PerCycle.Groups {
				fn(fmt.Sprintf("columns[%d].per_cycle.groups[%d]", i, j), &g.PerCycle.Groups[j])
			}
		}
	}
}
