package spec

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Document is the full rule document.
type Document struct {
	Metadata        Metadata            `mapstructure:"metadata" json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Vars            map[string]string   `mapstructure:"vars" json:"vars,omitempty" yaml:"vars,omitempty" validate:"dive,keys,required,endkeys"`
	PathTranslation *PathTranslation    `mapstructure:"path_translation" json:"path_translation,omitempty" yaml:"path_translation,omitempty"`
	ChannelSets     map[string][]string `mapstructure:"channel_sets" json:"channel_sets,omitempty" yaml:"channel_sets,omitempty" validate:"dive,min=1,dive,required"`
	Output          Output              `mapstructure:"output" json:"output" yaml:"output"`
	Stages          map[string]*Stage   `mapstructure:"stages" json:"stages" yaml:"stages" validate:"required,min=1,dive,required"`
}

// Metadata is free-form document information.
type Metadata struct {
	Description string `mapstructure:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `mapstructure:"version" json:"version,omitempty" yaml:"version,omitempty"`
}

// PathTranslation rewrites an input-relative prefix to the container mount root.
type PathTranslation struct {
	From string `mapstructure:"from" json:"from" yaml:"from" validate:"required"`
	To   string `mapstructure:"to" json:"to" yaml:"to"`
}

// Apply rewrites p when it starts with From.
func (t *PathTranslation) Apply(p string) string {
	if t == nil || !strings.HasPrefix(p, t.From) {
		return p
	}
	return t.To + strings.TrimPrefix(p, t.From)
}

// Reverse maps a container path back to the input-relative prefix.
func (t *PathTranslation) Reverse(p string) string {
	if t == nil || t.To == "" || !strings.HasPrefix(p, t.To) {
		return p
	}
	return t.From + strings.TrimPrefix(p, t.To)
}

// Output names the per-stage files. "{stage}" is replaced by the stage id.
type Output struct {
	Filename  string `mapstructure:"filename" json:"filename,omitempty" yaml:"filename,omitempty" validate:"required,contains={stage}"`
	Reference string `mapstructure:"reference" json:"reference,omitempty" yaml:"reference,omitempty" validate:"required,contains={stage}"`
}

const (
	DefaultOutputFilename    = "load_data_pipeline{stage}.csv"
	DefaultReferenceFilename = "load_data_pipeline{stage}_revised.csv"
)

// FilenameFor returns the output file name of stage.
func (o Output) FilenameFor(stage string) string {
	return strings.ReplaceAll(o.Filename, "{stage}", stage)
}

// ReferenceFor returns the reference file name of stage.
func (o Output) ReferenceFor(stage string) string {
	return strings.ReplaceAll(o.Reference, "{stage}", stage)
}

// Layout controls the final column ordering of a stage.
type Layout string

const (
	LayoutDeclared Layout = "declared"
	LayoutByPrefix Layout = "by_prefix"
)

// Stage is the rule set for one downstream processing stage.
type Stage struct {
	ID        string        `mapstructure:"-" json:"-" yaml:"-"`
	Name      string        `mapstructure:"name" json:"name,omitempty" yaml:"name,omitempty"`
	Filter    string        `mapstructure:"filter" json:"filter" yaml:"filter" validate:"required"`
	Grouping  []string      `mapstructure:"grouping" json:"grouping" yaml:"grouping" validate:"required,min=1,unique,dive,groupkey"`
	Layout    Layout        `mapstructure:"layout" json:"layout,omitempty" yaml:"layout,omitempty" validate:"omitempty,oneof=declared by_prefix"`
	Synthetic *Synthetic    `mapstructure:"synthetic" json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
	Columns   []ColumnGroup `mapstructure:"columns" json:"columns" yaml:"columns" validate:"required,min=1,dive"`
}

// IsSynthetic reports whether the stage predicts rows instead of reading records.
func (s *Stage) IsSynthetic() bool { return s.Synthetic != nil }

// Synthetic declares a stage whose rows are enumerated from an upstream
// stage's groups times a fixed per-group cardinality.
type Synthetic struct {
	From          string         `mapstructure:"from" json:"from" yaml:"from" validate:"required"`
	Axis          string         `mapstructure:"axis" json:"axis,omitempty" yaml:"axis,omitempty" validate:"omitempty,eq=tile"`
	Count         int            `mapstructure:"count" json:"count" yaml:"count" validate:"min=1"`
	Start         int            `mapstructure:"start" json:"start,omitempty" yaml:"start,omitempty" validate:"min=0"`
	Substitutions []Substitution `mapstructure:"substitutions" json:"substitutions,omitempty" yaml:"substitutions,omitempty" validate:"dive"`
}

// Tiles enumerates the synthetic axis values.
func (s *Synthetic) Tiles() []int {
	tiles := make([]int, s.Count)
	for i := range tiles {
		tiles[i] = s.Start + i
	}
	return tiles
}

// SubstitutionTarget selects which cells a substitution rewrites.
type SubstitutionTarget string

const (
	TargetPath SubstitutionTarget = "path"
	TargetFile SubstitutionTarget = "file"
	TargetBoth SubstitutionTarget = "both"
)

// Substitution is a literal string replacement on synthesized values.
type Substitution struct {
	From   string             `mapstructure:"from" json:"from" yaml:"from" validate:"required"`
	To     string             `mapstructure:"to" json:"to" yaml:"to"`
	Target SubstitutionTarget `mapstructure:"target" json:"target,omitempty" yaml:"target,omitempty" validate:"omitempty,oneof=path file both"`
}

// Applies reports whether the substitution rewrites cells of the given kind.
func (s Substitution) Applies(target SubstitutionTarget) bool {
	t := s.Target
	if t == "" {
		t = TargetPath
	}
	return t == TargetBoth || t == target
}

// ColumnGroup is exactly one of Static, PerChannel or PerCycle.
type ColumnGroup struct {
	Static     *Static     `mapstructure:"static" json:"static,omitempty" yaml:"static,omitempty"`
	PerChannel *PerChannel `mapstructure:"per_channel" json:"per_channel,omitempty" yaml:"per_channel,omitempty"`
	PerCycle   *PerCycle   `mapstructure:"per_cycle" json:"per_cycle,omitempty" yaml:"per_cycle,omitempty"`
}

// Kind names the populated variant.
func (g ColumnGroup) Kind() string {
	switch {
	case g.Static != nil:
		return "static"
	case g.PerChannel != nil:
		return "per_channel"
	case g.PerCycle != nil:
		return "per_cycle"
	default:
		return ""
	}
}

// Static is a single literal name/template column.
type Static struct {
	Name     string `mapstructure:"name" json:"name" yaml:"name" validate:"required"`
	Template string `mapstructure:"template" json:"template" yaml:"template"`
	Path     bool   `mapstructure:"path" json:"path,omitempty" yaml:"path,omitempty"`
}

// PerChannel is a template family instantiated once per channel.
// It produces PathName_<name>, FileName_<name> and, when Frame is set, Frame_<name>.
type PerChannel struct {
	Channels   ChannelSource    `mapstructure:"channels" json:"channels" yaml:"channels"`
	Name       string           `mapstructure:"name" json:"name" yaml:"name" validate:"required"`
	Path       string           `mapstructure:"path" json:"path" yaml:"path" validate:"required"`
	File       string           `mapstructure:"file" json:"file" yaml:"file" validate:"required"`
	Frame      string           `mapstructure:"frame" json:"frame,omitempty" yaml:"frame,omitempty"`
	OnlyCycles map[string][]int `mapstructure:"only_cycles" json:"only_cycles,omitempty" yaml:"only_cycles,omitempty" validate:"dive,min=1"`
}

// Emits reports whether channel is emitted for cycle under OnlyCycles.
// A nil cycle (outside per_cycle) never restricts.
func (p *PerChannel) Emits(channel string, cycle *int) bool {
	allowed, ok := p.OnlyCycles[channel]
	if !ok || cycle == nil {
		return true
	}
	return slices.Contains(allowed, *cycle)
}

// PerCycle nests per-channel groups once per cycle.
type PerCycle struct {
	Cycles CycleSource  `mapstructure:"cycles" json:"cycles" yaml:"cycles"`
	Groups []PerChannel `mapstructure:"groups" json:"groups" yaml:"groups" validate:"required,min=1,dive"`
}

// ChannelSource is where a per-channel group takes its channel list from:
// the first in-scope record ("record"), a named channel set, or a literal list.
type ChannelSource struct {
	Record bool
	Set    string
	List   []string
}

// RecordChannels is the channel source keyword for "use the record's own channels".
const RecordChannels = "record"

func (c ChannelSource) String() string {
	switch {
	case c.Record:
		return RecordChannels
	case c.Set != "":
		return c.Set
	default:
		return "[" + strings.Join(c.List, ", ") + "]"
	}
}

// IsZero reports whether no source was declared.
func (c ChannelSource) IsZero() bool {
	return !c.Record && c.Set == "" && len(c.List) == 0
}

// MarshalYAML writes the source back in its document form.
func (c ChannelSource) MarshalYAML() (any, error) {
	if c.Record {
		return RecordChannels, nil
	}
	if c.Set != "" {
		return c.Set, nil
	}
	return c.List, nil
}

// CycleSource is either every cycle observed in the group ("observed") or a fixed list.
type CycleSource struct {
	Observed bool
	List     []int
}

// ObservedCycles is the cycle source keyword for "cycles present in the group".
const ObservedCycles = "observed"

func (c CycleSource) String() string {
	if c.Observed {
		return ObservedCycles
	}
	parts := make([]string, len(c.List))
	for i, v := range c.List {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MarshalYAML writes the source back in its document form.
func (c CycleSource) MarshalYAML() (any, error) {
	if c.Observed {
		return ObservedCycles, nil
	}
	return c.List, nil
}

// Stage looks up a stage by id.
func (d *Document) Stage(id string) (*Stage, bool) {
	s, ok := d.Stages[id]
	return s, ok
}

// StageIDs returns every stage id in natural order ("2" before "10").
func (d *Document) StageIDs() []string {
	ids := make([]string, 0, len(d.Stages))
	for id := range d.Stages {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, NaturalCompare)
	return ids
}

// NaturalCompare orders strings treating digit runs as numbers.
func NaturalCompare(a, b string) int {
	for a != "" && b != "" {
		ca, ra := leadingChunk(a)
		cb, rb := leadingChunk(b)
		if c := compareChunk(ca, cb); c != 0 {
			return c
		}
		a, b = ra, rb
	}
	return len(a) - len(b)
}

func leadingChunk(s string) (string, string) {
	digit := unicode.IsDigit(rune(s[0]))
	i := 1
	for i < len(s) && unicode.IsDigit(rune(s[i])) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareChunk(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil && na != nb {
		if na < nb {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Describe returns a one-line summary of the column group.
func (g ColumnGroup) Describe() string {
	switch {
	case g.Static != nil:
		return fmt.Sprintf("static %s = %q", g.Static.Name, g.Static.Template)
	case g.PerChannel != nil:
		return fmt.Sprintf("per_channel %s over %s", g.PerChannel.Name, g.PerChannel.Channels)
	case g.PerCycle != nil:
		return fmt.Sprintf("per_cycle over %s (%d groups)", g.PerCycle.Cycles, len(g.PerCycle.Groups))
	default:
		return "empty"
	}
}
