package spec

import (
	"errors"
	"testing"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
vars:
  base_path: /app/data/Source1/images/Batch1
path_translation: {from: "pcpip/data/", to: "/app/data/"}
channel_sets:
  painting: [DNA, CHN2, Phalloidin]
stages:
  "1":
    name: illumination
    filter: "arm == 'painting'"
    grouping: [plate, well, site]
    columns:
      - static: {name: Metadata_Plate, template: "{plate}"}
      - per_channel:
          channels: record
          name: "Orig{channel}"
          path: "{dir}/"
          file: "{filename}"
          frame: "{frame}"
  "6":
    filter: "arm == 'barcoding'"
    grouping: [plate, well, site]
    layout: by_prefix
    columns:
      - per_cycle:
          cycles: observed
          groups:
            - channels: [A, C, T, G]
              name: "Cycle{cycle:02d}_Orig{channel}"
              path: "{dir}/"
              file: "{filename}"
              only_cycles: {DNA: [1]}
  "10":
    filter: "arm == 'barcoding'"
    grouping: [plate, well, tile]
    synthetic: {from: "6", count: 4, start: 1, substitutions: [{from: a/, to: b/}]}
    columns:
      - per_channel: {channels: painting, name: "Corr{channel}", path: "{base_path}", file: "x_{tile}.tiff"}
`

func TestParse_YAML(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), FormatYAML)
	require.NoError(t, err)
	require.NoError(t, Validate(doc))

	assert.Equal(t, []string{"1", "6", "10"}, doc.StageIDs())
	assert.Equal(t, DefaultOutputFilename, doc.Output.Filename)

	s1, ok := doc.Stage("1")
	require.True(t, ok)
	assert.Equal(t, "1", s1.ID)
	assert.Equal(t, LayoutDeclared, s1.Layout)
	assert.True(t, s1.Columns[1].PerChannel.Channels.Record)

	s6, _ := doc.Stage("6")
	pc := s6.Columns[0].PerCycle
	require.NotNil(t, pc)
	assert.True(t, pc.Cycles.Observed)
	assert.Equal(t, []string{"A", "C", "T", "G"}, pc.Groups[0].Channels.List)
	assert.Equal(t, LayoutByPrefix, s6.Layout)

	s10, _ := doc.Stage("10")
	require.True(t, s10.IsSynthetic())
	assert.Equal(t, domain.KeyTile, s10.Synthetic.Axis)
	assert.Equal(t, []int{1, 2, 3, 4}, s10.Synthetic.Tiles())
	assert.Equal(t, TargetPath, s10.Synthetic.Substitutions[0].Target)
	assert.Equal(t, "painting", s10.Columns[0].PerChannel.Channels.Set)
}

func TestParse_JSON(t *testing.T) {
	data := `{"stages": {"2": {"filter": "arm == 'painting'", "grouping": ["plate"],
		"columns": [{"per_cycle": {"cycles": [3, 1], "groups": [{"channels": ["DNA"], "name": "n", "path": "p", "file": "f"}]}}]}}}`

	doc, err := Parse([]byte(data), FormatJSON)
	require.NoError(t, err)
	require.NoError(t, Validate(doc))
	assert.Equal(t, []int{3, 1}, doc.Stages["2"].Columns[0].PerCycle.Cycles.List)
}

func TestParse_UnknownKeyRejected(t *testing.T) {
	data := `
stages:
  "1":
    filter: "arm == 'painting'"
    grouping: [plate]
    colums: []
`
	_, err := Parse([]byte(data), FormatYAML)
	var specErr *domain.SpecError
	require.ErrorAs(t, err, &specErr)
	assert.Contains(t, err.Error(), "colums")
}

func TestParse_BadCycleSource(t *testing.T) {
	data := `
stages:
  "1":
    filter: "arm == 'barcoding'"
    grouping: [plate]
    columns:
      - per_cycle: {cycles: sometimes, groups: []}
`
	_, err := Parse([]byte(data), FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "observed")
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantStage string
		wantField string
	}{
		{
			name: "grouping key not allowed",
			doc: `
stages:
  "1":
    filter: "arm == 'painting'"
    grouping: [plate, batch]
    columns: [{static: {name: A, template: x}}]`,
			wantStage: "1",
			wantField: "grouping[1]",
		},
		{
			name: "two variants in one column group",
			doc: `
stages:
  "2":
    filter: "arm == 'painting'"
    grouping: [plate]
    columns:
      - static: {name: A, template: x}
        per_channel: {channels: record, name: n, path: p, file: f}`,
			wantStage: "2",
			wantField: "columns[0].kind",
		},
		{
			name: "missing filter",
			doc: `
stages:
  "3":
    grouping: [plate]
    columns: [{static: {name: A, template: x}}]`,
			wantStage: "3",
			wantField: "filter",
		},
		{
			name: "unknown channel set",
			doc: `
stages:
  "4":
    filter: "arm == 'painting'"
    grouping: [plate]
    columns: [{per_channel: {channels: nope, name: n, path: p, file: f}}]`,
			wantStage: "4",
			wantField: "columns[0].per_channel.channels",
		},
		{
			name: "synthetic upstream missing",
			doc: `
stages:
  "9":
    filter: "arm == 'barcoding'"
    grouping: [plate, tile]
    synthetic: {from: "7", count: 4}
    columns: [{static: {name: A, template: x}}]`,
			wantStage: "9",
			wantField: "synthetic.from",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.doc), FormatYAML)
			require.NoError(t, err)

			err = Validate(doc)
			var specErr *domain.SpecError
			require.ErrorAs(t, err, &specErr)
			assert.Equal(t, tt.wantStage, specErr.Stage)
			assert.Equal(t, tt.wantField, specErr.Field)
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	doc, err := Parse([]byte(`
stages:
  "2":
    grouping: [plate]
    columns: [{static: {name: A}}]
  "1":
    filter: "x"
    grouping: []
    columns: [{static: {name: A}}]
`), FormatYAML)
	require.NoError(t, err)

	err = Validate(doc)
	require.Error(t, err)

	var aggr *schema.AggregateError
	require.True(t, errors.As(err, &aggr))
	require.Len(t, aggr.Errors, 2)
	assert.Equal(t, "1", aggr.Errors[0].(*domain.SpecError).Stage, "sorted by stage")
}

func TestNaturalCompare(t *testing.T) {
	assert.Negative(t, NaturalCompare("2", "10"))
	assert.Positive(t, NaturalCompare("9", "7"))
	assert.Negative(t, NaturalCompare("stage2", "stage10"))
	assert.Negative(t, NaturalCompare("5", "5b"))
	assert.Zero(t, NaturalCompare("3", "3"))
}

func TestPathTranslation(t *testing.T) {
	pt := &PathTranslation{From: "pcpip/data/", To: "/app/data/"}
	assert.Equal(t, "/app/data/Source1/x.tiff", pt.Apply("pcpip/data/Source1/x.tiff"))
	assert.Equal(t, "other/x.tiff", pt.Apply("other/x.tiff"))
	assert.Equal(t, "pcpip/data/Source1/x.tiff", pt.Reverse("/app/data/Source1/x.tiff"))

	var none *PathTranslation
	assert.Equal(t, "a", none.Apply("a"))
}

func TestPerChannel_Emits(t *testing.T) {
	p := &PerChannel{OnlyCycles: map[string][]int{"DNA": {1}}}
	one, two := 1, 2
	assert.True(t, p.Emits("DNA", &one))
	assert.False(t, p.Emits("DNA", &two))
	assert.True(t, p.Emits("A", &two))
	assert.True(t, p.Emits("DNA", nil))
}

func TestMarshal_RoundTrip(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc), FormatYAML)
	require.NoError(t, err)

	out, err := Marshal(doc)
	require.NoError(t, err)

	again, err := Parse(out, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, doc.StageIDs(), again.StageIDs())
	assert.Equal(t, doc.Stages["6"].Columns[0].PerCycle.Cycles, again.Stages["6"].Columns[0].PerCycle.Cycles)
	assert.Equal(t, doc.Stages["1"].Columns[1].PerChannel.Channels, again.Stages["1"].Columns[1].PerChannel.Channels)
}
