package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/stagegen/internal/runtime"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func painting(plate, well string, site int, channels ...string) domain.SampleRecord {
	return domain.SampleRecord{
		Path:     fmt.Sprintf("pcpip/data/images/%s/20X_CP_%s/%s_%s_s%d.ome.tiff", plate, plate, plate, well, site),
		Arm:      domain.ArmPainting,
		Batch:    "Batch1",
		Plate:    plate,
		Well:     well,
		Site:     domain.IntPtr(site),
		Channels: channels,
		NFrames:  len(channels),
	}
}

func barcoding(plate, well string, site, cycle int, channels ...string) domain.SampleRecord {
	return domain.SampleRecord{
		Path:     fmt.Sprintf("pcpip/data/images/%s/20X_c%d_SBS-%d/%s_%s_s%d.ome.tiff", plate, cycle, cycle, plate, well, site),
		Arm:      domain.ArmBarcoding,
		Batch:    "Batch1",
		Plate:    plate,
		Well:     well,
		Site:     domain.IntPtr(site),
		Cycle:    domain.IntPtr(cycle),
		Channels: channels,
		NFrames:  len(channels),
	}
}

func newEngine(t *testing.T, doc string, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	d, err := spec.Parse([]byte(doc), spec.FormatYAML)
	require.NoError(t, err)
	e, err := runtime.NewEngine(d, opts...)
	require.NoError(t, err)
	return e
}

func generateOne(t *testing.T, e *runtime.Engine, records []domain.SampleRecord, stage string) *domain.Table {
	t.Helper()
	results, err := e.Generate(context.Background(), records, stage)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	return results[0].Table
}

const paintingDoc = `
path_translation: {from: "pcpip/data/", to: "/app/data/"}
channel_sets:
  painting: [DNA, CHN2, Phalloidin]
stages:
  "1":
    filter: "arm == 'primary-stain'"
    grouping: [plate, well, site]
    columns:
      - static: {name: Metadata_Plate, template: "{plate}"}
      - static: {name: Metadata_Site, template: "{site}"}
      - static: {name: Metadata_Well, template: "{well}"}
      - static: {name: Metadata_Well_Value, template: "{well_code(well)}"}
      - per_channel:
          channels: painting
          name: "Orig{channel}"
          path: "{dir}/"
          file: "{filename}"
          frame: "{frame}"
`

func TestGenerate_FrameIndexFollowsOwnerRecord(t *testing.T) {
	e := newEngine(t, paintingDoc)
	records := []domain.SampleRecord{
		painting("P1", "A01", 0, "DNA", "CHN2", "Phalloidin"),
		painting("P1", "A01", 1, "Phalloidin", "DNA", "CHN2"),
	}

	table := generateOne(t, e, records, "1")
	require.Equal(t, 2, table.Len())

	assert.Equal(t, []string{
		"Metadata_Plate", "Metadata_Site", "Metadata_Well", "Metadata_Well_Value",
		"PathName_OrigDNA", "FileName_OrigDNA", "Frame_OrigDNA",
		"PathName_OrigCHN2", "FileName_OrigCHN2", "Frame_OrigCHN2",
		"PathName_OrigPhalloidin", "FileName_OrigPhalloidin", "Frame_OrigPhalloidin",
	}, table.Columns)

	first, second := table.Row(0), table.Row(1)
	assert.Equal(t, "0", first["Frame_OrigDNA"])
	assert.Equal(t, "2", first["Frame_OrigPhalloidin"])
	assert.Equal(t, "1", second["Frame_OrigDNA"])
	assert.Equal(t, "2", second["Frame_OrigCHN2"])
	assert.Equal(t, "0", second["Frame_OrigPhalloidin"])

	assert.Equal(t, "65001", first["Metadata_Well_Value"])
	assert.Equal(t, "/app/data/images/P1/20X_CP_P1/", first["PathName_OrigDNA"])
	assert.Equal(t, "P1_A01_s0.ome.tiff", first["FileName_OrigDNA"])
}

const pivotDoc = `
stages:
  "6":
    filter: "arm == 'barcode'"
    grouping: [plate, well, site]
    columns:
      - static: {name: Metadata_Well, template: "{well}"}
      - per_cycle:
          cycles: observed
          groups:
            - channels: [A, C, T]
              name: "Cycle{cycle:02d}_Orig{channel}"
              path: "{dir}"
              file: "{filename}"
              frame: "{frame}"
`

func TestGenerate_WidePivotAscendingCycles(t *testing.T) {
	e := newEngine(t, pivotDoc)
	records := []domain.SampleRecord{
		barcoding("P1", "A01", 0, 3, "A", "C", "T"),
		barcoding("P1", "A01", 0, 1, "A", "C", "T"),
		barcoding("P1", "A01", 0, 2, "T", "C", "A"),
	}

	table := generateOne(t, e, records, "6")
	require.Equal(t, 1, table.Len())
	// 3 cycles x 3 channels x (path, file, frame) + metadata
	require.Len(t, table.Columns, 1+3*3*3)

	var names []string
	for _, c := range table.Columns {
		if rest, ok := strings.CutPrefix(c, domain.PrefixPathName); ok {
			names = append(names, rest)
		}
	}
	assert.Equal(t, []string{
		"Cycle01_OrigA", "Cycle01_OrigC", "Cycle01_OrigT",
		"Cycle02_OrigA", "Cycle02_OrigC", "Cycle02_OrigT",
		"Cycle03_OrigA", "Cycle03_OrigC", "Cycle03_OrigT",
	}, names)

	row := table.Row(0)
	assert.Equal(t, "pcpip/data/images/P1/20X_c2_SBS-2", row["PathName_Cycle02_OrigA"])
	assert.Equal(t, "2", row["Frame_Cycle02_OrigA"])
	assert.Equal(t, "0", row["Frame_Cycle03_OrigA"])
}

func TestGenerate_OnlyCycles(t *testing.T) {
	doc := `
stages:
  "7":
    filter: "arm == 'barcoding'"
    grouping: [plate, well, site]
    columns:
      - per_cycle:
          cycles: [1, 2]
          groups:
            - channels: [DNA, A]
              name: "Cycle{cycle:02d}_{channel}"
              path: "images_aligned/{plate}"
              file: "Cycle{cycle:02d}_{channel}.tiff"
              only_cycles: {DNA: [1]}
`
	e := newEngine(t, doc)
	records := []domain.SampleRecord{
		barcoding("P1", "A01", 0, 1, "DNA", "A"),
		barcoding("P1", "A01", 0, 2, "DNA", "A"),
	}
	table := generateOne(t, e, records, "7")
	assert.Equal(t, []string{
		"PathName_Cycle01_DNA", "FileName_Cycle01_DNA",
		"PathName_Cycle01_A", "FileName_Cycle01_A",
		"PathName_Cycle02_A", "FileName_Cycle02_A",
	}, table.Columns)
}

func TestGenerate_BarcodeFilter(t *testing.T) {
	doc := `
stages:
  "5":
    filter: "arm == 'barcode'"
    grouping: [plate, well, site, cycle]
    columns:
      - static: {name: Metadata_Cycle, template: "{cycle}"}
      - per_channel: {channels: record, name: "Orig{channel}", path: "{dir}", file: "{filename}"}
`
	e := newEngine(t, doc)
	records := []domain.SampleRecord{
		painting("P1", "A01", 0, "DNA", "CHN2"),
		barcoding("P1", "A01", 0, 1, "A", "C"),
		painting("P1", "A01", 1, "DNA", "CHN2"),
		barcoding("P1", "A01", 0, 2, "A", "C"),
		barcoding("P1", "B01", 0, 1, "A", "C"),
	}

	table := generateOne(t, e, records, "5")
	assert.Equal(t, 3, table.Len())
	for i := range table.Rows {
		assert.Contains(t, table.Row(i)["PathName_OrigA"], "SBS")
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	e := newEngine(t, pivotDoc)
	records := []domain.SampleRecord{
		barcoding("P1", "A01", 0, 1, "A", "C", "T"),
		barcoding("P1", "A01", 1, 1, "A", "C", "T"),
		barcoding("P1", "A01", 0, 2, "A", "C", "T"),
		barcoding("P1", "A01", 1, 2, "C", "A", "T"),
	}

	first := generateOne(t, e, records, "6")
	second := generateOne(t, e, records, "6")
	assert.Equal(t, first, second)

	reversed := slices.Clone(records)
	slices.Reverse(reversed)
	shuffled := generateOne(t, e, reversed, "6")
	assert.Equal(t, first.Columns, shuffled.Columns)
	assert.ElementsMatch(t, first.Rows, shuffled.Rows)
}

const syntheticDoc = `
path_translation: {from: "pcpip/data/", to: "/app/data/"}
vars: {base: "pcpip/data/images_corrected/barcoding"}
stages:
  "7":
    filter: "arm == 'barcoding'"
    grouping: [plate, well, site]
    columns:
      - static: {name: Metadata_Site, template: "{site}"}
  "9":
    filter: "arm == 'barcoding'"
    grouping: [plate, well, tile]
    synthetic: {from: "7", count: 4, start: 1, substitutions: [{from: images_corrected/, to: images_corrected_cropped/}]}
    columns:
      - static: {name: Metadata_Well, template: "{well}"}
      - static: {name: Metadata_Site, template: "{tile}"}
      - per_channel:
          channels: [A, C]
          name: "Cycle01_{channel}"
          path: "{base}/{plate}-{well}/Cycle01_{channel}/"
          file: "Cycle01_{channel}_Site_{tile}.tiff"
`

func TestGenerate_SyntheticCardinality(t *testing.T) {
	e := newEngine(t, syntheticDoc)
	records := []domain.SampleRecord{
		barcoding("P1", "A01", 0, 1, "A", "C"),
		barcoding("P1", "A01", 1, 1, "A", "C"),
		barcoding("P1", "B02", 0, 1, "A", "C"),
		barcoding("P1", "B02", 1, 2, "A", "C"),
		painting("P1", "C03", 0, "DNA"),
	}

	table := generateOne(t, e, records, "9")
	require.Equal(t, 2*4, table.Len())

	perWell := map[string][]string{}
	for i := range table.Rows {
		row := table.Row(i)
		perWell[row["Metadata_Well"]] = append(perWell[row["Metadata_Well"]], row["Metadata_Site"])
	}
	assert.Equal(t, map[string][]string{
		"A01": {"1", "2", "3", "4"},
		"B02": {"1", "2", "3", "4"},
	}, perWell)

	row := table.Row(0)
	assert.Equal(t, "/app/data/images_corrected_cropped/barcoding/P1-A01/Cycle01_A/", row["PathName_Cycle01_A"])
	assert.Equal(t, "Cycle01_A_Site_1.tiff", row["FileName_Cycle01_A"])
}

func TestGenerate_SyntheticRejectsOwnerFields(t *testing.T) {
	doc := `
stages:
  "1":
    filter: "arm == 'barcoding'"
    grouping: [plate, well]
    columns:
      - static: {name: Metadata_Well, template: "{well}"}
  "2":
    filter: "arm == 'barcoding'"
    grouping: [plate, well, tile]
    synthetic: {from: "1", count: 2}
    columns:
      - per_channel: {channels: [A], name: "{channel}", path: "{dir}", file: "x.tiff"}
`
	d, err := spec.Parse([]byte(doc), spec.FormatYAML)
	require.NoError(t, err)
	_, err = runtime.NewEngine(d)
	require.Error(t, err)

	var specErr *domain.SpecError
	require.ErrorAs(t, err, &specErr)
	assert.Equal(t, "2", specErr.Stage)
	assert.Equal(t, "columns[0].per_channel.path", specErr.Field)
	assert.Equal(t, domain.ClassSpec, domain.Classify(err))
}

func TestNewEngine_CollectsCompileErrors(t *testing.T) {
	doc := `
stages:
  "1":
    filter: "colour == 'red'"
    grouping: [plate]
    columns:
      - static: {name: Metadata_Plate, template: "{plate}"}
  "2":
    filter: "arm == 'painting'"
    grouping: [plate]
    columns:
      - static: {name: Metadata_Well, template: "{well}"}
`
	d, err := spec.Parse([]byte(doc), spec.FormatYAML)
	require.NoError(t, err)
	_, err = runtime.NewEngine(d)
	require.Error(t, err)

	var exprErr *domain.ExpressionError
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, "1", exprErr.Stage)

	var tmplErr *domain.TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, "2", tmplErr.Stage)
	assert.Equal(t, "well", tmplErr.Placeholder)
}

func TestGenerate_StageErrorsAreScoped(t *testing.T) {
	doc := `
stages:
  "1":
    filter: "arm == 'painting'"
    grouping: [plate, well, site]
    columns:
      - static: {name: Metadata_Well, template: "{well}"}
  "2":
    filter: "arm == 'painting'"
    grouping: [plate, well]
    columns:
      - per_channel: {channels: [DNA, Missing], name: "{channel}", path: "{dir}", file: "{filename}"}
  "3":
    filter: "arm == 'painting'"
    grouping: [plate]
    columns:
      - static: {name: Metadata_Plate, template: "{plate}"}
`
	e := newEngine(t, doc)
	batchLevel := painting("P1", "A01", 0, "DNA")
	batchLevel.Site = nil
	records := []domain.SampleRecord{painting("P1", "A01", 0, "DNA"), batchLevel}

	results, err := e.Generate(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, results, 3)

	var grpErr *domain.GroupingError
	require.ErrorAs(t, results[0].Err, &grpErr)
	assert.Equal(t, "site", grpErr.Key)
	assert.Equal(t, domain.ClassStage, domain.Classify(results[0].Err))

	var tmplErr *domain.TemplateError
	require.ErrorAs(t, results[1].Err, &tmplErr)
	assert.Equal(t, "2", tmplErr.Stage)
	assert.Equal(t, "PathName_Missing", tmplErr.Column)
	assert.Equal(t, "dir", tmplErr.Placeholder)

	require.True(t, results[2].OK())
	assert.Equal(t, 1, results[2].Table.Len())
}

func TestGenerate_UnknownStage(t *testing.T) {
	e := newEngine(t, paintingDoc)
	_, err := e.Generate(context.Background(), nil, "42")
	assert.ErrorIs(t, err, domain.ErrStageNotFound)
}

func TestGenerate_CancelledContext(t *testing.T) {
	e := newEngine(t, paintingDoc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Generate(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerate_EmptyStage(t *testing.T) {
	records := []domain.SampleRecord{painting("P1", "A01", 0, "DNA")}

	t.Run("fixed channels keep the header", func(t *testing.T) {
		e := newEngine(t, paintingDoc)
		table := generateOne(t, e, []domain.SampleRecord{barcoding("P1", "A01", 0, 1, "A")}, "1")
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, []string{
			"Metadata_Plate", "Metadata_Site", "Metadata_Well", "Metadata_Well_Value",
			"PathName_OrigDNA", "FileName_OrigDNA", "Frame_OrigDNA",
			"PathName_OrigCHN2", "FileName_OrigCHN2", "Frame_OrigCHN2",
			"PathName_OrigPhalloidin", "FileName_OrigPhalloidin", "Frame_OrigPhalloidin",
		}, table.Columns)
	})

	t.Run("fixed cycles keep the header", func(t *testing.T) {
		e := newEngine(t, strings.Replace(pivotDoc, "cycles: observed", "cycles: [1, 2]", 1))
		table := generateOne(t, e, records, "6")
		assert.Equal(t, 0, table.Len())
		assert.Equal(t, []string{"Metadata_Well", "PathName_Cycle01_OrigA", "FileName_Cycle01_OrigA", "Frame_Cycle01_OrigA"}, table.Columns[:4])
		assert.Len(t, table.Columns, 1+2*3*3)
	})

	t.Run("observed cycles have no header", func(t *testing.T) {
		e := newEngine(t, pivotDoc)
		table := generateOne(t, e, records, "6")
		assert.Equal(t, 0, table.Len())
		assert.Empty(t, table.Columns)
	})
}

const raggedDoc = `
stages:
  "5":
    filter: "arm == 'barcode'"
    grouping: [plate, well, site, cycle]
    columns:
      - static: {name: Metadata_Well, template: "{well}"}
      - static: {name: Metadata_Cycle, template: "{cycle}"}
  "6":
    filter: "arm == 'barcode'"
    grouping: [plate, well, site]
    columns:
      - static: {name: Metadata_Well, template: "{well}"}
      - per_cycle:
          cycles: observed
          groups:
            - channels: [A, C]
              name: "Cycle{cycle:02d}_{channel}"
              path: "{dir}"
              file: "{filename}"
`

func TestGenerate_RaggedCyclesAreAGroupingError(t *testing.T) {
	e := newEngine(t, raggedDoc)
	records := []domain.SampleRecord{
		barcoding("P1", "A01", 0, 1, "A", "C"),
		barcoding("P1", "A01", 0, 2, "A", "C"),
		barcoding("P1", "A02", 0, 1, "A", "C"),
	}

	results, err := e.Generate(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.True(t, results[0].OK())
	assert.Equal(t, "5", results[0].Stage)
	assert.Equal(t, 3, results[0].Table.Len())

	assert.Equal(t, "6", results[1].Stage)
	var groupErr *domain.GroupingError
	require.True(t, errors.As(results[1].Err, &groupErr))
	assert.Equal(t, "6", groupErr.Stage)
	assert.Contains(t, groupErr.Key, "A02")
	assert.Equal(t, domain.ClassStage, domain.Classify(results[1].Err))
}

func TestGenerate_LifecycleHooks(t *testing.T) {
	var mu sync.Mutex
	started := map[string]int{}
	done := map[string]*domain.StageEvent{}

	hooks := domain.LifecycleHooks{
		OnStageStart: func(_ context.Context, ev *domain.StageEvent) {
			mu.Lock()
			defer mu.Unlock()
			started[ev.Stage]++
		},
		OnStageDone: func(_ context.Context, ev *domain.StageEvent) {
			mu.Lock()
			defer mu.Unlock()
			done[ev.Stage] = ev
		},
	}
	e := newEngine(t, syntheticDoc, runtime.WithLifecycleHooks(hooks), runtime.WithConcurrency(1))
	records := []domain.SampleRecord{barcoding("P1", "A01", 0, 1, "A", "C")}

	_, err := e.Generate(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"7": 1, "9": 1}, started)
	require.Contains(t, done, "9")
	assert.Equal(t, domain.EventStageDone, done["9"].Type)
	assert.Equal(t, 4, done["9"].Rows)
	assert.Equal(t, 6, done["9"].Columns)
	assert.NoError(t, done["9"].Err)
}

func TestGenerate_StagesInNaturalOrder(t *testing.T) {
	e := newEngine(t, syntheticDoc)
	assert.Equal(t, []string{"7", "9"}, e.Stages())

	results, err := e.Generate(context.Background(), nil, "9", "7")
	require.NoError(t, err)
	assert.Equal(t, "9", results[0].Stage)
	assert.Equal(t, "7", results[1].Stage)
}
