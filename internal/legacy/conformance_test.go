package legacy_test

import (
	"context"
	"slices"
	"sort"
	"testing"

	"github.com/aretw0/stagegen/internal/defaults"
	"github.com/aretw0/stagegen/internal/legacy"
	"github.com/aretw0/stagegen/internal/runtime"
	"github.com/aretw0/stagegen/internal/testutils"
	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type canonicalTable struct {
	Columns []string
	Rows    [][]string
}

// canonical sorts columns by name and rows lexicographically.
func canonical(t *domain.Table) canonicalTable {
	cols := slices.Clone(t.Columns)
	sort.Strings(cols)
	rows := make([][]string, t.Len())
	for i := range t.Rows {
		m := t.Row(i)
		rows[i] = make([]string, len(cols))
		for j, c := range cols {
			rows[i][j] = m[c]
		}
	}
	slices.SortFunc(rows, slices.Compare)
	return canonicalTable{Columns: cols, Rows: rows}
}

func TestConformance_DefaultDocumentMatchesLegacy(t *testing.T) {
	doc, err := defaults.Document()
	require.NoError(t, err)
	engine, err := runtime.NewEngine(doc)
	require.NoError(t, err)

	records := testutils.Samplesheet()
	reversed := slices.Clone(records)
	slices.Reverse(reversed)

	for _, tc := range []struct {
		name    string
		records []domain.SampleRecord
	}{
		{"input order", records},
		{"reversed input", reversed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			results, err := engine.Generate(context.Background(), tc.records, legacy.Stages()...)
			require.NoError(t, err)

			for _, res := range results {
				require.NoError(t, res.Err, "stage %s", res.Stage)
				want, err := legacy.Generate(res.Stage, tc.records)
				require.NoError(t, err)

				diff := domain.DiffTables(res.Table, want, 5)
				assert.True(t, diff.IsEmpty(), "stage %s: %+v", res.Stage, diff)
				if d := cmp.Diff(canonical(want), canonical(res.Table)); d != "" {
					t.Errorf("stage %s mismatch (-legacy +generic):\n%s", res.Stage, d)
				}
			}
		})
	}
}

func TestLegacy_Shapes(t *testing.T) {
	records := testutils.Samplesheet()

	tests := []struct {
		stage   string
		rows    int
		columns int
	}{
		{"1", 12, 3 + 3*3},
		{"2", 12, 3 + 3*5},
		{"3", 6, 4 + 3*2},
		{"5", 36, 4 + 5*3},
		{"6", 12, 4 + 3*5*6},
		{"7", 12, 4 + (1+4*3)*2},
		{"9", 12, 4 + (12+1+3)*2},
	}
	for _, tt := range tests {
		t.Run("stage "+tt.stage, func(t *testing.T) {
			table, err := legacy.Generate(tt.stage, records)
			require.NoError(t, err)
			assert.Equal(t, tt.rows, table.Len())
			assert.Len(t, table.Columns, tt.columns)
		})
	}
}

func TestLegacy_PathConventions(t *testing.T) {
	records := testutils.Samplesheet()

	p1, err := legacy.Generate("1", records)
	require.NoError(t, err)
	row := p1.Row(0)
	assert.Equal(t, legacy.BasePath+"/images/Plate1/20X_CP_Plate1_20240319_122800_179/", row["PathName_OrigDNA"])
	assert.Equal(t, "2", row["Frame_OrigDNA"])

	p9, err := legacy.Generate("9", records)
	require.NoError(t, err)
	row = p9.Row(1)
	assert.Equal(t, "2", row["Metadata_Site"])
	assert.Equal(t, legacy.BasePath+"/images_corrected_cropped/barcoding/Plate1/Plate1-A1/Cycle02_T/", row["PathName_Cycle02_T"])
	assert.Equal(t, "CorrPhalloidin_Site_2.tiff", row["FileName_CorrPhalloidin"])
}

func TestLegacy_UnknownStage(t *testing.T) {
	_, err := legacy.Generate("4", nil)
	assert.ErrorIs(t, err, domain.ErrStageNotFound)
}
