package compiler

import (
	"testing"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func painting(site int) domain.SampleRecord {
	return domain.SampleRecord{
		Path: "p/a.tiff", Arm: domain.ArmPainting, Batch: "Batch1", Plate: "Plate1", Well: "A1",
		Site: domain.IntPtr(site), Channels: []string{"DNA", "CHN2", "Phalloidin"}, NFrames: 3,
	}
}

func barcoding(site, cycle int) domain.SampleRecord {
	return domain.SampleRecord{
		Path: "b/a.tiff", Arm: domain.ArmBarcoding, Batch: "Batch1", Plate: "Plate1", Well: "B2",
		Site: domain.IntPtr(site), Cycle: domain.IntPtr(cycle), Channels: []string{"DNA", "A", "C", "T", "G"}, NFrames: 5,
	}
}

func TestCompileFilter_Match(t *testing.T) {
	batchLevel := painting(0)
	batchLevel.Site = nil

	tests := []struct {
		src  string
		rec  domain.SampleRecord
		want bool
	}{
		{`arm == 'painting'`, painting(0), true},
		{`arm == 'painting'`, barcoding(0, 1), false},
		{`arm == 'barcode'`, barcoding(0, 1), true},
		{`arm == 'sbs'`, barcoding(0, 1), true},
		{`arm in ['cp', 'sbs']`, painting(1), true},
		{`arm == 'painting' and site in [0, 2]`, painting(2), true},
		{`arm == 'painting' and site in [0, 2]`, painting(1), false},
		{`site in [0, 2]`, batchLevel, false},
		{`site == 0`, batchLevel, false},
		{`cycle == 1`, painting(0), false},
		{`'DNA' in channels`, painting(0), true},
		{`'A' in channels`, painting(0), false},
		{`well_row(well) == 'B' and well_column(well) == 2`, barcoding(0, 1), true},
		{`(plate == 'Plate1') and (batch == 'Batch1')`, painting(0), true},
		{`n_frames == 5`, barcoding(3, 3), true},
	}

	scope := RecordScope()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expr, err := CompileFilter(tt.src, scope)
			require.NoError(t, err)

			got, err := expr.Match(RecordEnv(tt.rec))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileFilter_CheckErrors(t *testing.T) {
	tests := []struct {
		src    string
		reason string
	}{
		{`colour == 'red'`, "unknown field"},
		{`site == 'zero'`, "cannot compare"},
		{`arm == 'confocal'`, "invalid arm value"},
		{`site in [0, 'a']`, "cannot look up"},
		{`plate`, "must be boolean"},
		{`channels == 'DNA'`, "compares scalars"},
		{`site in plate`, "needs a list"},
		{`site == 1 and plate`, "boolean operands"},
		{`eval('1') == 1`, "unsupported function"},
		{`well_code() == 1`, "takes 1 argument"},
		{`well_code(site) == 1`, "unexpected int"},
	}

	scope := RecordScope()
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := CompileFilter(tt.src, scope)
			var exprErr *domain.ExpressionError
			require.ErrorAs(t, err, &exprErr)
			assert.Contains(t, exprErr.Reason, tt.reason)
		})
	}
}

func TestExpr_Fields(t *testing.T) {
	expr, err := CompileFilter(`arm == 'painting' and site in [0, 2] and arm == 'cp'`, RecordScope())
	require.NoError(t, err)
	assert.Equal(t, []string{"arm", "site"}, expr.Fields())
}

func TestBuiltins(t *testing.T) {
	env := MapEnv{"well": "A01", "path": `a\b\c.tiff`, "n": 7, "s": "Plate1"}
	scope := NewScope(map[string]Type{"well": TypeString, "path": TypeString, "n": TypeInt, "s": TypeString})

	tests := map[string]string{
		"{well_code(well)}":   "65001",
		"{well_row(well)}":    "A",
		"{well_column(well)}": "1",
		"{basename(path)}":    "c.tiff",
		"{dirname(path)}":     "a/b",
		"{upper(s)}":          "PLATE1",
		"{lower(s)}":          "plate1",
		"{pad(n, 4)}":         "0007",
		"{pad('12', 3)}":      "012",
	}
	for src, want := range tests {
		t.Run(src, func(t *testing.T) {
			got, err := MustTemplate(src, scope).Render(env)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := MustTemplate("{well_code(path)}", scope).Render(env)
	var tmplErr *domain.TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Contains(t, tmplErr.Reason, "malformed well label")
}
