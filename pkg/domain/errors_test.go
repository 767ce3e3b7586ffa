package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
		code int
	}{
		{"nil", nil, ClassNone, 0},
		{"spec", &SpecError{Stage: "1", Field: "grouping", Reason: "bad"}, ClassSpec, 2},
		{"expression", &ExpressionError{Expr: "x == 1", Pos: 0, Reason: "unknown field"}, ClassSpec, 2},
		{"wrapped template", fmt.Errorf("stage: %w", &TemplateError{Stage: "3", Column: "c", Placeholder: "p"}), ClassStage, 3},
		{"grouping", &GroupingError{Stage: "5", Key: "cycle"}, ClassStage, 3},
		{"unknown stage", fmt.Errorf("%w: %q", ErrStageNotFound, "42"), ClassSpec, 2},
		{"path", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, ClassIO, 1},
		{"other", errors.New("boom"), ClassUnknown, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.code, got.ExitCode())
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := &SpecError{Stage: "9", Field: "synthetic.from", Reason: "unknown upstream stage"}
	assert.Equal(t, `spec stage "9" field "synthetic.from": unknown upstream stage`, err.Error())

	tmpl := &TemplateError{Stage: "3", Column: "FileName_DNA", Placeholder: "site", Reason: "absent"}
	assert.Contains(t, tmpl.Error(), `placeholder "site"`)

	expr := &ExpressionError{Expr: "foo == 1", Pos: -1, Reason: "unknown field"}
	assert.Equal(t, `expression "foo == 1": unknown field`, expr.Error())
}
