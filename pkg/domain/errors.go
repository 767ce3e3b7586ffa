package domain

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrStageNotFound is returned when a requested stage id is not declared in the rule document.
var ErrStageNotFound = errors.New("stage not found")

// SpecError reports a malformed rule document.
// It is fatal: no stage is generated from a document that fails validation.
type SpecError struct {
	Stage  string // Empty for document-level problems
	Field  string // Offending field path, e.g. "columns[2].per_channel.channels"
	Reason string
	Err    error
}

func (e *SpecError) Error() string {
	msg := "spec"
	if e.Stage != "" {
		msg += fmt.Sprintf(" stage %q", e.Stage)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SpecError) Unwrap() error { return e.Err }

// ExpressionError reports an unknown field or operator in a filter or placeholder expression.
type ExpressionError struct {
	Stage  string
	Expr   string
	Pos    int // Byte offset into Expr, -1 when unknown
	Reason string
}

func (e *ExpressionError) Error() string {
	prefix := ""
	if e.Stage != "" {
		prefix = fmt.Sprintf("stage %q: ", e.Stage)
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("%sexpression %q at %d: %s", prefix, e.Expr, e.Pos, e.Reason)
	}
	return fmt.Sprintf("%sexpression %q: %s", prefix, e.Expr, e.Reason)
}

// TemplateError reports an unresolvable placeholder or unsupported derived expression.
// It is stage-scoped: other stages still complete.
type TemplateError struct {
	Stage       string
	Column      string
	Placeholder string
	Reason      string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("stage %q column %q placeholder %q: %s", e.Stage, e.Column, e.Placeholder, e.Reason)
}

// GroupingError reports a grouping key that cannot be resolved from the input.
// It is stage-scoped.
type GroupingError struct {
	Stage  string
	Key    string
	Reason string
}

func (e *GroupingError) Error() string {
	return fmt.Sprintf("stage %q grouping key %q: %s", e.Stage, e.Key, e.Reason)
}

// IsStageScoped reports whether err aborts only its own stage.
func IsStageScoped(err error) bool {
	var tmpl *TemplateError
	var grp *GroupingError
	return errors.As(err, &tmpl) || errors.As(err, &grp)
}

// Class is a coarse error category used to pick a process exit code.
type Class string

const (
	ClassNone    Class = "none"
	ClassIO      Class = "io"
	ClassSpec    Class = "spec"
	ClassStage   Class = "stage"
	ClassUnknown Class = "unknown"
)

// ExitCode maps a class to the process exit status.
func (c Class) ExitCode() int {
	switch c {
	case ClassNone:
		return 0
	case ClassSpec:
		return 2
	case ClassStage:
		return 3
	default:
		return 1
	}
}

// Classify sorts err into a Class. Only typed errors are inspected, never messages.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	var specErr *SpecError
	var exprErr *ExpressionError
	if errors.As(err, &specErr) || errors.As(err, &exprErr) || errors.Is(err, ErrStageNotFound) {
		return ClassSpec
	}
	if IsStageScoped(err) {
		return ClassStage
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return ClassIO
	}
	return ClassUnknown
}
