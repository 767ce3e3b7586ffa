package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the value category a Type parses into.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindList:
		return "[string]"
	default:
		return "string"
	}
}

// Type defines the contract for a column type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Kind returns the category of the parsed values.
	Kind() Kind
	// Parse converts a raw, non-empty cell into a typed value.
	Parse(raw string) (any, error)
}

// --- Built-in Type Implementations ---

// StringType accepts any text.
type StringType struct{}

func (t *StringType) Name() string { return "string" }
func (t *StringType) Kind() Kind   { return KindString }

func (t *StringType) Parse(raw string) (any, error) {
	return raw, nil
}

// IntType parses integers. Whole-number floats ("2.0") are accepted
// because spreadsheet exports write integer columns that way.
type IntType struct{}

func (t *IntType) Name() string { return "int" }
func (t *IntType) Kind() Kind   { return KindInt }

func (t *IntType) Parse(raw string) (any, error) {
	if i, err := strconv.Atoi(raw); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("expected int")
	}
	if f != float64(int64(f)) {
		return nil, fmt.Errorf("expected int, got float (not a whole number)")
	}
	return int(f), nil
}

// ListType splits a cell on a separator into trimmed, non-empty items.
type ListType struct {
	sep string
}

func (t *ListType) Name() string { return "[string]" }
func (t *ListType) Kind() Kind   { return KindList }

func (t *ListType) Parse(raw string) (any, error) {
	var items []string
	for _, part := range strings.Split(raw, t.sep) {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("expected at least one item")
	}
	return items, nil
}

// CustomType applies a user-defined parse function.
type CustomType struct {
	name  string
	kind  Kind
	parse func(string) (any, error)
}

func (t *CustomType) Name() string { return t.name }
func (t *CustomType) Kind() Kind   { return t.kind }

func (t *CustomType) Parse(raw string) (any, error) {
	return t.parse(raw)
}

// --- Factory Functions ---

// String creates a string column type.
func String() Type { return &StringType{} }

// Int creates an integer column type.
func Int() Type { return &IntType{} }

// List creates a list column type split on sep.
func List(sep string) Type { return &ListType{sep: sep} }

// Custom creates a column type with a user-defined parser.
func Custom(name string, kind Kind, parse func(string) (any, error)) Type {
	return &CustomType{name: name, kind: kind, parse: parse}
}

// ParseType converts a type name to a Type.
// Supports "string", "int" and "[string]" (comma separated).
func ParseType(typeStr string) (Type, error) {
	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "[string]":
		return List(","), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}
