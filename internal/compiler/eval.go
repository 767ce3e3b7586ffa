package compiler

import (
	"fmt"
	"slices"

	"github.com/aretw0/stagegen/pkg/domain"
)

// Env supplies field values at evaluation time.
// The boolean is false when the name has no value (e.g. site on batch-level data).
type Env interface {
	Lookup(name string) (any, bool)
}

// MapEnv is an Env backed by a map.
type MapEnv map[string]any

func (m MapEnv) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok && v != nil
}

// RecordEnv exposes a SampleRecord's fields.
type RecordEnv domain.SampleRecord

func (r RecordEnv) Lookup(name string) (any, bool) {
	return domain.SampleRecord(r).Field(name)
}

// Expr is a checked expression ready for evaluation.
type Expr struct {
	src  string
	root Node
	typ  Type
}

// CompileFilter parses and checks a boolean filter expression.
// Errors are *domain.ExpressionError.
func CompileFilter(src string, scope Scope) (*Expr, error) {
	root, err := Parse(src)
	if err != nil {
		return nil, err
	}
	c := &checker{src: src, scope: scope}
	t, err := c.check(root)
	if err != nil {
		return nil, err
	}
	if !TypeBool.accepts(t) {
		return nil, &domain.ExpressionError{Expr: src, Pos: 0, Reason: fmt.Sprintf("filter must be boolean, got %s", t)}
	}
	return &Expr{src: src, root: root, typ: t}, nil
}

// String returns the source text.
func (e *Expr) String() string { return e.src }

// Tree returns the parsed form, fully parenthesized.
func (e *Expr) Tree() string { return e.root.String() }

// Type returns the static result type.
func (e *Expr) Type() Type { return e.typ }

// Fields lists the distinct field names referenced, in order of appearance.
func (e *Expr) Fields() []string {
	var names []string
	walk(e.root, func(n Node) {
		if f, ok := n.(*FieldRef); ok && !slices.Contains(names, f.Name) {
			names = append(names, f.Name)
		}
	})
	return names
}

// Match evaluates a boolean expression. Comparisons involving absent values are false.
func (e *Expr) Match(env Env) (bool, error) {
	v, ok, err := eval(e.root, env)
	if err != nil || !ok {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// Eval evaluates the expression. The boolean is false when a referenced value is absent.
func (e *Expr) Eval(env Env) (any, bool, error) {
	return eval(e.root, env)
}

func eval(n Node, env Env) (any, bool, error) {
	switch x := n.(type) {
	case *Literal:
		return x.Value, true, nil

	case *FieldRef:
		v, ok := env.Lookup(x.Name)
		return v, ok, nil

	case *Call:
		args := make([]any, len(x.Args))
		for i, a := range x.Args {
			v, ok, err := eval(a, env)
			if err != nil || !ok {
				return nil, false, err
			}
			args[i] = v
		}
		v, err := builtins[x.Func].fn(args)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", x.Func, err)
		}
		return v, true, nil

	case *Binary:
		if x.Op == OpAnd {
			l, err := truth(x.Left, env)
			if err != nil || !l {
				return false, true, err
			}
			r, err := truth(x.Right, env)
			return r, true, err
		}

		l, lok, err := eval(x.Left, env)
		if err != nil {
			return nil, false, err
		}
		r, rok, err := eval(x.Right, env)
		if err != nil {
			return nil, false, err
		}
		if !lok || !rok {
			return false, true, nil
		}
		if x.Op == OpEq {
			return equal(l, r), true, nil
		}
		return contains(r, l), true, nil
	}
	return nil, false, fmt.Errorf("unsupported node %T", n)
}

func truth(n Node, env Env) (bool, error) {
	v, ok, err := eval(n, env)
	if err != nil || !ok {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

// equal compares scalars only; values of different dynamic types are unequal.
func equal(a, b any) bool {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case int:
		y, ok := b.(int)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func contains(list, item any) bool {
	switch l := list.(type) {
	case []any:
		return slices.ContainsFunc(l, func(v any) bool { return equal(v, item) })
	case []string:
		s, ok := item.(string)
		return ok && slices.Contains(l, s)
	case []int:
		i, ok := item.(int)
		return ok && slices.Contains(l, i)
	}
	return false
}
