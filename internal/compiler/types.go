package compiler

import (
	"fmt"
	"slices"
	"sort"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/schema"
)

// Type is the static type of an expression.
type Type int

const (
	TypeAny Type = iota
	TypeString
	TypeInt
	TypeList
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeList:
		return "list"
	case TypeBool:
		return "bool"
	default:
		return "any"
	}
}

func (t Type) accepts(other Type) bool {
	return t == TypeAny || other == TypeAny || t == other
}

// Field describes a name an expression may reference.
// Canonical, when set, rewrites string literals compared against the field
// (e.g. arm aliases).
type Field struct {
	Type      Type
	Canonical func(string) (string, error)
}

// Scope is the set of names visible to an expression.
type Scope map[string]Field

// NewScope creates a scope from name/type pairs.
func NewScope(fields map[string]Type) Scope {
	s := make(Scope, len(fields))
	for name, t := range fields {
		s[name] = Field{Type: t}
	}
	return s
}

// With returns a copy of s extended with the given names.
func (s Scope) With(fields map[string]Type) Scope {
	out := make(Scope, len(s)+len(fields))
	for k, v := range s {
		out[k] = v
	}
	for name, t := range fields {
		out[name] = Field{Type: t}
	}
	return out
}

// Names lists the visible names in sorted order.
func (s Scope) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// RecordScope exposes every input table column to filter expressions.
// String columns canonicalize literals through their column type.
func RecordScope() Scope {
	cols := schema.Input()
	s := make(Scope, len(cols))
	for _, c := range cols {
		f := Field{Type: kindType(c.Type.Kind())}
		if c.Type.Kind() == schema.KindString {
			parse := c.Type.Parse
			f.Canonical = func(raw string) (string, error) {
				v, err := parse(raw)
				if err != nil {
					return "", err
				}
				return fmt.Sprint(v), nil
			}
		}
		s[c.Name] = f
	}
	return s
}

func kindType(k schema.Kind) Type {
	switch k {
	case schema.KindInt:
		return TypeInt
	case schema.KindList:
		return TypeList
	default:
		return TypeString
	}
}

// checker resolves names and operator types, rewriting literals in place.
type checker struct {
	src   string
	scope Scope
}

func (c *checker) errorf(n Node, format string, args ...any) error {
	return &domain.ExpressionError{Expr: c.src, Pos: n.Pos(), Reason: fmt.Sprintf(format, args...)}
}

func (c *checker) check(n Node) (Type, error) {
	switch x := n.(type) {
	case *Literal:
		return literalType(x.Value), nil

	case *FieldRef:
		f, ok := c.scope[x.Name]
		if !ok {
			return 0, c.errorf(x, "unknown field %q (known: %v)", x.Name, c.scope.Names())
		}
		return f.Type, nil

	case *Call:
		return c.checkCall(x)

	case *Binary:
		lt, err := c.check(x.Left)
		if err != nil {
			return 0, err
		}
		rt, err := c.check(x.Right)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case OpAnd:
			if !TypeBool.accepts(lt) || !TypeBool.accepts(rt) {
				return 0, c.errorf(x, "'and' needs boolean operands, got %s and %s", lt, rt)
			}
		case OpEq:
			if lt == TypeList || rt == TypeList || lt == TypeBool || rt == TypeBool {
				return 0, c.errorf(x, "'==' compares scalars, got %s and %s", lt, rt)
			}
			if !lt.accepts(rt) {
				return 0, c.errorf(x, "cannot compare %s with %s", lt, rt)
			}
			if err := c.canonicalize(x.Left, x.Right); err != nil {
				return 0, err
			}
			if err := c.canonicalize(x.Right, x.Left); err != nil {
				return 0, err
			}
		case OpIn:
			if !TypeList.accepts(rt) {
				return 0, c.errorf(x.Right, "'in' needs a list on the right, got %s", rt)
			}
			if lt == TypeList || lt == TypeBool {
				return 0, c.errorf(x.Left, "'in' needs a scalar on the left, got %s", lt)
			}
			if lit, ok := x.Right.(*Literal); ok {
				if et := elemType(lit.Value.([]any)); !lt.accepts(et) {
					return 0, c.errorf(x, "cannot look up %s in a list of %s", lt, et)
				}
			}
			if err := c.canonicalize(x.Left, x.Right); err != nil {
				return 0, err
			}
		}
		return TypeBool, nil
	}
	return 0, c.errorf(n, "unsupported expression")
}

// canonicalize rewrites string literals in lit when ref is a field with a
// canonical form.
func (c *checker) canonicalize(ref, lit Node) error {
	fr, ok := ref.(*FieldRef)
	if !ok {
		return nil
	}
	f := c.scope[fr.Name]
	l, ok := lit.(*Literal)
	if !ok || f.Canonical == nil {
		return nil
	}
	rewrite := func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		canon, err := f.Canonical(s)
		if err != nil {
			return nil, c.errorf(l, "invalid %s value: %v", fr.Name, err)
		}
		return canon, nil
	}
	if items, ok := l.Value.([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			v, err := rewrite(item)
			if err != nil {
				return err
			}
			out[i] = v
		}
		l.Value = out
		return nil
	}
	v, err := rewrite(l.Value)
	if err != nil {
		return err
	}
	l.Value = v
	return nil
}

func (c *checker) checkCall(x *Call) (Type, error) {
	fn, ok := builtins[x.Func]
	if !ok {
		return 0, c.errorf(x, "unsupported function %q (allowed: %v)", x.Func, FunctionNames())
	}
	if len(x.Args) != len(fn.params) {
		return 0, c.errorf(x, "%s takes %d argument(s), got %d", x.Func, len(fn.params), len(x.Args))
	}
	for i, a := range x.Args {
		t, err := c.check(a)
		if err != nil {
			return 0, err
		}
		if !slices.ContainsFunc(fn.params[i], t.accepts) {
			return 0, c.errorf(a, "%s argument %d: unexpected %s", x.Func, i+1, t)
		}
	}
	return fn.result, nil
}

func literalType(v any) Type {
	switch v.(type) {
	case string:
		return TypeString
	case int:
		return TypeInt
	case []any:
		return TypeList
	default:
		return TypeAny
	}
}

// elemType returns the common item type of a list literal, TypeAny when empty.
// Mixed lists yield TypeAny and are caught by the comparison check.
func elemType(items []any) Type {
	t := TypeAny
	for _, item := range items {
		it := literalType(item)
		if t == TypeAny {
			t = it
		} else if t != it {
			return TypeList
		}
	}
	return t
}
