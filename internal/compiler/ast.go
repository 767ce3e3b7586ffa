package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is one element of an expression tree.
type Node interface {
	Pos() int
	String() string
}

// Op is a binary operator.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpAnd
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpIn:
		return "in"
	default:
		return "and"
	}
}

// Literal is a string, int or list constant. List items are scalar literals.
type Literal struct {
	Value any
	At    int
}

// FieldRef names a value supplied by the evaluation environment.
type FieldRef struct {
	Name string
	At   int
}

// Binary applies Op to two operands.
type Binary struct {
	Op          Op
	Left, Right Node
	At          int
}

// Call invokes a whitelisted function.
type Call struct {
	Func string
	Args []Node
	At   int
}

func (n *Literal) Pos() int  { return n.At }
func (n *FieldRef) Pos() int { return n.At }
func (n *Binary) Pos() int   { return n.At }
func (n *Call) Pos() int     { return n.At }

func (n *Literal) String() string  { return formatLiteral(n.Value) }
func (n *FieldRef) String() string { return n.Name }

func (n *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Func + "(" + strings.Join(args, ", ") + ")"
}

func formatLiteral(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case int:
		return strconv.Itoa(x)
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = formatLiteral(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}

// walk visits n and its children depth first.
func walk(n Node, fn func(Node)) {
	fn(n)
	switch x := n.(type) {
	case *Binary:
		walk(x.Left, fn)
		walk(x.Right, fn)
	case *Call:
		for _, a := range x.Args {
			walk(a, fn)
		}
	}
}
