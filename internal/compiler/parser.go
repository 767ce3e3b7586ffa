package compiler

import (
	"fmt"
	"strconv"

	"github.com/aretw0/stagegen/pkg/domain"
)

const (
	kwAnd = "and"
	kwIn  = "in"
)

type parser struct {
	src  string
	toks []token
	i    int
}

// Parse builds the syntax tree of a boolean or scalar expression.
//
//	expr    = cmp { "and" cmp }
//	cmp     = operand [ ( "==" | "in" ) operand ]
//	operand = "(" expr ")" | string | int | list | ident [ "(" args ")" ]
func Parse(src string) (Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return n, nil
}

// ParseOperand parses a single operand: a field reference, literal or call.
// Template placeholders use this form.
func ParseOperand(src string) (Node, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	n, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return n, nil
}

func newParser(src string) (*parser, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) isKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == kw
}

func (p *parser) expect(kind tokenKind) error {
	t := p.peek()
	if t.kind != kind {
		return p.errorf(t.pos, "expected %s, found %s", kind, describe(t))
	}
	p.next()
	return nil
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseCmp()
	if err != nil {
		return nil, err
	}
	for p.isKeyword(kwAnd) {
		at := p.next().pos
		right, err := p.parseCmp()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpAnd, Left: left, Right: right, At: at}
	}
	return left, nil
}

func (p *parser) parseCmp() (Node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	var op Op
	switch {
	case p.peek().kind == tokEq:
		op = OpEq
	case p.isKeyword(kwIn):
		op = OpIn
	default:
		return left, nil
	}
	at := p.next().pos

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: op, Left: left, Right: right, At: at}, nil
}

func (p *parser) parseOperand() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil
	case tokString:
		return &Literal{Value: t.text, At: t.pos}, nil
	case tokInt:
		return p.intLiteral(t)
	case tokLBrack:
		return p.parseList(t.pos)
	case tokIdent:
		if t.text == kwAnd || t.text == kwIn {
			return nil, p.errorf(t.pos, "unexpected keyword %q", t.text)
		}
		if p.peek().kind == tokLParen {
			return p.parseCall(t)
		}
		return &FieldRef{Name: t.text, At: t.pos}, nil
	default:
		return nil, p.errorf(t.pos, "unexpected %s", describe(t))
	}
}

func (p *parser) intLiteral(t token) (Node, error) {
	v, err := strconv.Atoi(t.text)
	if err != nil {
		return nil, p.errorf(t.pos, "invalid integer %q", t.text)
	}
	return &Literal{Value: v, At: t.pos}, nil
}

// parseList reads scalar literals up to the closing bracket.
func (p *parser) parseList(at int) (Node, error) {
	items := []any{}
	if p.peek().kind == tokRBrack {
		p.next()
		return &Literal{Value: items, At: at}, nil
	}
	for {
		t := p.next()
		switch t.kind {
		case tokString:
			items = append(items, t.text)
		case tokInt:
			lit, err := p.intLiteral(t)
			if err != nil {
				return nil, err
			}
			items = append(items, lit.(*Literal).Value)
		default:
			return nil, p.errorf(t.pos, "list items must be literals, found %s", describe(t))
		}

		sep := p.next()
		switch sep.kind {
		case tokComma:
			continue
		case tokRBrack:
			return &Literal{Value: items, At: at}, nil
		default:
			return nil, p.errorf(sep.pos, "expected ',' or ']', found %s", describe(sep))
		}
	}
}

func (p *parser) parseCall(name token) (Node, error) {
	p.next() // (
	call := &Call{Func: name.text, At: name.pos}
	if p.peek().kind == tokRParen {
		p.next()
		return call, nil
	}
	for {
		arg, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		sep := p.next()
		switch sep.kind {
		case tokComma:
			continue
		case tokRParen:
			return call, nil
		default:
			return nil, p.errorf(sep.pos, "expected ',' or ')', found %s", describe(sep))
		}
	}
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &domain.ExpressionError{Expr: p.src, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

func lexError(src string, pos int, reason string) error {
	return &domain.ExpressionError{Expr: src, Pos: pos, Reason: reason}
}

func describe(t token) string {
	switch t.kind {
	case tokIdent:
		return fmt.Sprintf("%q", t.text)
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	case tokInt:
		return "integer " + t.text
	default:
		return t.kind.String()
	}
}
