package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stagegen/pkg/domain"
)

// Template is literal text with {placeholder} substitutions.
//
//	"Plate_{plate}_Well_{well}"    field substitution
//	"Cycle{cycle:02d}"             zero-padded integer
//	"{well_code(well)}"            whitelisted derived function
//	"{{literal}}"                  escaped braces
type Template struct {
	src      string
	segments []segment
}

type segment struct {
	text   string // literal text when expr is nil
	expr   *Expr
	raw    string // placeholder source, without braces
	format *intFormat
}

// intFormat is a "[0]<width>d" spec.
type intFormat struct {
	width int
	zero  bool
}

// CompileTemplate parses src and checks every placeholder against scope.
// Errors are *domain.TemplateError; the caller fills in stage and column.
func CompileTemplate(src string, scope Scope) (*Template, error) {
	t := &Template{src: src}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '{' && i+1 < len(src) && src[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(src) && src[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '}':
			return nil, &domain.TemplateError{Placeholder: src, Reason: fmt.Sprintf("unmatched '}' at %d", i)}
		case c == '{':
			end := closingBrace(src, i+1)
			if end < 0 {
				return nil, &domain.TemplateError{Placeholder: src[i:], Reason: "unclosed placeholder"}
			}
			seg, err := compilePlaceholder(src[i+1:end], scope)
			if err != nil {
				return nil, err
			}
			flush()
			t.segments = append(t.segments, seg)
			i = end + 1
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return t, nil
}

// MustTemplate compiles src against scope and panics on error.
func MustTemplate(src string, scope Scope) *Template {
	t, err := CompileTemplate(src, scope)
	if err != nil {
		panic(err)
	}
	return t
}

// closingBrace finds the '}' ending a placeholder, skipping quoted strings.
func closingBrace(src string, from int) int {
	var quote byte
	for i := from; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '}':
			return i
		}
	}
	return -1
}

func compilePlaceholder(raw string, scope Scope) (segment, error) {
	seg := segment{raw: raw}
	exprSrc := raw
	if k := formatSeparator(raw); k >= 0 {
		f, err := parseIntFormat(raw[k+1:])
		if err != nil {
			return seg, &domain.TemplateError{Placeholder: raw, Reason: err.Error()}
		}
		seg.format = f
		exprSrc = raw[:k]
	}

	root, err := ParseOperand(strings.TrimSpace(exprSrc))
	if err != nil {
		return seg, &domain.TemplateError{Placeholder: raw, Reason: reason(err)}
	}
	c := &checker{src: exprSrc, scope: scope}
	typ, err := c.check(root)
	if err != nil {
		return seg, &domain.TemplateError{Placeholder: raw, Reason: reason(err)}
	}
	if typ == TypeBool || typ == TypeList {
		return seg, &domain.TemplateError{Placeholder: raw, Reason: fmt.Sprintf("placeholder yields a %s, not a scalar", typ)}
	}
	seg.expr = &Expr{src: exprSrc, root: root, typ: typ}
	return seg, nil
}

// formatSeparator returns the index of the last ':' outside quotes, or -1.
func formatSeparator(raw string) int {
	var quote byte
	sep := -1
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ':':
			sep = i
		}
	}
	return sep
}

func parseIntFormat(spec string) (*intFormat, error) {
	if !strings.HasSuffix(spec, "d") {
		return nil, fmt.Errorf("unsupported format %q, only integer formats like 02d are allowed", spec)
	}
	digits := strings.TrimSuffix(spec, "d")
	f := &intFormat{}
	if strings.HasPrefix(digits, "0") && len(digits) > 1 {
		f.zero = true
		digits = digits[1:]
	}
	if digits != "" {
		w, err := strconv.Atoi(digits)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("invalid width in format %q", spec)
		}
		f.width = w
	}
	return f, nil
}

func reason(err error) string {
	var exprErr *domain.ExpressionError
	if errors.As(err, &exprErr) {
		return exprErr.Reason
	}
	return err.Error()
}

// Render substitutes every placeholder from env.
// A placeholder without a value is a *domain.TemplateError.
func (t *Template) Render(env Env) (string, error) {
	if len(t.segments) == 1 && t.segments[0].expr == nil {
		return t.segments[0].text, nil
	}
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.expr == nil {
			b.WriteString(seg.text)
			continue
		}
		v, ok, err := seg.expr.Eval(env)
		if err != nil {
			return "", &domain.TemplateError{Placeholder: seg.raw, Reason: err.Error()}
		}
		if !ok {
			return "", &domain.TemplateError{Placeholder: seg.raw, Reason: "no value in this context"}
		}
		s, err := formatValue(v, seg.format)
		if err != nil {
			return "", &domain.TemplateError{Placeholder: seg.raw, Reason: err.Error()}
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func formatValue(v any, f *intFormat) (string, error) {
	if f != nil {
		n, err := asInt(v)
		if err != nil {
			return "", err
		}
		if f.zero {
			return fmt.Sprintf("%0*d", f.width, n), nil
		}
		return fmt.Sprintf("%*d", f.width, n), nil
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	default:
		return fmt.Sprint(x), nil
	}
}

// String returns the template source.
func (t *Template) String() string { return t.src }

// IsConstant reports whether the template has no placeholders.
func (t *Template) IsConstant() bool {
	for _, seg := range t.segments {
		if seg.expr != nil {
			return false
		}
	}
	return true
}

// Fields lists the distinct field names referenced by placeholders.
func (t *Template) Fields() []string {
	var names []string
	seen := make(map[string]bool)
	for _, seg := range t.segments {
		if seg.expr == nil {
			continue
		}
		for _, f := range seg.expr.Fields() {
			if !seen[f] {
				seen[f] = true
				names = append(names, f)
			}
		}
	}
	return names
}

// Annotate fills the stage (and column) of expression and template errors.
func Annotate(err error, stage, column string) error {
	var tmplErr *domain.TemplateError
	if errors.As(err, &tmplErr) {
		if tmplErr.Stage == "" {
			tmplErr.Stage = stage
		}
		if tmplErr.Column == "" {
			tmplErr.Column = column
		}
	}
	var exprErr *domain.ExpressionError
	if errors.As(err, &exprErr) && exprErr.Stage == "" {
		exprErr.Stage = stage
	}
	return err
}
