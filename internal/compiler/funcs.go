package compiler

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// builtin is a whitelisted, pure function callable from expressions.
type builtin struct {
	params [][]Type // accepted types per parameter
	result Type
	fn     func(args []any) (any, error)
}

var (
	strParam = []Type{TypeString}
	intParam = []Type{TypeInt}
	numParam = []Type{TypeInt, TypeString}
)

var builtins = map[string]builtin{
	// well_code encodes a well label as the letter's character code times
	// 1000 plus the column number: "A01" -> 65001.
	"well_code": {params: [][]Type{strParam}, result: TypeInt, fn: func(a []any) (any, error) {
		row, col, err := splitWell(a[0].(string))
		if err != nil {
			return nil, err
		}
		return int(row[0])*1000 + col, nil
	}},
	"well_row": {params: [][]Type{strParam}, result: TypeString, fn: func(a []any) (any, error) {
		row, _, err := splitWell(a[0].(string))
		return row, err
	}},
	"well_column": {params: [][]Type{strParam}, result: TypeInt, fn: func(a []any) (any, error) {
		_, col, err := splitWell(a[0].(string))
		return col, err
	}},
	"basename": {params: [][]Type{strParam}, result: TypeString, fn: func(a []any) (any, error) {
		return path.Base(toSlash(a[0].(string))), nil
	}},
	"dirname": {params: [][]Type{strParam}, result: TypeString, fn: func(a []any) (any, error) {
		return path.Dir(toSlash(a[0].(string))), nil
	}},
	"upper": {params: [][]Type{strParam}, result: TypeString, fn: func(a []any) (any, error) {
		return strings.ToUpper(a[0].(string)), nil
	}},
	"lower": {params: [][]Type{strParam}, result: TypeString, fn: func(a []any) (any, error) {
		return strings.ToLower(a[0].(string)), nil
	}},
	"pad": {params: [][]Type{numParam, intParam}, result: TypeString, fn: func(a []any) (any, error) {
		n, err := asInt(a[0])
		if err != nil {
			return nil, err
		}
		return fmt.Sprintf("%0*d", a[1].(int), n), nil
	}},
}

// FunctionNames lists the whitelisted functions.
func FunctionNames() []string {
	names := make([]string, 0, len(builtins))
	for k := range builtins {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// splitWell splits "B12" into ("B", 12).
func splitWell(well string) (string, int, error) {
	i := 0
	for i < len(well) && unicode.IsLetter(rune(well[i])) {
		i++
	}
	if i == 0 || i == len(well) {
		return "", 0, fmt.Errorf("malformed well label %q", well)
	}
	col, err := strconv.Atoi(well[i:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed well label %q", well)
	}
	return well[:i], col, nil
}

func asInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%v is not an integer", v)
	}
}

func toSlash(p string) string { return strings.ReplaceAll(p, `\`, "/") }
