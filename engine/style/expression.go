package style

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/spaghettifunk/extruder/engine/core"
	"github.com/spaghettifunk/extruder/engine/features"
)

// attributeRef matches an attribute placeholder such as [height].
var attributeRef = regexp.MustCompile(`\[([^\[\]]+)\]`)

/**
 * @brief An arithmetic expression over feature attributes, for example
 * "[levels] * 3.5". It is compiled on first use and is safe to share
 * between goroutines.
 */
type NumericExpression struct {
	source string
	names  []string

	once    sync.Once
	program *vm.Program
	err     error
}

func NewNumericExpression(source string) *NumericExpression {
	return &NumericExpression{source: source}
}

func (e *NumericExpression) String() string {
	return e.source
}

func (e *NumericExpression) compile() {
	seen := make(map[string]bool)
	code := attributeRef.ReplaceAllStringFunc(e.source, func(ref string) string {
		name := strings.TrimSpace(ref[1 : len(ref)-1])
		if !seen[name] {
			seen[name] = true
			e.names = append(e.names, name)
		}
		return "attrs[" + strconv.Quote(name) + "]"
	})
	e.program, e.err = expr.Compile(code, expr.AllowUndefinedVariables())
}

// Eval evaluates the expression against the attributes of f. Missing or
// non numeric attributes evaluate as zero.
func (e *NumericExpression) Eval(f *features.Feature) (float64, error) {
	e.once.Do(e.compile)
	if e.err != nil {
		return 0, fmt.Errorf("compile %q: %v: %w", e.source, e.err, core.ErrExpression)
	}

	attrs := make(map[string]any, len(e.names))
	for _, name := range e.names {
		attrs[name] = f.Double(name, 0)
	}

	out, err := expr.Run(e.program, map[string]any{"attrs": attrs})
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %v: %w", e.source, err, core.ErrExpression)
	}
	return toFloat(out, e.source)
}

func toFloat(v any, source string) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		d, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("evaluate %q: result %q is not numeric: %w", source, n, core.ErrExpression)
		}
		return d, nil
	}
	return 0, fmt.Errorf("evaluate %q: result %T is not numeric: %w", source, v, core.ErrExpression)
}

/**
 * @brief A text template over feature attributes, for example
 * "[name] ([id])". Placeholders of missing attributes become empty.
 */
type StringExpression struct {
	source string
}

func NewStringExpression(source string) *StringExpression {
	return &StringExpression{source: source}
}

func (e *StringExpression) String() string {
	return e.source
}

func (e *StringExpression) Empty() bool {
	return e == nil || e.source == ""
}

func (e *StringExpression) Eval(f *features.Feature) string {
	return attributeRef.ReplaceAllStringFunc(e.source, func(ref string) string {
		return f.Text(strings.TrimSpace(ref[1 : len(ref)-1]))
	})
}
