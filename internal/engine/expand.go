package engine

import (
	"fmt"
	"strings"

	"github.com/macrolang/mpt/internal/lexer"
	"github.com/macrolang/mpt/internal/source"
)

// expandTemplate interprets a matched rule's template payload: placeholder
// substitution, nested parenthesized iteration groups, and extension
// dispatch. Any failure aborts the whole expansion.
func (e *Engine) expandTemplate(tmpl string, vars Captures) (string, error) {
	buf := source.New(tmpl)
	var out strings.Builder
	for j := 0; j < len(tmpl); j++ {
		if tmpl[j] != '$' {
			out.WriteByte(tmpl[j])
			continue
		}
		start := lexer.SkipSpace(buf, j+1)
		span, _ := lexer.NextSpan(buf, start, true)
		if span.Empty() {
			return "", fmt.Errorf("expected expression after $")
		}
		expanded, end, err := e.expandExpr(buf, span, vars)
		if err != nil {
			return "", err
		}
		out.WriteString(expanded)
		j = end - 1
	}
	return out.String(), nil
}

// expandExpr resolves one $-expression whose span (without the leading $)
// is given. It returns the replacement text and the offset just past
// everything the expression consumed, which exceeds span.End when an
// extension call carries a parameter list.
func (e *Engine) expandExpr(buf *source.Buffer, span lexer.Span, vars Captures) (string, int, error) {
	switch c := buf.At(span.Start); {
	case c == '(':
		text, err := e.expandGroup(buf, span, vars)
		return text, span.End, err

	case lexer.IsAlpha(c):
		name := buf.Substr(span.Start, span.End)
		if ext, ok := e.extensions[name]; ok {
			params := ""
			end := span.End
			if buf.At(span.End) == '(' {
				// parameter text is passed through raw, not pre-expanded
				pspan := lexer.FullBraceSpan(buf, span.End)
				params = buf.Substr(pspan.Start+1, pspan.End-1)
				end = pspan.End
			}
			text, err := ext.Expand(e, vars, params)
			if err != nil {
				return "", 0, fmt.Errorf("extension %q: %w", name, err)
			}
			return text, end, nil
		}
		vals, ok := vars[name]
		if !ok {
			return "", 0, fmt.Errorf("%q is not a variable or extension", name)
		}
		if len(vals) == 0 {
			return "", 0, fmt.Errorf("variable %q has no value(s)", name)
		}
		return vals[0], span.End, nil

	default:
		return "", 0, fmt.Errorf("invalid expression after $")
	}
}

// groupItem is one placeholder inside an iteration group: either a nested
// sub-expansion resolved up front (text) or a capture reference (name).
type groupItem struct {
	span lexer.Span // placeholder span including the leading $
	text string
	name string
}

// expandGroup interprets a parenthesized $(...) iteration group. The group
// body is re-emitted once per iteration, substituting the i-th captured
// value for each capture reference; the iteration count is the minimum list
// length among the capture references used. Literal text between, before,
// and after the placeholders is emitted on every iteration.
func (e *Engine) expandGroup(buf *source.Buffer, span lexer.Span, vars Captures) (string, error) {
	var items []groupItem
	iterations := -1
	for i := span.Start + 1; i < span.End-1; i++ {
		if buf.At(i) != '$' {
			continue
		}
		start := lexer.SkipSpace(buf, i+1)
		wspan, _ := lexer.NextSpan(buf, start, true)
		switch c := buf.At(wspan.Start); {
		case c == '(':
			sub, err := e.expandGroup(buf, wspan, vars)
			if err != nil {
				return "", err
			}
			items = append(items, groupItem{span: lexer.Span{Start: i, End: wspan.End}, text: sub})
		case lexer.IsAlpha(c):
			name := buf.Substr(wspan.Start, wspan.End)
			vals, ok := vars[name]
			if !ok {
				return "", fmt.Errorf("%q is not a variable or extension", name)
			}
			if iterations < 0 || len(vals) < iterations {
				iterations = len(vals)
			}
			items = append(items, groupItem{span: lexer.Span{Start: i, End: wspan.End}, name: name})
		default:
			return "", fmt.Errorf("invalid expression after $")
		}
		i = wspan.End - 1
	}

	// a group without capture references cannot iterate; emit it once
	if iterations < 0 {
		iterations = 1
	}

	var out strings.Builder
	for it := 0; it < iterations; it++ {
		last := span.Start + 1
		for _, item := range items {
			if item.span.Start > last {
				out.WriteString(buf.Substr(last, item.span.Start))
			}
			last = item.span.End
			if item.name != "" {
				out.WriteString(vars[item.name][it])
			} else {
				out.WriteString(item.text)
			}
		}
		if last < span.End-1 {
			out.WriteString(buf.Substr(last, span.End-1))
		}
	}
	return out.String(), nil
}
