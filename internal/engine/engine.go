// Package engine drives rule selection, capture extraction, template
// expansion, and recursive re-parsing of expanded text. It is the only
// caller of the selector and the expander.
package engine

import (
	"fmt"
	"strings"

	"github.com/macrolang/mpt/internal/lexer"
	"github.com/macrolang/mpt/internal/rule"
	"github.com/macrolang/mpt/internal/source"
	"github.com/macrolang/mpt/internal/types"
)

// DefaultMaxDepth bounds expansion recursion. A rule whose expansion keeps
// re-triggering itself would otherwise recurse without limit.
const DefaultMaxDepth = 128

// Engine holds the registered rules and extensions. Rules and extensions
// are immutable configuration for the duration of a parse; extension state
// (such as the built-in counter) is shared across parses through the same
// engine instance and is not safe for concurrent use.
type Engine struct {
	rules      []*rule.Rule
	extensions map[string]Extension
	maxDepth   int
	configErrs []types.CompilationError
}

// New creates an engine with the built-in EXPAND_COUNT extension registered.
func New() *Engine {
	e := &Engine{
		extensions: make(map[string]Extension),
		maxDepth:   DefaultMaxDepth,
	}
	e.RegisterExtension(ExpandCountName, newExpandCount())
	return e
}

// SetMaxDepth overrides the expansion recursion limit.
func (e *Engine) SetMaxDepth(n int) {
	if n > 0 {
		e.maxDepth = n
	}
}

// AddRule registers a rule built from flag-encoded word strings. A rule
// that fails validation is kept in disabled form and reported as a
// configuration diagnostic; matching never consults it.
func (e *Engine) AddRule(name string, encoded ...string) error {
	r, err := rule.New(name, encoded...)
	e.rules = append(e.rules, r)
	if err != nil {
		e.configErrs = append(e.configErrs,
			types.NewSystemError(types.Position{Line: 1, Column: 1}, err.Error()))
	}
	return err
}

// AddRuleWords registers a rule from already-decoded words.
func (e *Engine) AddRuleWords(name string, words []rule.Word) error {
	r, err := rule.FromWords(name, words)
	e.rules = append(e.rules, r)
	if err != nil {
		e.configErrs = append(e.configErrs,
			types.NewSystemError(types.Position{Line: 1, Column: 1}, err.Error()))
	}
	return err
}

// RegisterExtension makes ext callable from templates as $name.
func (e *Engine) RegisterExtension(name string, ext Extension) {
	e.extensions[name] = ext
}

// Rules returns the registered rules, disabled ones included.
func (e *Engine) Rules() []*rule.Rule { return e.rules }

// ConfigErrors returns the diagnostics collected during rule registration.
func (e *Engine) ConfigErrors() []types.CompilationError { return e.configErrs }

// Parse runs the engine over text and returns the fully expanded output.
// An empty diagnostic list guarantees the output is complete.
func (e *Engine) Parse(text string) (string, []types.CompilationError) {
	return e.ParseBuffer(source.New(text), false)
}

// ParseBuffer is Parse over an existing buffer. With instantFail set the
// loop stops as soon as the first error has been recorded.
func (e *Engine) ParseBuffer(buf *source.Buffer, instantFail bool) (string, []types.CompilationError) {
	return e.parse(buf, instantFail, 0)
}

func (e *Engine) parse(buf *source.Buffer, instantFail bool, depth int) (string, []types.CompilationError) {
	if depth > e.maxDepth {
		return "", []types.CompilationError{
			types.NewSystemError(buf.Pos(),
				fmt.Sprintf("expansion recursion limit of %d exceeded", e.maxDepth)),
		}
	}

	var out strings.Builder
	var errs []types.CompilationError

	for !buf.ReachedEnd() {
		if instantFail && len(errs) > 0 {
			return "", errs
		}
		for !buf.ReachedEnd() && lexer.IsSpace(buf.Cur()) {
			buf.Advance()
		}
		if buf.ReachedEnd() {
			break
		}

		// quoted text passes through verbatim, quotes stripped, no
		// unescaping
		if buf.Cur() == '"' {
			span, _ := lexer.NextSpan(buf, buf.Pos().Offset, true)
			inner := span.End
			if inner > span.Start && buf.At(inner-1) == '"' {
				inner--
			}
			out.WriteString(buf.Substr(span.Start+1, inner))
			buf.AdvanceTo(span.End)
			continue
		}

		sel, retained := e.selectRule(buf)
		if sel != nil {
			if end := e.applyRule(buf, sel, instantFail, depth, &out, &errs); end > buf.Pos().Offset {
				buf.AdvanceTo(end)
				continue
			}
			// matched but consumed nothing; recover below
		}

		if retained != nil {
			errs = append(errs, *retained)
		} else {
			span, _ := lexer.NextSpan(buf, buf.Pos().Offset, false)
			errs = append(errs, types.NewError(buf.Pos(),
				fmt.Sprintf("unknown word: %s", buf.Substr(span.Start, span.End))))
		}
		e.recover(buf)
	}

	if len(errs) > 0 {
		return "", errs
	}
	return out.String(), nil
}

// applyRule extracts captures, expands the winning rule's template,
// recursively parses the expansion, and splices the result into out. It
// returns the offset just past the rule's last consuming word, which is the
// cursor's next position.
func (e *Engine) applyRule(buf *source.Buffer, sel *selection, instantFail bool, depth int,
	out *strings.Builder, errs *[]types.CompilationError,
) int {
	words := sel.rule.Words()
	vars := make(Captures)
	for _, m := range sel.matches {
		if words[m.WordIndex].Role == rule.Capture {
			name := words[m.WordIndex].Text
			vars[name] = append(vars[name], buf.Substr(m.Span.Start, m.Span.End))
		}
	}

	rulePos := buf.Pos()
	expanded, expErr := e.expandTemplate(sel.rule.Template(), vars)
	if expErr != nil {
		*errs = append(*errs, types.NewError(rulePos, expErr.Error()))
	} else {
		subOut, subErrs := e.parse(source.New(expanded), instantFail, depth+1)
		if len(subErrs) > 0 {
			*errs = append(*errs, types.NewError(rulePos,
				fmt.Sprintf("%d error(s) while parsing expanded string", len(subErrs))))
			for _, se := range subErrs {
				*errs = append(*errs, rebase(se, rulePos))
			}
		} else {
			out.WriteString(subOut)
		}
	}

	// the last consuming word is the one before the trailing template
	last := len(sel.matches) - 1
	if last >= 0 && words[sel.matches[last].WordIndex].Role == rule.Template {
		last--
	}
	if last < 0 {
		return buf.Pos().Offset
	}
	return sel.matches[last].Span.End
}

// recover advances past one lexeme so scanning always makes progress.
func (e *Engine) recover(buf *source.Buffer) {
	span, _ := lexer.NextSpan(buf, buf.Pos().Offset, false)
	if span.End > buf.Pos().Offset {
		buf.AdvanceTo(span.End)
	} else {
		buf.Advance()
	}
}

// rebase translates a diagnostic position from an expanded string into the
// enclosing source, anchoring it at the rule's start position.
func rebase(e types.CompilationError, at types.Position) types.CompilationError {
	e.Pos.Offset += at.Offset
	if e.Pos.Line == 1 {
		e.Pos.Column += at.Column - 1
	}
	e.Pos.Line += at.Line - 1
	return e
}
