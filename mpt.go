// Package mpt is the facade over the rule-driven text-rewriting engine:
// it loads rule files, reads source texts, and runs the expansion pipeline.
package mpt

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/macrolang/mpt/internal/engine"
	"github.com/macrolang/mpt/internal/source"
	"github.com/macrolang/mpt/internal/types"
	"github.com/macrolang/mpt/ruleset"
)

// SourceCode stores the lines of a source text for snippet rendering.
type SourceCode struct {
	Lines []string
}

// NewSourceCode splits text into lines.
func NewSourceCode(text string) *SourceCode {
	return &SourceCode{Lines: strings.Split(text, "\n")}
}

// ReadSourceFile reads a whole file as one text. Reading the file is the
// engine's only I/O boundary; the text must be NUL-free because the buffer
// uses NUL as its terminating sentinel.
func ReadSourceFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return "", fmt.Errorf("%s: source text contains a NUL byte", filename)
	}
	return string(content), nil
}

// EngineFactory builds a fresh engine per input so extension state (such as
// the EXPAND_COUNT counters) does not leak across files.
type EngineFactory func() *engine.Engine

// Factory returns an EngineFactory registering the given rules.
func Factory(rules []ruleset.Rule) EngineFactory {
	return func() *engine.Engine {
		eng := engine.New()
		ruleset.Register(eng, rules)
		return eng
	}
}

// NewEngine builds a single engine from a rule file.
func NewEngine(rulesPath string) (*engine.Engine, error) {
	rules, err := ruleset.Load(rulesPath)
	if err != nil {
		return nil, err
	}
	eng := engine.New()
	ruleset.Register(eng, rules)
	return eng, nil
}

// Result is the outcome of expanding one source text.
type Result struct {
	Filename string
	Output   string
	Errors   []types.CompilationError
	Source   *SourceCode
}

// Failed reports whether the result carries a blocking diagnostic.
func (r Result) Failed() bool {
	return types.HasBlocking(r.Errors)
}

// ExpandSource runs the engine over an in-memory text.
func ExpandSource(eng *engine.Engine, name, text string, instantFail bool) Result {
	var errs []types.CompilationError
	errs = append(errs, eng.ConfigErrors()...)
	out, parseErrs := eng.ParseBuffer(source.New(text), instantFail)
	errs = append(errs, parseErrs...)
	return Result{
		Filename: name,
		Output:   out,
		Errors:   errs,
		Source:   NewSourceCode(text),
	}
}

// ExpandFile reads filename and expands it.
func ExpandFile(eng *engine.Engine, filename string, instantFail bool) (Result, error) {
	text, err := ReadSourceFile(filename)
	if err != nil {
		return Result{Filename: filename}, err
	}
	return ExpandSource(eng, filename, text, instantFail), nil
}
