package engine

import "strconv"

// Captures maps a capture name to the list of substrings it matched, in
// order of occurrence. A repeating capture accumulates multiple entries.
type Captures map[string][]string

// First returns the first captured value for name, or "".
func (c Captures) First(name string) string {
	if vals := c[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Extension is a pluggable callback invoked from a template via $Name or
// $Name(params). A stateful extension owns its mutable state; it is shared
// across every parse run through the same engine instance.
type Extension interface {
	Expand(e *Engine, vars Captures, params string) (string, error)
}

// ExtensionFunc adapts a plain function to the Extension interface.
type ExtensionFunc func(e *Engine, vars Captures, params string) (string, error)

func (f ExtensionFunc) Expand(e *Engine, vars Captures, params string) (string, error) {
	return f(e, vars, params)
}

// ExpandCountName is the name of the built-in counter extension.
const ExpandCountName = "EXPAND_COUNT"

// expandCount is the built-in auto-incrementing counter. Called with no
// parameters it uses one shared counter; called with a label it keeps an
// independent counter per label; called with RESET it clears all counters.
type expandCount struct {
	counters map[string]int
}

func newExpandCount() *expandCount {
	return &expandCount{counters: make(map[string]int)}
}

func (c *expandCount) Expand(_ *Engine, _ Captures, params string) (string, error) {
	if params == "RESET" {
		c.counters = make(map[string]int)
		return "0", nil
	}
	n := c.counters[params]
	c.counters[params] = n + 1
	return strconv.Itoa(n), nil
}
