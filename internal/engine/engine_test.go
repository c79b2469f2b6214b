package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolang/mpt/internal/source"
	"github.com/macrolang/mpt/internal/types"
)

func TestParseQuotedTextPassesThrough(t *testing.T) {
	e := New()

	out, errs := e.Parse(`"abc"`)
	require.Empty(t, errs)
	assert.Equal(t, "abc", out)

	// escapes are kept verbatim, only the delimiters are stripped
	out, errs = e.Parse(`"a\"b"`)
	require.Empty(t, errs)
	assert.Equal(t, `a\"b`, out)
}

func TestParseWhitespaceOnly(t *testing.T) {
	e := New()
	out, errs := e.Parse("  \n\t ")
	require.Empty(t, errs)
	assert.Equal(t, "", out)
}

func TestParseUnknownWordWithoutRules(t *testing.T) {
	e := New()
	out, errs := e.Parse("foo bar")
	assert.Equal(t, "", out)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Message, "unknown word: foo")
	assert.Contains(t, errs[1].Message, "unknown word: bar")
	assert.Equal(t, types.SeverityError, errs[0].Severity)
}

func TestParseLiteralRewrite(t *testing.T) {
	e := New()
	require.NoError(t, e.AddRule("greeting", "   hello", `  +"world"`))

	out, errs := e.Parse("hello hello")
	require.Empty(t, errs)
	assert.Equal(t, "worldworld", out)
}

func TestParseCaptureRewrite(t *testing.T) {
	e := New()
	require.NoError(t, e.AddRule("swap",
		"   swap", "  $a", "   ,", "  $b", "   ;", `  +"$b $a"`))

	out, errs := e.Parse("swap one , two ;")
	require.Empty(t, errs)
	assert.Equal(t, "two one", out)
}

func TestParseListRuleWithNestedGroups(t *testing.T) {
	e := New()
	require.NoError(t, e.AddRule("list",
		"   test", "   (", " *$v", " * ,", "   )", `  +"$($v/$($v), )"`))

	out, errs := e.Parse("test (1, 2, 3)")
	require.Empty(t, errs)
	assert.Equal(t, "1/123, 2/123, 3/123, ", out)
}

func TestParseExpandCountAcrossApplications(t *testing.T) {
	e := New()
	require.NoError(t, e.AddRule("tick", "   tick", `  +"$EXPAND_COUNT"`))

	out, errs := e.Parse("tick tick tick")
	require.Empty(t, errs)
	assert.Equal(t, "012", out)
}

func TestParseRecoversAndContinuesAfterBadToken(t *testing.T) {
	e := New()
	applied := 0
	e.RegisterExtension("mark", ExtensionFunc(func(_ *Engine, _ Captures, _ string) (string, error) {
		applied++
		return "", nil
	}))
	require.NoError(t, e.AddRule("greeting", "   hello", `  +"world"$mark`))

	// one bad token among good matches costs exactly one diagnostic; the
	// scan skips it and the trailing input still matches
	_, errs := e.Parse("hello frob hello")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `word "hello" not found`)
	assert.Equal(t, 7, errs[0].Pos.Column)
	assert.Equal(t, 2, applied)
}

func TestParseRetainsMostInformativePartialError(t *testing.T) {
	e := New()
	require.NoError(t, e.AddRule("assign", "   let", "   =", "  $v", `  +"$v"`))
	require.NoError(t, e.AddRule("ret", "   return", "  $v", `  +"$v"`))

	// "let" advances the first rule past one word; the retained diagnostic
	// comes from that rule, not from "ret" which fails at word zero
	_, errs := e.Parse("let")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, `word "=" not found`)
}

func TestParseInstantFailStopsAtFirstError(t *testing.T) {
	e := New()
	out, errs := e.ParseBuffer(source.New("foo bar baz"), true)
	assert.Equal(t, "", out)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "unknown word: foo")
}

func TestParseRecursionLimit(t *testing.T) {
	e := New()
	e.SetMaxDepth(4)
	require.NoError(t, e.AddRule("loop", "   a", "  +a"))

	_, errs := e.Parse("a")
	require.NotEmpty(t, errs)

	var hit *types.CompilationError
	for i := range errs {
		if errs[i].Severity == types.SeveritySystemError {
			hit = &errs[i]
		}
	}
	require.NotNil(t, hit)
	assert.Contains(t, hit.Message, "expansion recursion limit of 4 exceeded")
}

func TestSetMaxDepthIgnoresNonPositive(t *testing.T) {
	e := New()
	e.SetMaxDepth(0)
	e.SetMaxDepth(-3)
	assert.Equal(t, DefaultMaxDepth, e.maxDepth)
}

func TestParseWrapsAndRebasesNestedErrors(t *testing.T) {
	e := New()
	require.NoError(t, e.AddRule("bad", "   x", `  +"y" z`))

	_, errs := e.Parse("  x")
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Message, "1 error(s) while parsing expanded string")
	assert.Equal(t, 1, errs[0].Pos.Line)
	assert.Equal(t, 3, errs[0].Pos.Column)

	// the nested diagnostic points at "z" inside the expansion, shifted to
	// the rule's start in the enclosing source
	assert.Contains(t, errs[1].Message, `word "x" not found`)
	assert.Equal(t, 1, errs[1].Pos.Line)
	assert.Equal(t, 7, errs[1].Pos.Column)
}

func TestAddRuleKeepsInvalidRuleDisabled(t *testing.T) {
	e := New()
	err := e.AddRule("broken", "   a", "   b")
	require.Error(t, err)

	require.Len(t, e.Rules(), 1)
	assert.True(t, e.Rules()[0].Disabled())

	cfgErrs := e.ConfigErrors()
	require.Len(t, cfgErrs, 1)
	assert.Equal(t, types.SeveritySystemError, cfgErrs[0].Severity)
	assert.Contains(t, cfgErrs[0].Message, "last word must be a template")

	// a disabled rule never participates in matching
	_, errs := e.Parse("a b")
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Message, "unknown word: a")
}

func TestParseRulePrecedenceByScore(t *testing.T) {
	e := New()
	require.NoError(t, e.AddRule("short", "   f", "  $x", `  +"one"`))
	require.NoError(t, e.AddRule("closed", "   f", "  $x", "   ;", `  +"two"`))

	// both rules match fully; the one closed by a literal terminator wins
	out, errs := e.Parse("f y ;")
	require.Empty(t, errs)
	assert.Equal(t, "two", out)
}
