package ruleset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrolang/mpt/internal/engine"
)

const sampleConfig = `
rules:
  - name: uniform-list
    words:
      - "   uniform"
      - "   ("
      - " *$v"
      - " * ,"
      - "   )"
    template: '"$(uniform $v; )"'
  - name: greeting
    words:
      - "   hello"
    template: '"world"'
`

func TestParse(t *testing.T) {
	rules, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "uniform-list", rules[0].Name)
	assert.Len(t, rules[0].Words, 5)
	assert.Equal(t, `"$(uniform $v; )"`, rules[0].Template)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("rules: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse rule file")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	rules, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEncodedWordsAppendsTemplate(t *testing.T) {
	r := Rule{Name: "r", Words: []string{"   a"}, Template: `"b"`}
	assert.Equal(t, []string{"   a", `  +"b"`}, r.EncodedWords())

	// a missing template is left for rule validation to reject
	r = Rule{Name: "r", Words: []string{"   a"}}
	assert.Equal(t, []string{"   a"}, r.EncodedWords())
}

func TestRegister(t *testing.T) {
	rules, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	e := engine.New()
	assert.Equal(t, 0, Register(e, rules))
	assert.Len(t, e.Rules(), 2)

	out, errs := e.Parse("hello")
	require.Empty(t, errs)
	assert.Equal(t, "world", out)
}

func TestRegisterCountsInvalidRules(t *testing.T) {
	e := engine.New()
	invalid := Register(e, []Rule{
		{Name: "ok", Words: []string{"   a"}, Template: `"b"`},
		{Name: "no-template", Words: []string{"   a"}},
	})
	assert.Equal(t, 1, invalid)
	assert.Len(t, e.ConfigErrors(), 1)
}
