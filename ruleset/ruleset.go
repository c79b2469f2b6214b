// Package ruleset loads rewrite rules from YAML files. Each rule carries
// flag-encoded words plus a template string that becomes the rule's
// trailing template word.
package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/macrolang/mpt/internal/engine"
)

// Rule is one rule as written in a rule file.
type Rule struct {
	Name     string   `yaml:"name"`
	Words    []string `yaml:"words"`
	Template string   `yaml:"template"`
}

// Config is the top-level rule file schema.
type Config struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads and decodes a rule file.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes rule file content.
func Parse(data []byte) ([]Rule, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	return cfg.Rules, nil
}

// EncodedWords returns the full flag-encoded word list including the
// trailing template word.
func (r Rule) EncodedWords() []string {
	words := make([]string, 0, len(r.Words)+1)
	words = append(words, r.Words...)
	if r.Template != "" {
		words = append(words, "  +"+r.Template)
	}
	return words
}

// Register adds every rule to the engine and reports how many failed
// validation. The engine keeps the per-rule diagnostics.
func Register(e *engine.Engine, rules []Rule) int {
	invalid := 0
	for _, r := range rules {
		if err := e.AddRule(r.Name, r.EncodedWords()...); err != nil {
			invalid++
		}
	}
	return invalid
}
