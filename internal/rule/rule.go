package rule

import (
	"errors"
	"fmt"
)

// Rule is an ordered word sequence ending in a template word. Rules are
// validated once at construction; a rule that fails validation is disabled
// and the matcher never selects it.
type Rule struct {
	Name  string
	words []Word

	disabled  bool
	configErr error
}

// New builds a rule from flag-encoded word strings and validates it.
// On validation failure the returned rule is disabled and the error
// describes the configuration problem; matching a disabled rule never
// crashes, it reports a SYSTEM_ERROR diagnostic instead.
func New(name string, encoded ...string) (*Rule, error) {
	words := make([]Word, 0, len(encoded))
	for _, e := range encoded {
		words = append(words, ParseWord(e))
	}
	return FromWords(name, words)
}

// FromWords builds a rule from already-decoded words and validates it.
func FromWords(name string, words []Word) (*Rule, error) {
	r := &Rule{Name: name, words: words}
	if err := r.validate(); err != nil {
		r.disabled = true
		r.configErr = err
		return r, fmt.Errorf("invalid rule %q: %w", name, err)
	}
	return r, nil
}

// Disabled reports whether the rule failed validation.
func (r *Rule) Disabled() bool { return r.disabled }

// Words exposes the word sequence, template included.
func (r *Rule) Words() []Word { return r.words }

// NumWords is the count of consuming words: the trailing template does not
// consume input and is excluded.
func (r *Rule) NumWords() int {
	if n := len(r.words); n > 0 && r.words[n-1].Role == Template {
		return n - 1
	}
	return len(r.words)
}

// Template returns the payload of the trailing template word.
func (r *Rule) Template() string {
	if n := len(r.words); n > 0 && r.words[n-1].Role == Template {
		return r.words[n-1].Text
	}
	return ""
}

func (r *Rule) validate() error {
	if len(r.words) == 0 {
		return errors.New("rule is empty")
	}
	for _, w := range r.words {
		if !w.Valid() {
			return errors.New("rule contains malformed word")
		}
	}
	last := r.words[len(r.words)-1]
	if last.Role != Template {
		return errors.New("last word must be a template")
	}
	if last.Rep != Once {
		return errors.New("last word cannot be repeating")
	}
	for i, w := range r.words {
		if w.Rep != Once && i+1 < len(r.words) && r.words[i+1].Opt != Mandatory {
			return errors.New("a repeating word cannot be followed by an optional word")
		}
		if w.Role == Capture {
			for j := i + 1; j < len(r.words); j++ {
				if r.words[j].Role == Capture && r.words[j].Text == w.Text {
					return fmt.Errorf("duplicate capture name %q", w.Text)
				}
			}
		}
	}
	return nil
}
