// Package rule implements the grammar mini-language: flag-encoded words,
// rule validation, and the backtracking matcher that aligns a rule's word
// sequence against a source buffer.
package rule

// Optionality says whether a word must match.
type Optionality int

const (
	Mandatory Optionality = iota
	Optional
	// OptionalListMember words form contiguous runs of alternatives; at
	// least one member of a run must match.
	OptionalListMember
)

// Repetition says how often a word may match.
type Repetition int

const (
	Once Repetition = iota
	Repeat
	// RepeatSingle re-tries the same word without advancing the word index,
	// letting a single word consume a run of occurrences.
	RepeatSingle
)

// Role is what a word means to the matcher and the expander.
type Role int

const (
	// Literal words match their payload text exactly.
	Literal Role = iota
	// Capture words bind the matched span under the payload name.
	Capture
	// Template is the trailing rewrite text of a rule.
	Template
	// ErrorMessageTag and ErrorFixTag are reserved for diagnostics rules;
	// the matcher never matches them.
	ErrorMessageTag
	ErrorFixTag
)

// Word is one grammar token descriptor. A malformed descriptor yields an
// invalid word: the matcher skips it and rule validation rejects the rule.
type Word struct {
	Opt   Optionality
	Rep   Repetition
	Role  Role
	Text  string
	valid bool
}

// Valid reports whether the word parsed cleanly.
func (w Word) Valid() bool { return w.valid }

// ParseWord decodes the compact fixed-offset encoding: position 0 is
// optionality (' ' mandatory, '?' optional, '^' optional-list-member),
// position 1 is repetition (' ' once, '*' repeat, '#' repeat-single),
// position 2 is role (' ' literal, '$' capture, '+' template,
// '!' error-message tag, '?' error-fix tag), and the remainder is the
// payload. A template word that is optional or repeats is invalid.
func ParseWord(encoded string) Word {
	if len(encoded) < 3 {
		return Word{}
	}
	var w Word
	switch encoded[0] {
	case ' ':
		w.Opt = Mandatory
	case '?':
		w.Opt = Optional
	case '^':
		w.Opt = OptionalListMember
	default:
		return Word{}
	}
	switch encoded[1] {
	case ' ':
		w.Rep = Once
	case '*':
		w.Rep = Repeat
	case '#':
		w.Rep = RepeatSingle
	default:
		return Word{}
	}
	switch encoded[2] {
	case ' ':
		w.Role = Literal
	case '$':
		w.Role = Capture
	case '+':
		w.Role = Template
	case '!':
		w.Role = ErrorMessageTag
	case '?':
		w.Role = ErrorFixTag
	default:
		return Word{}
	}
	if w.Role == Template && (w.Rep != Once || w.Opt != Mandatory) {
		return Word{}
	}
	w.Text = encoded[3:]
	w.valid = true
	return w
}

// NewWord builds a word from typed fields, bypassing the flag encoding.
func NewWord(opt Optionality, rep Repetition, role Role, text string) Word {
	w := Word{Opt: opt, Rep: rep, Role: role, Text: text, valid: true}
	if role == Template && (rep != Once || opt != Mandatory) {
		return Word{}
	}
	return w
}

// Encode renders the word back into its flag-encoded form.
func (w Word) Encode() string {
	if !w.valid {
		return ""
	}
	flags := []byte{' ', ' ', ' '}
	switch w.Opt {
	case Optional:
		flags[0] = '?'
	case OptionalListMember:
		flags[0] = '^'
	}
	switch w.Rep {
	case Repeat:
		flags[1] = '*'
	case RepeatSingle:
		flags[1] = '#'
	}
	switch w.Role {
	case Capture:
		flags[2] = '$'
	case Template:
		flags[2] = '+'
	case ErrorMessageTag:
		flags[2] = '!'
	case ErrorFixTag:
		flags[2] = '?'
	}
	return string(flags) + w.Text
}
