package types

import "fmt"

// Severity classifies how serious a compilation diagnostic is.
type Severity int

const (
	SeverityMessage Severity = iota
	SeverityWarning
	SeverityError
	SeveritySystemError
)

func (s Severity) String() string {
	switch s {
	case SeverityMessage:
		return "MESSAGE"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeveritySystemError:
		return "SYSTEM_ERROR"
	default:
		return "unknown"
	}
}

// Position is a location in a source buffer. Line and Column are 1-based.
type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// CompilationError is one diagnostic produced while registering rules or
// parsing a source text. Fix optionally carries suggested replacement text.
type CompilationError struct {
	Severity Severity `json:"severity"`
	Pos      Position `json:"position"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix,omitempty"`
}

func (e CompilationError) Error() string {
	return fmt.Sprintf("%s\n%s", e.Pos, e.Message)
}

// NewError builds an ERROR-severity diagnostic at the given position.
func NewError(pos Position, message string) CompilationError {
	return CompilationError{Severity: SeverityError, Pos: pos, Message: message}
}

// NewSystemError builds a SYSTEM_ERROR-severity diagnostic. These mark
// configuration problems and engine limits rather than user input mistakes.
func NewSystemError(pos Position, message string) CompilationError {
	return CompilationError{Severity: SeveritySystemError, Pos: pos, Message: message}
}

// HasBlocking reports whether any diagnostic in the list is at least
// ERROR severity. Hosts treat this as a non-zero exit condition.
func HasBlocking(errs []CompilationError) bool {
	for _, e := range errs {
		if e.Severity >= SeverityError {
			return true
		}
	}
	return false
}
