// Package lexer classifies lexemes inside a source buffer. It produces
// absolute half-open [start, end) spans without consuming the buffer; the
// matcher and the engine decide how far to advance the cursor.
package lexer

import (
	"github.com/macrolang/mpt/internal/source"
)

// Kind is the coarse class of a lexeme.
type Kind int

const (
	KindNone Kind = iota
	KindNumber
	KindIdentifier
	KindSymbol
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindIdentifier:
		return "identifier"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	default:
		return "none"
	}
}

// Span is a half-open [Start, End) offset range into a buffer.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int    { return s.End - s.Start }
func (s Span) Empty() bool { return s.End <= s.Start }

// IsSpace reports whether c is one of the whitespace characters the engine
// skips: space, newline, tab.
func IsSpace(c byte) bool { return c == ' ' || c == '\n' || c == '\t' }

// IsDigit reports whether c is an ASCII digit.
func IsDigit(c byte) bool { return c >= '0' && c <= '9' }

// IsAlpha reports whether c is an ASCII letter.
func IsAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

// IsSymbol reports whether c is a printable ASCII symbol character.
func IsSymbol(c byte) bool {
	return c >= '!' && c <= '/' || c >= ':' && c <= '@' || c >= '[' && c <= '`' || c >= '{' && c <= '~'
}

func isNumberTail(c byte) bool {
	// unit suffixes extend a number lexeme: 1.5f, 3u, 7i
	return IsDigit(c) || c == '.' || c == 'u' || c == 'i' || c == 'f'
}

func isIdentTail(c byte) bool {
	return IsAlpha(c) || IsDigit(c) || c == '_'
}

func closingFor(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	default:
		return 0
	}
}

func isOperator(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '&', '|', '^', '%':
		return true
	default:
		return false
	}
}

// SkipSpace returns the first offset at or after off holding a non-space
// character. It stops at the sentinel.
func SkipSpace(b *source.Buffer, off int) int {
	for off < b.Len()-1 && IsSpace(b.At(off)) {
		off++
	}
	return off
}

// NextSpan classifies the lexeme at absolute offset off and returns its span.
// No leading whitespace is skipped; callers skip it first. A zero-length span
// with KindNone means no lexeme starts at off (end of buffer or whitespace).
//
// With fullBrace set, a leading bracket character extends through its
// balanced closing counterpart; otherwise the bracket alone is the lexeme.
func NextSpan(b *source.Buffer, off int, fullBrace bool) (Span, Kind) {
	c := b.At(off)
	switch {
	case c == 0 || IsSpace(c):
		return Span{off, off}, KindNone

	case IsDigit(c):
		end := off
		for isNumberTail(b.At(end)) {
			end++
		}
		return Span{off, end}, KindNumber

	case IsAlpha(c):
		end := off
		for isIdentTail(b.At(end)) {
			end++
		}
		return Span{off, end}, KindIdentifier

	case closingFor(c) != 0:
		if fullBrace {
			return FullBraceSpan(b, off), KindSymbol
		}
		return Span{off, off + 1}, KindSymbol

	case isOperator(c):
		// compound assignment (+=) and doubled operators (++, &&) form one
		// lexeme
		if next := b.At(off + 1); next == '=' || next == c {
			return Span{off, off + 2}, KindSymbol
		}
		return Span{off, off + 1}, KindSymbol

	case c == '"':
		end := off + 1
		for b.At(end) != 0 && (b.At(end) != '"' || b.At(end-1) == '\\') {
			end++
		}
		if b.At(end) == '"' {
			end++
		}
		return Span{off, end}, KindString

	default:
		return Span{off, off + 1}, KindSymbol
	}
}

// FullBraceSpan returns the span from the opening bracket at off through its
// balanced closing counterpart. Nesting is tracked with a depth counter that
// reacts only to brackets of the same kind. An unbalanced bracket yields a
// span running to the end of the buffer.
func FullBraceSpan(b *source.Buffer, off int) Span {
	open := b.At(off)
	close := closingFor(open)
	if close == 0 {
		return Span{}
	}
	end := off
	depth := 1
	for end < b.Len() && depth >= 1 {
		end++
		switch b.At(end) {
		case open:
			depth++
		case close:
			depth--
		}
	}
	if b.At(end) == close {
		end++
	}
	return Span{off, end}
}
