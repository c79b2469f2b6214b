package rule

import (
	"fmt"

	"github.com/macrolang/mpt/internal/lexer"
	"github.com/macrolang/mpt/internal/source"
	"github.com/macrolang/mpt/internal/types"
)

// WordMatch records that word WordIndex matched the half-open offset span
// Span in the buffer.
type WordMatch struct {
	WordIndex int
	Span      lexer.Span
}

// wordResult is the outcome of resolving a single word at an offset.
// probeEnd carries the full lexeme end discovered while matching, used by
// capture lookahead to advance its probe; -1 means it was not determined.
type wordResult struct {
	span     lexer.Span
	probeEnd int
	errMsg   string
}

func wordFail(msg string) wordResult {
	return wordResult{probeEnd: -1, errMsg: msg}
}

// Match aligns the rule's words against the buffer starting at its cursor.
// On success it returns the matched spans. On failure it returns the partial
// span list gathered so far together with the first hard error, which the
// selector uses to surface the most informative diagnostic.
func (r *Rule) Match(buf *source.Buffer) ([]WordMatch, *types.CompilationError) {
	if buf.Empty() {
		err := types.NewError(buf.Pos(), "string is empty")
		return nil, &err
	}
	if r.disabled {
		err := types.NewSystemError(buf.Pos(), fmt.Sprintf("invalid rule: %v", r.configErr))
		return nil, &err
	}

	var res []WordMatch
	cur := buf.Clone() // tracks line/column for error positions
	pos := buf.Pos().Offset
	i := 0
	repeating := false

	for i < len(r.words) {
		cur.AdvanceTo(pos)
		w := r.words[i]
		m := r.resolveWord(buf, pos, i)

		if m.errMsg != "" {
			if !w.Valid() {
				i++
				continue
			}
			if w.Rep == RepeatSingle {
				if !repeating && w.Opt != Optional {
					err := types.NewError(cur.Pos(), "single repeating word not found")
					return res, &err
				}
				repeating = false
				i++
				continue
			}
			if repeating {
				retried := false
				if w.Rep == Repeat {
					// try skipping forward past further repeating words to
					// find a closer
					j := i
					for j < len(r.words) && r.words[j].Rep == Repeat {
						j++
					}
					if j < len(r.words) {
						if m2 := r.resolveWord(buf, pos, j); m2.errMsg == "" {
							i, m, retried = j, m2, true
						}
					}
				}
				if !retried && i > 0 {
					// back up over preceding repeating words and retry
					j := i
					for j > 0 && r.words[j-1].Rep == Repeat {
						j--
					}
					if j != i {
						if m2 := r.resolveWord(buf, pos, j); m2.errMsg == "" {
							i, m, retried = j, m2, true
						}
					}
				}
				if !retried {
					err := types.NewError(cur.Pos(),
						"repeating word not found or no closer was found after repeating words")
					return res, &err
				}
			} else if w.Opt == Optional {
				i++
				continue
			} else if w.Opt == OptionalListMember {
				// a failing member with more members behind it takes the whole
				// run down with it; only a run ending here is a hard failure
				if i+1 >= len(r.words) || r.words[i+1].Opt != OptionalListMember {
					err := types.NewError(cur.Pos(), "word should match at least one option in optional list")
					return res, &err
				}
				for i < len(r.words) && r.words[i].Opt == OptionalListMember {
					i++
				}
				continue
			} else {
				msg := fmt.Sprintf("word %q not found", w.Text)
				if w.Role == Capture {
					msg = m.errMsg
				}
				err := types.NewError(cur.Pos(), msg)
				return res, &err
			}
		}

		pos = m.span.End
		res = append(res, WordMatch{WordIndex: i, Span: m.span})

		// a matched list member stands for its whole contiguous run
		if r.words[i].Opt == OptionalListMember {
			for i+1 < len(r.words) && r.words[i+1].Opt == OptionalListMember {
				i++
			}
		}

		switch r.words[i].Rep {
		case Once:
			i++
			repeating = false
		case Repeat:
			i++
			repeating = true
		case RepeatSingle:
			// stay on the same word so it can match again
			repeating = true
		}
	}
	return res, nil
}

// resolveWord resolves word wordID against the buffer at absolute offset at.
func (r *Rule) resolveWord(buf *source.Buffer, at int, wordID int) wordResult {
	w := r.words[wordID]
	if !w.Valid() {
		return wordFail("word is malformed")
	}
	switch w.Role {
	case Literal:
		start := lexer.SkipSpace(buf, at)
		full, _ := lexer.NextSpan(buf, start, true)
		word, _ := lexer.NextSpan(buf, start, false)
		if word.Empty() {
			return wordResult{probeEnd: full.End, errMsg: "expected word"}
		}
		if !buf.MatchesAt(word.Start, w.Text) {
			return wordResult{probeEnd: full.End, errMsg: "word does not match expected word"}
		}
		return wordResult{
			span:     lexer.Span{Start: word.Start, End: word.Start + len(w.Text)},
			probeEnd: full.End,
		}

	case Capture:
		return r.resolveCapture(buf, at, wordID)

	case Template:
		// the template never consumes input; it marks where capturing stops
		start := lexer.SkipSpace(buf, at)
		return wordResult{
			span:     lexer.Span{Start: start, End: start},
			probeEnd: buf.Len(),
		}

	default:
		return wordFail("word is not matchable")
	}
}

// resolveCapture finds the span a capture word binds. The last consuming
// word of a rule simply takes the next full lexeme; any earlier capture must
// discover its end boundary by recursive lookahead: probe the following
// word(s) at increasing offsets until one matches, then back the capture's
// end off over the whitespace preceding the discovered start.
func (r *Rule) resolveCapture(buf *source.Buffer, at int, wordID int) wordResult {
	start := lexer.SkipSpace(buf, at)
	first, _ := lexer.NextSpan(buf, start, true)
	if first.Empty() {
		return wordFail("expected word")
	}
	if wordID == r.NumWords()-1 {
		return wordResult{span: first, probeEnd: first.End}
	}

	w := r.words[wordID]
	nextID := wordID + 1

	// a repeating capture may also be terminated by the closing word that
	// follows the whole run of repeating words
	backup := nextID
	for backup < len(r.words) && r.words[backup].Rep == Repeat {
		backup++
	}

	probe := first.End
	var next wordResult
	for {
		prev := probe
		next = r.resolveWord(buf, prev, nextID)
		if next.probeEnd >= 0 {
			probe = next.probeEnd
		}
		if w.Rep == Repeat && next.errMsg != "" && backup < len(r.words) {
			next = r.resolveWord(buf, prev, backup)
			if next.probeEnd >= 0 {
				probe = next.probeEnd
			}
		}
		if prev >= buf.Len()-1 || probe == prev {
			return wordFail("reached end of string without finding next word")
		}
		if next.errMsg == "" {
			break
		}
	}

	end := next.span.Start
	for end > 0 && lexer.IsSpace(buf.At(end-1)) {
		end--
	}
	if end < first.Start {
		return wordFail("expected word")
	}
	return wordResult{span: lexer.Span{Start: first.Start, End: end}, probeEnd: end}
}
