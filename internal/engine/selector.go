package engine

import (
	"github.com/macrolang/mpt/internal/rule"
	"github.com/macrolang/mpt/internal/source"
	"github.com/macrolang/mpt/internal/types"
)

// selection is the winning rule at a cursor position with its matches.
type selection struct {
	rule    *rule.Rule
	matches []rule.WordMatch
	score   float64
}

// selectRule matches every registered rule at the buffer's cursor and picks
// the best one. A score of 1.0 means every word matched; it is promoted to
// 2.0 when the rule closed with an explicit literal terminator before its
// template, which short-circuits the scan. When no rule reaches 1.0 the
// most informative partial error is retained: the one from the rule that
// got furthest, preferring the first seen on ties.
func (e *Engine) selectRule(buf *source.Buffer) (*selection, *types.CompilationError) {
	var best *selection
	var retained *types.CompilationError
	retainedProgress := -1.0

	for _, r := range e.rules {
		if r.Disabled() {
			continue
		}
		matches, err := r.Match(buf)
		words := r.Words()
		if err != nil {
			progress := 0.0
			if len(matches) > 0 {
				progress = float64(matches[len(matches)-1].WordIndex+1) / float64(len(words))
			}
			if progress > retainedProgress {
				retained = err
				retainedProgress = progress
			}
			continue
		}
		if len(matches) == 0 {
			continue
		}
		score := float64(matches[len(matches)-1].WordIndex+1) / float64(len(words))
		if score == 1.0 && len(words) >= 2 &&
			words[len(words)-2].Role == rule.Literal && words[len(words)-1].Role == rule.Template {
			score = 2.0
		}
		if best == nil || score > best.score {
			best = &selection{rule: r, matches: matches, score: score}
		}
		if best.score == 2.0 {
			break
		}
	}

	if best != nil && best.score >= 1.0 {
		return best, nil
	}
	return nil, retained
}
