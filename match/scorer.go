// Package match scores free-text queries against catalog entries and turns
// the ranked candidates into a single-match, clarification or no-match
// decision.
package match

import (
	"strings"
	"unicode/utf8"

	"github.com/hubgoodfood/freshchat/catalog"
	"github.com/hubgoodfood/freshchat/nlp"
)

// Weights holds one multiplier per similarity signal.
type Weights struct {
	NameJaccard    float64
	KeywordJaccard float64
	CharJaccard    float64
	Levenshtein    float64
	Pinyin         float64
}

// DefaultWeights mirrors the production tuning: character overlap and edit
// distance dominate, phonetic matching is a low-weight tie-breaker.
func DefaultWeights() Weights {
	return Weights{
		NameJaccard:    0.2,
		KeywordJaccard: 0.1,
		CharJaccard:    0.3,
		Levenshtein:    0.3,
		Pinyin:         0.1,
	}
}

// CombineMode selects how weighted signals collapse into one score.
//
// Two schemes co-exist upstream with empirically chosen constants and no
// recorded rationale: product matching takes the weighted maximum, while a
// secondary semantic path sums. Both are kept; max is the default.
type CombineMode int

const (
	// CombineWeightedMax takes the largest weighted signal.
	CombineWeightedMax CombineMode = iota
	// CombineWeightedSum sums the weighted signals.
	CombineWeightedSum
)

// Score carries the per-signal components alongside the aggregate, for
// diagnostics and threshold tuning.
type Score struct {
	NameJaccard    float64
	KeywordJaccard float64
	CharJaccard    float64
	Levenshtein    float64
	Pinyin         float64
	Bonus          float64
	Aggregate      float64
}

// Scorer computes bounded similarity between a normalized query and a
// catalog entry. Safe for concurrent use.
type Scorer struct {
	weights Weights
	mode    CombineMode
}

// NewScorer builds a scorer. Zero weights are allowed and simply mute the
// corresponding signal.
func NewScorer(w Weights, mode CombineMode) *Scorer {
	return &Scorer{weights: w, mode: mode}
}

// Score computes the similarity components between queryNorm (already
// passed through nlp.Normalize) and the entry, combines them per the
// configured mode, applies the containment bonus and clamps to [0,1].
// A panicking or degenerate signal contributes zero rather than aborting
// the pass.
func (s *Scorer) Score(queryNorm string, e *catalog.Entry) Score {
	nameNorm := strings.ToLower(e.Name)

	queryTokens := nlp.Tokenize(queryNorm)
	var sc Score
	sc.NameJaccard = safeSignal(func() float64 {
		return nlp.JaccardTokens(queryTokens, nlp.Tokenize(nameNorm))
	})
	sc.KeywordJaccard = safeSignal(func() float64 {
		return nlp.JaccardTokens(queryTokens, tokenizeKeywords(e.Keywords))
	})
	sc.CharJaccard = safeSignal(func() float64 {
		return nlp.CharJaccard(queryNorm, nameNorm)
	})
	sc.Levenshtein = safeSignal(func() float64 {
		return nlp.LevenshteinSimilarity(queryNorm, nameNorm)
	})
	sc.Pinyin = safeSignal(func() float64 {
		return nlp.PinyinSimilarity(queryNorm, nameNorm)
	})

	weighted := []float64{
		sc.NameJaccard * s.weights.NameJaccard,
		sc.KeywordJaccard * s.weights.KeywordJaccard,
		sc.CharJaccard * s.weights.CharJaccard,
		sc.Levenshtein * s.weights.Levenshtein,
		sc.Pinyin * s.weights.Pinyin,
	}

	switch s.mode {
	case CombineWeightedSum:
		for _, w := range weighted {
			sc.Aggregate += w
		}
	default:
		for _, w := range weighted {
			if w > sc.Aggregate {
				sc.Aggregate = w
			}
		}
	}

	// Containment earns a fixed bonus, larger for single-character
	// queries where the set-based signals are weakest.
	if queryNorm != "" &&
		(strings.Contains(nameNorm, queryNorm) || strings.Contains(queryNorm, nameNorm)) {
		sc.Bonus = 0.3
		if utf8.RuneCountInString(queryNorm) == 1 {
			sc.Bonus = 0.5
		}
		sc.Aggregate += sc.Bonus
	}

	sc.Aggregate = clamp01(sc.Aggregate)
	return sc
}

func tokenizeKeywords(keywords []string) []string {
	var tokens []string
	for _, kw := range keywords {
		tokens = append(tokens, nlp.Tokenize(kw)...)
	}
	return tokens
}

// safeSignal runs one similarity metric, degrading its contribution to
// zero on panic instead of aborting the scoring pass.
func safeSignal(fn func() float64) (v float64) {
	defer func() {
		if recover() != nil {
			v = 0
		}
	}()
	v = fn()
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
