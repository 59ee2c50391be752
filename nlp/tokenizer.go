// Package nlp provides text normalization, tokenization and similarity
// kernels for mixed Chinese/Latin retail queries.
package nlp

import (
	"strings"
	"unicode"
)

// Normalize trims, lowercases and strips punctuation and symbols from s.
// Runs of inner whitespace collapse to a single space. A string made of
// nothing but punctuation normalizes to "".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Tokenize splits s into matchable tokens: Latin/alphanumeric runs become
// whole-word tokens, and every maximal run of CJK characters contributes
// each single character plus each overlapping two-character bigram.
// Empty or punctuation-only input yields nil.
func Tokenize(s string) []string {
	var tokens []string
	var word []rune // current Latin/digit run
	var han []rune  // current CJK run

	flushWord := func() {
		if len(word) > 0 {
			tokens = append(tokens, string(word))
			word = word[:0]
		}
	}
	flushHan := func() {
		for _, r := range han {
			tokens = append(tokens, string(r))
		}
		for i := 0; i+1 < len(han); i++ {
			tokens = append(tokens, string(han[i:i+2]))
		}
		han = han[:0]
	}

	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			flushHan()
			word = append(word, r)
		case unicode.Is(unicode.Han, r):
			flushWord()
			han = append(han, r)
		default:
			flushWord()
			flushHan()
		}
	}
	flushWord()
	flushHan()
	return tokens
}

// TokenSet converts a token slice into a membership set.
func TokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
