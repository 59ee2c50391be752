package nlp

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
)

// Romanize converts s into joined toneless pinyin. Non-CJK runes pass
// through unchanged so mixed pinyin/Latin input still compares cleanly.
func Romanize(s string) string {
	args := pinyin.NewArgs()
	args.Fallback = passthrough
	return strings.Join(pinyin.LazyPinyin(strings.ToLower(s), args), "")
}

// Initials converts s into its joined pinyin initials ("你好" -> "nh").
// Non-CJK runes pass through unchanged.
func Initials(s string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.FirstLetter
	args.Fallback = passthrough
	return strings.Join(pinyin.LazyPinyin(strings.ToLower(s), args), "")
}

func passthrough(r rune, _ pinyin.Args) []string {
	return []string{string(r)}
}

// PinyinSimilarity compares two strings on their toneless romanized forms,
// taking the better of a full-form and an initials-only edit-distance
// similarity. This catches homophones and pinyin-typed queries.
func PinyinSimilarity(a, b string) float64 {
	full := LevenshteinSimilarity(Romanize(a), Romanize(b))
	initials := LevenshteinSimilarity(Initials(a), Initials(b))
	if initials > full {
		return initials
	}
	return full
}
