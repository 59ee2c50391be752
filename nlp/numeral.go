package nlp

import (
	"regexp"
	"strconv"
	"strings"
)

var numeralValues = map[rune]int{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var tensPattern = regexp.MustCompile(`^([一二两三四五六七八九])?十([一二三四五六七八九])?$`)

// quantityPattern finds a numeral followed by a measure word inside a
// sentence, e.g. 三斤, 2盒, 十个.
var quantityPattern = regexp.MustCompile(`([0-9]+|[一二两三四五六七八九]?十[一二三四五六七八九]?|[一二两三四五六七八九])[个斤盒箱份袋包只条瓶把颗]`)

// ParseQuantity extracts an integer quantity from s, accepting ASCII digits
// or common Chinese numerals up to 99. Unparseable input defaults to 1.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}

	runes := []rune(s)
	if len(runes) == 1 {
		if v, ok := numeralValues[runes[0]]; ok {
			return v
		}
	}

	if m := tensPattern.FindStringSubmatch(s); m != nil {
		tens := 1
		if m[1] != "" {
			tens = numeralValues[[]rune(m[1])[0]]
		}
		ones := 0
		if m[2] != "" {
			ones = numeralValues[[]rune(m[2])[0]]
		}
		return tens*10 + ones
	}
	return 1
}

// QuantityIn scans a full utterance for a numeral-plus-measure-word pair
// and returns its value, or 1 when no quantity is mentioned.
func QuantityIn(s string) int {
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return 1
	}
	return ParseQuantity(m[1])
}
