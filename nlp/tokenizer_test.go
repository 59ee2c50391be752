package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims and lowercases", "  Hello World  ", "hello world"},
		{"strips punctuation", "草莓多少钱？！", "草莓多少钱"},
		{"strips symbols", "价格=25元", "价格25元"},
		{"collapses inner whitespace", "a   b\t\nc", "a b c"},
		{"punctuation only", "？！。，", ""},
		{"empty", "", ""},
		{"mixed cjk latin", "Apple苹果", "apple苹果"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "cjk run yields unigrams and bigrams",
			input:    "草莓酱",
			expected: []string{"草", "莓", "酱", "草莓", "莓酱"},
		},
		{
			name:     "latin run is one token",
			input:    "apple",
			expected: []string{"apple"},
		},
		{
			name:     "mixed runs keep order",
			input:    "买2个苹果",
			expected: []string{"买", "2", "个", "苹", "果", "个苹", "苹果"},
		},
		{
			name:     "punctuation splits cjk runs",
			input:    "草莓，苹果",
			expected: []string{"草", "莓", "草莓", "苹", "果", "苹果"},
		},
		{
			name:     "single cjk char has no bigram",
			input:    "莓",
			expected: []string{"莓"},
		},
		{name: "empty", input: "", expected: nil},
		{name: "punctuation only", input: "？！", expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.input))
		})
	}
}

func TestTokenSet(t *testing.T) {
	set := TokenSet([]string{"a", "b", "a"})
	assert.Len(t, set, 2)
	_, ok := set["a"]
	assert.True(t, ok)
}
