package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRomanize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain chinese", "草莓", "caomei"},
		{"latin passes through", "abc", "abc"},
		{"mixed", "a草", "acao"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Romanize(tc.input))
		})
	}
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "cm", Initials("草莓"))
	assert.Equal(t, "nh", Initials("你好"))
}

func TestPinyinSimilarity(t *testing.T) {
	// Pinyin-typed Latin input matches the product's romanized form.
	assert.InDelta(t, 1.0, PinyinSimilarity("caomei", "草莓"), 1e-9)

	// Homophone characters still compare as identical sounds.
	assert.InDelta(t, 1.0, PinyinSimilarity("草莓", "草莓"), 1e-9)

	// Unrelated sounds stay low.
	assert.Less(t, PinyinSimilarity("苹果", "香蕉"), 0.5)
}
