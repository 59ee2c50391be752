package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubgoodfood/freshchat/catalog"
	"github.com/hubgoodfood/freshchat/nlp"
)

func newTestProvider(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]*catalog.Entry{
		{Name: "草莓", Specification: "约500g", Unit: "盒", Category: "时令水果"},
		{Name: "台湾香瓜", Specification: "2-3个", Unit: "斤", Category: "时令水果"},
		{Name: "韩国香瓜", Specification: "3-4个", Unit: "斤", Category: "时令水果"},
		{Name: "上海青", Specification: "约300g", Unit: "份", Category: "新鲜蔬菜"},
	})
	require.NoError(t, err)
	return c
}

func newTestRanker() *Ranker {
	return NewRanker(NewScorer(DefaultWeights(), CombineWeightedMax))
}

func TestRanker_ExactNameShortCircuits(t *testing.T) {
	provider := newTestProvider(t)
	r := newTestRanker()

	out := r.Rank("草莓", provider, 0.4)
	require.Len(t, out, 1)
	assert.Equal(t, "草莓", out[0].Entry.Name)
	assert.InDelta(t, 1.0, out[0].Score.Aggregate, 1e-9)
}

func TestRanker_ExactDisplayName(t *testing.T) {
	provider := newTestProvider(t)
	r := newTestRanker()

	out := r.Rank(nlp.Normalize("草莓 (约500g)"), provider, 0.4)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0].Score.Aggregate, 1e-9)
}

func TestRanker_GuardedInputs(t *testing.T) {
	provider := newTestProvider(t)
	r := newTestRanker()

	testCases := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"greeting", "你好"},
		{"english greeting", "hello"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, r.Rank(tc.query, provider, 0.4))
		})
	}
}

func TestRanker_SortsDescendingWithStableTieBreak(t *testing.T) {
	provider := newTestProvider(t)
	r := newTestRanker()

	out := r.Rank("香瓜", provider, 0.4)
	require.Len(t, out, 2)
	// Equal scores fall back to catalog insertion order.
	assert.Equal(t, "台湾香瓜", out[0].Entry.Name)
	assert.Equal(t, "韩国香瓜", out[1].Entry.Name)
	assert.GreaterOrEqual(t, out[0].Score.Aggregate, out[1].Score.Aggregate)
}

func TestRanker_FiltersBelowMinScore(t *testing.T) {
	provider := newTestProvider(t)
	r := newTestRanker()

	assert.Empty(t, r.Rank("龙虾", provider, 0.4))
}

func TestRanker_SingleCharContainmentFirst(t *testing.T) {
	provider := newTestProvider(t)
	r := newTestRanker()

	out := r.Rank("莓", provider, 0.4)
	require.NotEmpty(t, out)
	assert.Equal(t, "草莓", out[0].Entry.Name)
}
