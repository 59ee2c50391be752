package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestEntries() []*Entry {
	return []*Entry{
		{Name: "草莓", Specification: "约500g", Unit: "盒", Price: 25, Category: "时令水果", IsSeasonal: true},
		{Name: "台湾香瓜", Specification: "2-3个", Unit: "斤", Price: 18, Category: "时令水果"},
		{Name: "韩国香瓜", Specification: "3-4个", Unit: "斤", Price: 22, Category: "时令水果"},
		{Name: "上海青", Specification: "约300g", Unit: "份", Price: 6, Category: "新鲜蔬菜"},
	}
}

func TestNew(t *testing.T) {
	c, err := New(newTestEntries())
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	// Keys and display names are derived when absent.
	e, ok := c.Get("草莓 (约500g)")
	require.True(t, ok)
	assert.Equal(t, "草莓 (约500g)", e.DisplayName)
	assert.Equal(t, "草莓 (约500g)", e.Key)

	// Insertion order is preserved.
	all := c.AllEntries()
	assert.Equal(t, "草莓", all[0].Name)
	assert.Equal(t, "上海青", all[3].Name)
}

func TestNew_DuplicateKey(t *testing.T) {
	entries := []*Entry{
		{Name: "草莓", Specification: "约500g", Unit: "盒"},
		{Name: "草莓", Specification: "约500g", Unit: "盒"},
	}
	_, err := New(entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate catalog key")
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New([]*Entry{{}})
	require.Error(t, err)
}

func TestGet_CaseInsensitive(t *testing.T) {
	c, err := New([]*Entry{{Name: "Apple", Unit: "个"}})
	require.NoError(t, err)
	_, ok := c.Get("APPLE")
	assert.True(t, ok)
}

func TestPopularity_Concurrent(t *testing.T) {
	c, err := New(newTestEntries())
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			c.IncrementPopularity("草莓 (约500g)", 1)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	e, ok := c.Get("草莓 (约500g)")
	require.True(t, ok)
	assert.Equal(t, int64(50), e.Popularity())

	// Negative deltas never decrease the counter.
	e.AddPopularity(-10)
	assert.Equal(t, int64(50), e.Popularity())
}

func TestByCategory(t *testing.T) {
	c, err := New(newTestEntries())
	require.NoError(t, err)

	fruits := c.ByCategory("时令水果", 0)
	assert.Len(t, fruits, 3)
	assert.Empty(t, c.ByCategory("", 5))
	assert.Len(t, c.ByCategory("时令水果", 2), 2)
}

func TestPopular_OrdersByCounter(t *testing.T) {
	c, err := New(newTestEntries())
	require.NoError(t, err)
	c.IncrementPopularity("韩国香瓜 (3-4个)", 5)

	top := c.Popular(1, "")
	require.Len(t, top, 1)
	assert.Equal(t, "韩国香瓜", top[0].Name)
}

func TestSeasonal_BackfillsWithPopular(t *testing.T) {
	c, err := New(newTestEntries())
	require.NoError(t, err)

	// One seasonal entry; the rest of the list is filled from popular
	// entries without repeating the seasonal one.
	out := c.Seasonal(3, "")
	require.Len(t, out, 3)
	assert.Equal(t, "草莓", out[0].Name)
	seen := map[string]int{}
	for _, e := range out {
		seen[e.Key]++
	}
	for key, n := range seen {
		assert.Equal(t, 1, n, "entry %s appeared twice", key)
	}
}

func TestSeasonal_CategoryFilter(t *testing.T) {
	c, err := New(newTestEntries())
	require.NoError(t, err)

	out := c.Seasonal(2, "新鲜蔬菜")
	require.Len(t, out, 1)
	assert.Equal(t, "上海青", out[0].Name)
}

func TestDisplayNameFor(t *testing.T) {
	testCases := []struct {
		name, spec, unit string
		expected         string
	}{
		{"草莓", "约500g", "盒", "草莓 (约500g)"},
		{"鸡蛋", "", "板", "鸡蛋"},
		{"苹果", "个", "个", "苹果"},
		{"草莓500g装", "500g装", "盒", "草莓500g装"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, DisplayNameFor(tc.name, tc.spec, tc.unit))
	}
}
