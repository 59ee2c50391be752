package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hubgoodfood/freshchat/catalog"
	"github.com/hubgoodfood/freshchat/intent"
	"github.com/hubgoodfood/freshchat/metrics"
)

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]*catalog.Entry{
		{Name: "草莓", Specification: "约500g", Unit: "盒", Price: 25, Category: "时令水果", IsSeasonal: true},
		{Name: "台湾香瓜", Specification: "2-3个", Unit: "斤", Price: 18, Category: "时令水果"},
		{Name: "韩国香瓜", Specification: "3-4个", Unit: "斤", Price: 22, Category: "时令水果"},
		{Name: "上海青", Specification: "约300g", Unit: "份", Price: 6, Category: "新鲜蔬菜"},
	})
	require.NoError(t, err)
	return c
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), newTestCatalog(t), opts...)
	require.NoError(t, err)
	return e
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	require.Error(t, err)
}

func TestResolve_ExactProductName(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Resolve(context.Background(), "草莓多少钱", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultAnswer, res.Kind)
	assert.Equal(t, intent.InquiryPriceOrBuy, res.Intent)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "草莓", res.Entry.Name)
	require.NotNil(t, res.Score)
	assert.InDelta(t, 1.0, res.Score.Aggregate, 1e-9)
	assert.Equal(t, 1, res.Quantity)
	assert.Equal(t, int64(1), res.Entry.Popularity())
}

func TestResolve_QuantityInUtterance(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Resolve(context.Background(), "三斤草莓多少钱", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultAnswer, res.Kind)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "草莓", res.Entry.Name)
	assert.Equal(t, 3, res.Quantity)
}

func TestResolve_Greeting(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Resolve(context.Background(), "你好", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultAnswer, res.Kind)
	assert.Equal(t, intent.Greeting, res.Intent)
	assert.Nil(t, res.Entry)
}

func TestResolve_UnknownProductFallsBack(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Resolve(context.Background(), "龙虾", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultFallback, res.Kind)
	assert.Equal(t, intent.Unknown, res.Intent)
}

func TestResolve_AmbiguousNameClarifies(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Resolve(context.Background(), "香瓜", "u1")
	require.NoError(t, err)
	require.Equal(t, ResultClarify, res.Kind)
	require.Len(t, res.Options, 2)
	assert.Equal(t, "台湾香瓜 (2-3个)", res.Options[0].DisplayText)
	assert.Equal(t, "韩国香瓜 (3-4个)", res.Options[1].DisplayText)
}

func TestResolve_AvailabilityChatter(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Resolve(context.Background(), "卖不卖草莓", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultAnswer, res.Kind)
	assert.Equal(t, intent.InquiryAvailability, res.Intent)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "草莓", res.Entry.Name)
}

func TestResolve_FollowUpIgnoresSpecificationQuantity(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first, err := e.Resolve(ctx, "韩国香瓜多少钱", "u1")
	require.NoError(t, err)
	require.Equal(t, ResultAnswer, first.Kind)
	require.NotNil(t, first.Entry)
	require.Equal(t, "韩国香瓜", first.Entry.Name)

	// The follow-up rewrite prefixes "韩国香瓜 (3-4个)"; the 4个 in the
	// specification is not an order amount.
	res, err := e.Resolve(ctx, "多少钱", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultAnswer, res.Kind)
	assert.Equal(t, intent.InquiryPriceOrBuy, res.Intent)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "韩国香瓜", res.Entry.Name)
	assert.Equal(t, 1, res.Quantity)
}

func TestResolve_PureFollowUpBindsLastMatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first, err := e.Resolve(ctx, "卖不卖草莓", "u1")
	require.NoError(t, err)
	require.Equal(t, ResultAnswer, first.Kind)

	res, err := e.Resolve(ctx, "多少钱", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultAnswer, res.Kind)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "草莓", res.Entry.Name)
	assert.Contains(t, res.RewrittenQuery, "草莓")
}

func TestResolve_GreetingKeepsFollowUpContext(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Resolve(ctx, "草莓多少钱", "u1")
	require.NoError(t, err)
	_, err = e.Resolve(ctx, "你好", "u1")
	require.NoError(t, err)

	res, err := e.Resolve(ctx, "多少钱", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultAnswer, res.Kind)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "草莓", res.Entry.Name)
}

func TestResolve_ClarificationClearsFollowUpContext(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Resolve(ctx, "草莓多少钱", "u1")
	require.NoError(t, err)

	clarify, err := e.Resolve(ctx, "香瓜", "u1")
	require.NoError(t, err)
	require.Equal(t, ResultClarify, clarify.Kind)

	// With the ambiguity unresolved, a bare price question no longer
	// binds to the stale strawberry match.
	res, err := e.Resolve(ctx, "多少钱", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultFallback, res.Kind)
	assert.Nil(t, res.Entry)
}

func TestResolve_Recommendation(t *testing.T) {
	e := newTestEngine(t)

	res, err := e.Resolve(context.Background(), "有什么推荐", "u1")
	require.NoError(t, err)
	assert.Equal(t, ResultAnswer, res.Kind)
	assert.Equal(t, intent.RequestRecommendation, res.Intent)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "草莓", res.Suggestions[0].Name)
}

func TestResolve_MalformedInput(t *testing.T) {
	e := newTestEngine(t)

	for _, input := range []string{"", "   ", "？！。"} {
		res, err := e.Resolve(context.Background(), input, "u1")
		require.NoError(t, err)
		assert.Equal(t, ResultFallback, res.Kind, "input %q", input)
		assert.Equal(t, intent.Unknown, res.Intent)
	}
}

func TestResolve_EmptyCatalog(t *testing.T) {
	empty, err := catalog.New(nil)
	require.NoError(t, err)
	e, err := New(DefaultConfig(), empty)
	require.NoError(t, err)

	_, err = e.Resolve(context.Background(), "草莓多少钱", "u1")
	require.ErrorIs(t, err, ErrCatalogEmpty)
}

func TestResolve_ConcurrentUsers(t *testing.T) {
	e := newTestEngine(t)

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		i := i
		g.Go(func() error {
			_, err := e.Resolve(context.Background(), "草莓多少钱", fmt.Sprintf("u%d", i))
			return err
		})
	}
	require.NoError(t, g.Wait())

	entry, ok := e.provider.Get("草莓 (约500g)")
	require.True(t, ok)
	assert.Equal(t, int64(20), entry.Popularity())
}

func TestResolve_DecisionCache(t *testing.T) {
	exporter := metrics.NewExporter()
	e := newTestEngine(t, WithMetrics(exporter))
	ctx := context.Background()

	_, err := e.Resolve(ctx, "你好", "u1")
	require.NoError(t, err)
	_, err = e.Resolve(ctx, "你好", "u2")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `freshchat_decision_cache_events_total{result="miss"} 1`)
	assert.Contains(t, body, `freshchat_decision_cache_events_total{result="hit"} 1`)
}

func TestConfig_DefaultsApplied(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	d := DefaultConfig()
	assert.Equal(t, d.MinAcceptableMatchScore, cfg.MinAcceptableMatchScore)
	assert.Equal(t, d.DominantMatchThreshold, cfg.DominantMatchThreshold)
	assert.Equal(t, d.MaxClarificationOptions, cfg.MaxClarificationOptions)
	assert.Equal(t, d.Weights, cfg.Weights)
	assert.Equal(t, d.CacheTTL, cfg.CacheTTL)
}
