package catalog

import (
	"log/slog"
	"sort"
	"strings"
)

// CategoryHints holds the keyword tables InferCategory consults. The
// defaults cover a fresh-food shop; callers with a different assortment
// supply their own tables.
type CategoryHints struct {
	// FruitKeywords / VegetableKeywords short-circuit to the two
	// highest-traffic categories.
	FruitKeywords     []string
	VegetableKeywords []string
	// KeywordMap scores arbitrary categories by keyword occurrence.
	KeywordMap map[string][]string
	// GenericFruitWords / GenericVegetableWords are weak last-resort cues.
	GenericFruitWords     []string
	GenericVegetableWords []string
}

// DefaultCategoryHints returns the stock keyword tables.
func DefaultCategoryHints() CategoryHints {
	return CategoryHints{
		FruitKeywords:     []string{"苹果", "香蕉", "橙子", "梨", "葡萄", "草莓", "西瓜", "芒果", "芭乐", "奇异果"},
		VegetableKeywords: []string{"青菜", "白菜", "菠菜", "萝卜", "土豆", "番茄", "黄瓜", "茄子", "西兰花"},
		KeywordMap: map[string][]string{
			"禽类": {"鸡", "鸭", "鹅", "鸽子", "鸡肉", "鸭肉", "土鸡", "走地鸡"},
			"肉类": {"猪肉", "牛肉", "羊肉", "肉"},
			"海鲜": {"鱼", "虾", "蟹", "贝", "海鲜"},
			"点心": {"包子", "饺子", "馄饨", "糕点", "生煎包", "水饺"},
		},
		GenericFruitWords:     []string{"吃", "鲜", "甜", "新鲜", "水果", "果"},
		GenericVegetableWords: []string{"菜", "素", "蔬菜", "青菜"},
	}
}

// InferCategory guesses the product category a free-text query is about.
// It walks a fixed ladder from precise to speculative: product-name
// containment, fruit/vegetable keywords, literal category names, the
// keyword map, generic cue words, and finally character overlap with
// category names. Returns "" when nothing sticks.
func (c *Catalog) InferCategory(query string) string {
	if query == "" {
		return ""
	}
	q := strings.ToLower(query)

	// 0. A known product name inside the query pins its category.
	for _, e := range c.entries {
		name := strings.ToLower(e.Name)
		if name == "" {
			continue
		}
		if strings.Contains(q, name) || strings.Contains(name, q) {
			return e.Category
		}
	}

	for _, kw := range c.hints.FruitKeywords {
		if strings.Contains(q, kw) {
			return "水果"
		}
	}
	for _, kw := range c.hints.VegetableKeywords {
		if strings.Contains(q, kw) {
			return "蔬菜"
		}
	}

	// Sorted category order keeps tie-breaks stable across runs.
	categories := c.categoryNames()
	for _, category := range categories {
		if category != "" && strings.Contains(q, strings.ToLower(category)) {
			return category
		}
	}

	keywordCategories := make([]string, 0, len(c.hints.KeywordMap))
	for category := range c.hints.KeywordMap {
		keywordCategories = append(keywordCategories, category)
	}
	sort.Strings(keywordCategories)

	bestCategory, bestScore := "", 0
	for _, category := range keywordCategories {
		score := 0
		for _, kw := range c.hints.KeywordMap[category] {
			if strings.Contains(q, kw) {
				score++
			}
		}
		if score > bestScore {
			bestCategory, bestScore = category, score
		}
	}
	if bestCategory != "" {
		slog.Debug("category inferred from keyword map", "query", query, "category", bestCategory)
		return bestCategory
	}

	for _, w := range c.hints.GenericFruitWords {
		if strings.Contains(q, w) {
			return "水果"
		}
	}
	for _, w := range c.hints.GenericVegetableWords {
		if strings.Contains(q, w) {
			return "蔬菜"
		}
	}

	// Last resort: character overlap with category names.
	queryRunes := make(map[rune]struct{})
	for _, r := range q {
		queryRunes[r] = struct{}{}
	}
	bestCategory, bestScore = "", 0
	for _, category := range categories {
		overlap := 0
		for _, r := range strings.ToLower(category) {
			if _, ok := queryRunes[r]; ok {
				overlap++
			}
		}
		if overlap > bestScore {
			bestCategory, bestScore = category, overlap
		}
	}
	return bestCategory
}

// categoryNames returns the catalog's category names in sorted order.
func (c *Catalog) categoryNames() []string {
	names := make([]string, 0, len(c.byCategory))
	for category := range c.byCategory {
		names = append(names, category)
	}
	sort.Strings(names)
	return names
}
