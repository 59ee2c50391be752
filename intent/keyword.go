package intent

import (
	"log/slog"
	"strings"
)

// KeywordSet binds one label to its trigger keywords.
type KeywordSet struct {
	Label    Label    `mapstructure:"label" yaml:"label"`
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
}

// DefaultKeywordSets is the stock keyword table for the fallback tier.
// Table order breaks score ties, so the more specific intents come first.
func DefaultKeywordSets() []KeywordSet {
	return []KeywordSet{
		{Label: RefundRequest, Keywords: []string{"退货", "退款", "退钱"}},
		{Label: InquiryPolicy, Keywords: []string{"政策", "规定", "配送", "运费", "付款", "支付", "取货"}},
		{Label: InquiryAvailability, Keywords: []string{"有吗", "有没有", "还有", "卖不卖", "卖不", "有不", "卖吗", "有不有", "有货"}},
		{Label: InquiryPriceOrBuy, Keywords: []string{"多少钱", "价格", "价钱", "怎么卖", "售价", "买", "要"}},
		{Label: RequestRecommendation, Keywords: []string{"推荐", "介绍", "好吃", "值得", "特色", "当季"}},
		{Label: WhatDoYouSell, Keywords: []string{"卖什么", "有什么", "商品", "产品", "菜单", "列表"}},
		{Label: IdentityQuery, Keywords: []string{"你是", "名字", "机器人", "ai", "助手"}},
		{Label: Greeting, Keywords: []string{"你好", "您好", "hi", "hello", "嗨"}},
	}
}

// KeywordClassifier is tier 3, the last resort before `unknown`: it counts
// configured keyword occurrences per label and picks the highest nonzero
// score.
type KeywordClassifier struct {
	table []KeywordSet
}

// NewKeywordClassifier builds the tier. Passing nil uses the default
// table.
func NewKeywordClassifier(table []KeywordSet) *KeywordClassifier {
	if table == nil {
		table = DefaultKeywordSets()
	}
	return &KeywordClassifier{table: table}
}

// Classify counts keyword hits per label; the best nonzero label wins with
// a fixed middling confidence. Ties keep the earlier table entry.
func (c *KeywordClassifier) Classify(text string) (Label, float32, bool) {
	clean := strings.ToLower(strings.TrimSpace(text))
	if clean == "" {
		return Unknown, 0, false
	}

	best, bestScore := Unknown, 0
	for _, set := range c.table {
		score := 0
		for _, kw := range set.Keywords {
			if strings.Contains(clean, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = set.Label, score
		}
	}
	if bestScore == 0 {
		return Unknown, 0, false
	}
	slog.Debug("keyword tier matched", "label", best, "score", bestScore)
	return best, 0.6, true
}
