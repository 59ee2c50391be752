package intent

import (
	"log/slog"
	"regexp"
	"strings"
)

// Rule binds one pattern to a label. Rules are evaluated in slice order;
// the first match wins.
type Rule struct {
	Label   Label
	Pattern *regexp.Regexp
}

// RuleSpec is the externalized form of a Rule, loadable from config.
type RuleSpec struct {
	Label   string `mapstructure:"label" yaml:"label"`
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
}

// CompileRules turns externalized rule data into an ordered rule table.
// Invalid patterns are skipped with a warning so one bad config line
// cannot take the whole tier down.
func CompileRules(specs []RuleSpec) []Rule {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile(spec.Pattern)
		if err != nil {
			slog.Warn("skipping invalid intent rule", "pattern", spec.Pattern, "error", err)
			continue
		}
		rules = append(rules, Rule{Label: Label(spec.Label), Pattern: re})
	}
	return rules
}

// DefaultRuleSpecs is the stock ordered rule table. Greetings and identity
// questions come first: they must win before any availability pattern or a
// later tier can misread them as product talk.
func DefaultRuleSpecs() []RuleSpec {
	return []RuleSpec{
		{Label: string(Greeting), Pattern: `^(你好|您好|hi|hello|嗨|早上好|中午好|下午好|晚上好|在吗|在不在)[呀啊么吗]?[\?？!！。~]*$`},
		{Label: string(IdentityQuery), Pattern: `你是(谁|什么|机器人|ai|助手|真人|chatgpt)`},
		{Label: string(IdentityQuery), Pattern: `(介绍|说说)(一?下)?(你)?自己`},
		{Label: string(IdentityQuery), Pattern: `你叫什么(名字)?`},
		{Label: string(RefundRequest), Pattern: `(我要|申请|想要?)退(货|款)`},
		{Label: string(RefundRequest), Pattern: `退(货|款)(申请|流程)?[\?？!！。]*$`},
		{Label: string(InquiryPolicy), Pattern: `(退货|退款|配送|运费|支付|付款|取货|送货)(政策|方式|流程|规定|地址)`},
		{Label: string(InquiryPolicy), Pattern: `怎么(退货|退款|配送|支付|付款|取货)`},
		{Label: string(InquiryPolicy), Pattern: `质量问题怎么办`},
		{Label: string(WhatDoYouSell), Pattern: `(你们)?(卖|有)(什么|哪些|啥)(产品|商品|东西)`},
		{Label: string(WhatDoYouSell), Pattern: `(商品|产品)列表|菜单`},
		{Label: string(WhatDoYouSell), Pattern: `都有(什么|哪些|啥)`},
		{Label: string(RequestRecommendation), Pattern: `(推荐|介绍)(点|一些|几样)?(好吃的|东西|产品)`},
		{Label: string(RequestRecommendation), Pattern: `什么(比较好|值得买|好吃|特色)`},
		{Label: string(RequestRecommendation), Pattern: `有什么(推荐|好的|特色)`},
		{Label: string(RequestRecommendation), Pattern: `当季有什么`},
		{Label: string(InquiryPriceOrBuy), Pattern: `(多少钱|什么价|几多钱|怎么卖|售价|价钱|价格)`},
		{Label: string(InquiryPriceOrBuy), Pattern: `(我要|来|买)(一斤|一个|一份|一袋|一箱|一磅|一只)`},
		{Label: string(InquiryAvailability), Pattern: `(卖不卖|有没有|有不有|有木有|卖不|有不|卖吗|有吗)`},
		{Label: string(InquiryAvailability), Pattern: `(能买到|买得到|有卖|在卖|有货|现货)`},
		{Label: string(InquiryAvailability), Pattern: `有[\?？]$`},
		{Label: string(InquiryAvailability), Pattern: `卖.{0,6}吗[\?？]?$`},
	}
}

// pureGreetings are checked by literal equality before any pattern runs.
var pureGreetings = map[string]struct{}{
	"你好": {}, "您好": {}, "hi": {}, "hello": {}, "嗨": {}, "在吗": {},
}

// RuleClassifier is tier 1: an ordered regex table. Zero allocation per
// miss, ~0 latency, and the only tier allowed to claim high confidence.
type RuleClassifier struct {
	rules []Rule
}

// NewRuleClassifier builds the tier from an ordered rule table. Passing
// nil uses the default table.
func NewRuleClassifier(rules []Rule) *RuleClassifier {
	if rules == nil {
		rules = CompileRules(DefaultRuleSpecs())
	}
	return &RuleClassifier{rules: rules}
}

// Classify matches the lowercased, trimmed text against the rule table in
// order. Patterns see the original punctuation: several colloquial forms
// ("草莓有？") are only recognizable by their trailing question mark.
func (c *RuleClassifier) Classify(text string) (Label, float32, bool) {
	clean := strings.ToLower(strings.TrimSpace(text))
	if clean == "" {
		return Unknown, 0, false
	}
	if _, ok := pureGreetings[clean]; ok {
		return Greeting, 0.95, true
	}
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(clean) {
			slog.Debug("rule tier matched", "label", rule.Label, "pattern", rule.Pattern.String())
			return rule.Label, 0.95, true
		}
	}
	return Unknown, 0, false
}
