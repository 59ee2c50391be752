package intent

import "strings"

// Tier is one named stage of the cascade. The name feeds logs and metrics.
type Tier struct {
	Name       string
	Classifier Classifier
}

// Cascade tries its tiers in strict order and returns the first positive
// answer. A tier is consulted only when every earlier tier returned no
// opinion; a higher tier's answer is never overridden.
type Cascade struct {
	tiers []Tier
}

// NewCascade builds a cascade from ordered tiers.
func NewCascade(tiers ...Tier) *Cascade {
	return &Cascade{tiers: tiers}
}

// DefaultCascade wires the standard three tiers: rules, naive Bayes,
// keywords.
func DefaultCascade(bayesThreshold float64) *Cascade {
	return NewCascade(
		Tier{Name: "rule", Classifier: NewRuleClassifier(nil)},
		Tier{Name: "bayes", Classifier: NewBayesClassifier(bayesThreshold)},
		Tier{Name: "keyword", Classifier: NewKeywordClassifier(nil)},
	)
}

// Classify runs the cascade. When every tier declines, the result is
// Unknown with tier "none", which tells the caller to invoke its
// external fallback.
func (c *Cascade) Classify(text string) (Label, float32, string) {
	if strings.TrimSpace(text) == "" {
		return Unknown, 0, "none"
	}
	for _, tier := range c.tiers {
		if label, confidence, ok := tier.Classifier.Classify(text); ok {
			return label, confidence, tier.Name
		}
	}
	return Unknown, 0, "none"
}
