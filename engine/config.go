package engine

import (
	"time"

	"github.com/hubgoodfood/freshchat/intent"
	"github.com/hubgoodfood/freshchat/match"
)

// Config carries every tunable of the resolution engine. Zero values are
// replaced by the defaults below at construction.
type Config struct {
	// MinAcceptableMatchScore is the ranker's acceptance threshold.
	MinAcceptableMatchScore float64 `mapstructure:"min_acceptable_match_score"`
	// ClarificationCandidateThreshold trims weak clarification options.
	ClarificationCandidateThreshold float64 `mapstructure:"clarification_candidate_threshold"`
	// DominantMatchThreshold and SignificantScoreDifference gate direct
	// answers when several candidates survive.
	DominantMatchThreshold     float64 `mapstructure:"dominant_match_threshold"`
	SignificantScoreDifference float64 `mapstructure:"significant_score_difference"`
	// MaxClarificationOptions caps the clarification list.
	MaxClarificationOptions int `mapstructure:"max_clarification_options"`

	// Weights and CombineMode configure the similarity scorer.
	Weights     match.Weights
	CombineMode match.CombineMode

	// BayesConfidenceThreshold gates the statistical tier.
	BayesConfidenceThreshold float64 `mapstructure:"bayes_confidence_threshold"`

	// SessionHistoryLimit bounds per-user turn history.
	SessionHistoryLimit int `mapstructure:"session_history_limit"`
	// PureFollowUpKeywords and FollowUpKeywords drive follow-up rewriting.
	PureFollowUpKeywords []string `mapstructure:"pure_follow_up_keywords"`
	FollowUpKeywords     []string `mapstructure:"follow_up_keywords"`

	// Rules and Keywords override the classifier tables; nil keeps the
	// defaults.
	Rules    []intent.RuleSpec
	Keywords []intent.KeywordSet

	// MaxSuggestions caps recommendation lists.
	MaxSuggestions int `mapstructure:"max_suggestions"`

	// CacheCapacity > 0 enables the intent decision cache.
	CacheCapacity int           `mapstructure:"cache_capacity"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		MinAcceptableMatchScore:         0.4,
		ClarificationCandidateThreshold: 0.65,
		DominantMatchThreshold:          0.80,
		SignificantScoreDifference:      0.15,
		MaxClarificationOptions:         3,
		Weights:                         match.DefaultWeights(),
		CombineMode:                     match.CombineWeightedMax,
		BayesConfidenceThreshold:        0.3,
		SessionHistoryLimit:             20,
		MaxSuggestions:                  3,
		CacheCapacity:                   512,
		CacheTTL:                        5 * time.Minute,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.MinAcceptableMatchScore <= 0 {
		c.MinAcceptableMatchScore = d.MinAcceptableMatchScore
	}
	if c.ClarificationCandidateThreshold <= 0 {
		c.ClarificationCandidateThreshold = d.ClarificationCandidateThreshold
	}
	if c.DominantMatchThreshold <= 0 {
		c.DominantMatchThreshold = d.DominantMatchThreshold
	}
	if c.SignificantScoreDifference <= 0 {
		c.SignificantScoreDifference = d.SignificantScoreDifference
	}
	if c.MaxClarificationOptions <= 0 {
		c.MaxClarificationOptions = d.MaxClarificationOptions
	}
	if c.Weights == (match.Weights{}) {
		c.Weights = d.Weights
	}
	if c.BayesConfidenceThreshold <= 0 {
		c.BayesConfidenceThreshold = d.BayesConfidenceThreshold
	}
	if c.SessionHistoryLimit <= 0 {
		c.SessionHistoryLimit = d.SessionHistoryLimit
	}
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = d.MaxSuggestions
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
}
