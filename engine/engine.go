// Package engine resolves free-text customer utterances into an intent
// label plus the best-matching catalog entry, a clarification request, or
// a fallback signal for the caller's LLM collaborator.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hubgoodfood/freshchat/cache"
	"github.com/hubgoodfood/freshchat/catalog"
	"github.com/hubgoodfood/freshchat/intent"
	"github.com/hubgoodfood/freshchat/match"
	"github.com/hubgoodfood/freshchat/metrics"
	"github.com/hubgoodfood/freshchat/nlp"
	"github.com/hubgoodfood/freshchat/session"
)

// ErrCatalogEmpty reports that no catalog entries are loaded. Lookups fail
// safe with a "not ready" signal instead of pretending nothing matched.
var ErrCatalogEmpty = errors.New("catalog is empty")

// ResultKind is the terminal shape of a resolution.
type ResultKind int

const (
	// ResultAnswer carries an intent and, for catalog intents, the
	// single matched entry.
	ResultAnswer ResultKind = iota
	// ResultClarify asks the user to pick among near-tied candidates.
	ResultClarify
	// ResultFallback tells the caller to invoke its external LLM
	// collaborator with the original utterance.
	ResultFallback
)

func (k ResultKind) String() string {
	switch k {
	case ResultAnswer:
		return "answer"
	case ResultClarify:
		return "clarify"
	default:
		return "fallback"
	}
}

// Result is the outcome of one resolution.
type Result struct {
	Kind       ResultKind
	Intent     intent.Label
	MatchedKey string
	Entry      *catalog.Entry
	Score      *match.Score
	// Options is the clarification list for ResultClarify.
	Options []match.Option
	// Suggestions accompany recommendation answers.
	Suggestions []*catalog.Entry
	// Quantity is the amount mentioned in catalog answers, 1 when the
	// utterance names none.
	Quantity int
	// RewrittenQuery is the query after follow-up expansion; equals the
	// input when no rewrite applied.
	RewrittenQuery string
}

// recommender is the optional catalog capability behind recommendation
// answers.
type recommender interface {
	Seasonal(limit int, category string) []*catalog.Entry
}

type cachedDecision struct {
	label      intent.Label
	confidence float32
	tier       string
}

// Engine is the resolution façade. Construct one per catalog and share it
// across requests; Resolve is safe for concurrent use.
type Engine struct {
	cfg      Config
	provider catalog.Provider
	cascade  *intent.Cascade
	ranker   *match.Ranker
	policy   match.Policy
	sessions *session.Resolver
	cache    *cache.LRU[string, cachedDecision]
	metrics  *metrics.Exporter
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMetrics attaches a Prometheus exporter.
func WithMetrics(m *metrics.Exporter) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSessionStore substitutes the session store (default: in-memory).
func WithSessionStore(s session.Store) Option {
	return func(e *Engine) {
		e.sessions = session.NewResolver(s, e.sessionConfig())
	}
}

// WithCascade substitutes the classifier cascade entirely.
func WithCascade(c *intent.Cascade) Option {
	return func(e *Engine) { e.cascade = c }
}

// New builds an engine around a catalog provider. The provider may still
// be empty at construction; Resolve reports ErrCatalogEmpty until entries
// arrive.
func New(cfg Config, provider catalog.Provider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("catalog provider is required")
	}
	cfg.applyDefaults()

	e := &Engine{
		cfg:      cfg,
		provider: provider,
		ranker:   match.NewRanker(match.NewScorer(cfg.Weights, cfg.CombineMode)),
		policy: match.Policy{
			DominantThreshold:     cfg.DominantMatchThreshold,
			SignificantDifference: cfg.SignificantScoreDifference,
			CandidateThreshold:    cfg.ClarificationCandidateThreshold,
			MaxOptions:            cfg.MaxClarificationOptions,
		},
	}
	e.sessions = session.NewResolver(nil, e.sessionConfig())

	if cfg.Rules != nil || cfg.Keywords != nil {
		var rules []intent.Rule
		if cfg.Rules != nil {
			rules = intent.CompileRules(cfg.Rules)
		} else {
			rules = intent.CompileRules(intent.DefaultRuleSpecs())
		}
		e.cascade = intent.NewCascade(
			intent.Tier{Name: "rule", Classifier: intent.NewRuleClassifier(rules)},
			intent.Tier{Name: "bayes", Classifier: intent.NewBayesClassifier(cfg.BayesConfidenceThreshold)},
			intent.Tier{Name: "keyword", Classifier: intent.NewKeywordClassifier(cfg.Keywords)},
		)
	} else {
		e.cascade = intent.DefaultCascade(cfg.BayesConfidenceThreshold)
	}

	if cfg.CacheCapacity > 0 {
		e.cache = cache.NewLRU[string, cachedDecision](cfg.CacheCapacity, cfg.CacheTTL)
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) sessionConfig() session.Config {
	sc := session.DefaultConfig()
	sc.HistoryLimit = e.cfg.SessionHistoryLimit
	if e.cfg.PureFollowUpKeywords != nil {
		sc.PureFollowUps = e.cfg.PureFollowUpKeywords
	}
	if e.cfg.FollowUpKeywords != nil {
		sc.ReferentialKeywords = e.cfg.FollowUpKeywords
	}
	return sc
}

// Resolve turns one utterance into a resolution result. The context is
// accepted for interface symmetry with external stores; the hot path does
// no I/O and never blocks beyond the one-time statistical model load.
func (e *Engine) Resolve(_ context.Context, utterance, userID string) (*Result, error) {
	start := time.Now()

	raw := strings.TrimSpace(utterance)
	if raw == "" || nlp.Normalize(raw) == "" {
		// Malformed input is an unknown, not an error.
		e.metrics.RecordResolution("malformed", time.Since(start))
		return &Result{Kind: ResultFallback, Intent: intent.Unknown, RewrittenQuery: raw}, nil
	}

	if len(e.provider.AllEntries()) == 0 {
		e.metrics.RecordResolution("not_ready", time.Since(start))
		return nil, ErrCatalogEmpty
	}

	sctx, release := e.sessions.Acquire(userID)
	defer release()

	// A bare price question right after the assistant surfaced an entity
	// refers to that entity, even when it was never *matched*.
	if mention := sctx.LastBotMention; mention != nil && sctx.LastMatched == nil && e.sessions.IsPureFollowUp(raw) {
		if entry, ok := e.provider.Get(mention.Key); ok {
			return e.answerSingle(sctx, raw, raw, intent.InquiryPriceOrBuy, entry, nil, start), nil
		}
	}

	query, pure := e.sessions.Rewrite(raw, sctx)
	if pure {
		// A pure price follow-up resolves against the last matched entry
		// without another classify/rank round trip.
		if entry, ok := e.provider.Get(sctx.LastMatched.Key); ok {
			return e.answerSingle(sctx, raw, query, intent.InquiryPriceOrBuy, entry, nil, start), nil
		}
	}

	label, confidence, tier := e.classify(query)
	e.metrics.RecordTier(tier, string(label))
	slog.Debug("intent classified",
		"query", query, "label", label, "confidence", confidence, "tier", tier)

	if label.NeedsCatalog() || label == intent.Unknown {
		if res := e.resolveCatalog(sctx, raw, query, label, start); res != nil {
			return res, nil
		}
	}

	return e.answerDirect(sctx, raw, query, label, start), nil
}

// classify runs the cascade behind the decision cache.
func (e *Engine) classify(query string) (intent.Label, float32, string) {
	if e.cache == nil {
		return e.cascade.Classify(query)
	}
	key := cacheKey(query)
	if d, ok := e.cache.Get(key); ok {
		e.metrics.RecordCache(true)
		return d.label, d.confidence, d.tier
	}
	e.metrics.RecordCache(false)
	label, confidence, tier := e.cascade.Classify(query)
	e.cache.Set(key, cachedDecision{label: label, confidence: confidence, tier: tier})
	return label, confidence, tier
}

// resolveCatalog runs entity extraction, ranking and disambiguation.
// Returns nil when an unknown label found nothing to match, handing the
// turn back to the fallback path.
func (e *Engine) resolveCatalog(sctx *session.Context, raw, query string, label intent.Label, start time.Time) *Result {
	entity := intent.ExtractProductQuery(query, e.provider)
	candidates := e.ranker.Rank(nlp.Normalize(entity), e.provider, e.cfg.MinAcceptableMatchScore)
	decision := e.policy.Decide(candidates)

	switch decision.Kind {
	case match.SingleMatch:
		e.metrics.RecordDecision("single_match")
		matched := label
		if matched == intent.Unknown {
			// A bare product name is an availability probe.
			matched = intent.InquiryAvailability
		}
		return e.answerSingle(sctx, raw, query, matched, decision.Candidate.Entry, &decision.Candidate.Score, start)

	case match.Clarify:
		e.metrics.RecordDecision("clarify")
		e.sessions.Commit(sctx, session.Outcome{Query: raw, Intent: label})
		e.metrics.RecordResolution("clarify", time.Since(start))
		return &Result{
			Kind:           ResultClarify,
			Intent:         label,
			Options:        decision.Options,
			RewrittenQuery: query,
		}

	default: // match.NoMatch
		e.metrics.RecordDecision("no_match")
		if label == intent.Unknown {
			return nil
		}
		// A catalog intent with no catalog match still falls back, but
		// keeps the classified intent so the caller can phrase its
		// "we don't carry that" answer.
		e.sessions.Commit(sctx, session.Outcome{Query: raw, Intent: label})
		e.metrics.RecordResolution("fallback", time.Since(start))
		return &Result{Kind: ResultFallback, Intent: label, RewrittenQuery: query}
	}
}

// answerSingle finalizes a single-entry answer: popularity, session
// commit, metrics.
func (e *Engine) answerSingle(sctx *session.Context, raw, query string, label intent.Label, entry *catalog.Entry, score *match.Score, start time.Time) *Result {
	entry.AddPopularity(1)
	e.sessions.Commit(sctx, session.Outcome{
		Query:   raw,
		Intent:  label,
		Matched: entry,
		Mention: session.MentionFor(entry),
	})
	e.metrics.RecordResolution("answer", time.Since(start))
	return &Result{
		Kind:           ResultAnswer,
		Intent:         label,
		MatchedKey:     entry.Key,
		Entry:          entry,
		Score:          score,
		// Quantity comes from the user's own words. The rewritten query
		// may carry the subject's specification ("3-4个"), which must not
		// read as an order amount.
		Quantity:       nlp.QuantityIn(raw),
		RewrittenQuery: query,
	}
}

// answerDirect finalizes non-catalog intents and the unknown fallback.
func (e *Engine) answerDirect(sctx *session.Context, raw, query string, label intent.Label, start time.Time) *Result {
	res := &Result{Kind: ResultAnswer, Intent: label, RewrittenQuery: query}
	out := session.Outcome{Query: raw, Intent: label, KeepContext: true}

	switch label {
	case intent.Unknown:
		res.Kind = ResultFallback
		out.KeepContext = false
	case intent.RequestRecommendation:
		if rec, ok := e.provider.(recommender); ok {
			category := ""
			if c, ok := e.provider.(*catalog.Catalog); ok {
				category = c.InferCategory(query)
			}
			res.Suggestions = rec.Seasonal(e.cfg.MaxSuggestions, category)
			if len(res.Suggestions) == 1 {
				out.Mention = session.MentionFor(res.Suggestions[0])
			}
		}
	}

	e.sessions.Commit(sctx, out)
	e.metrics.RecordResolution(res.Kind.String(), time.Since(start))
	return res
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(nlp.Normalize(query)))
	return hex.EncodeToString(sum[:])
}
