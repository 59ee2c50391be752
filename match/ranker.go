package match

import (
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hubgoodfood/freshchat/catalog"
	"github.com/hubgoodfood/freshchat/nlp"
)

// Candidate is one ranked catalog entry.
type Candidate struct {
	Key   string
	Entry *catalog.Entry
	Score Score

	// order is the entry's catalog insertion index, the deterministic
	// tie-break for equal scores.
	order int
}

// defaultGreetings are inputs that must never be mistaken for product
// names, however well a greeting happens to overlap one.
var defaultGreetings = map[string]struct{}{
	"你好": {}, "您好": {}, "hello": {}, "hi": {}, "你好呀": {}, "你好吗": {},
	"在吗": {}, "你好么": {}, "早上好": {}, "中午好": {}, "下午好": {}, "晚上好": {},
	"早安": {}, "午安": {}, "晚安": {},
}

// Ranker runs the scorer over a catalog snapshot and produces a filtered,
// descending-sorted candidate list.
type Ranker struct {
	scorer    *Scorer
	greetings map[string]struct{}
}

// NewRanker builds a ranker around the given scorer.
func NewRanker(scorer *Scorer) *Ranker {
	return &Ranker{scorer: scorer, greetings: defaultGreetings}
}

// Rank scores queryNorm against every entry of the provider, drops scores
// below minScore, and sorts descending with insertion-order tie-break.
//
// An exact match on an entry's key, name or display name short-circuits to
// a single perfect candidate: the common "exact product name" case never
// pays for a full scan and is fully deterministic.
//
// Empty, punctuation-only and pure-greeting queries never match anything.
func (r *Ranker) Rank(queryNorm string, provider catalog.Provider, minScore float64) []Candidate {
	queryNorm = strings.TrimSpace(queryNorm)
	if queryNorm == "" || len(nlp.Tokenize(queryNorm)) == 0 {
		return nil
	}
	if _, greeting := r.greetings[queryNorm]; greeting {
		slog.Debug("greeting query skipped catalog matching", "query", queryNorm)
		return nil
	}

	entries := provider.AllEntries()

	for i, e := range entries {
		if queryNorm == e.Key ||
			queryNorm == nlp.Normalize(e.Name) ||
			queryNorm == nlp.Normalize(e.DisplayName) {
			return []Candidate{{
				Key:   e.Key,
				Entry: e,
				Score: Score{Aggregate: 1.0},
				order: i,
			}}
		}
	}

	var out []Candidate
	for i, e := range entries {
		sc := r.scorer.Score(queryNorm, e)
		if sc.Aggregate < minScore {
			continue
		}
		out = append(out, Candidate{Key: e.Key, Entry: e, Score: sc, order: i})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score.Aggregate != out[j].Score.Aggregate {
			return out[i].Score.Aggregate > out[j].Score.Aggregate
		}
		return out[i].order < out[j].order
	})

	// Single-character queries prefer entries that literally contain the
	// character over phonetic or set-overlap coincidences.
	if utf8.RuneCountInString(queryNorm) == 1 {
		out = containmentFirst(queryNorm, out)
	}

	slog.Debug("ranked catalog candidates", "query", queryNorm, "candidates", len(out))
	return out
}

func containmentFirst(queryNorm string, candidates []Candidate) []Candidate {
	direct := make([]Candidate, 0, len(candidates))
	var rest []Candidate
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Entry.Name), queryNorm) {
			direct = append(direct, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(direct, rest...)
}
