package match

import "log/slog"

// DecisionKind is the outcome of the disambiguation policy.
type DecisionKind int

const (
	// NoMatch means no candidate survived the acceptance threshold.
	NoMatch DecisionKind = iota
	// SingleMatch means one candidate can be answered directly.
	SingleMatch
	// Clarify means the user must pick among near-tied candidates.
	Clarify
)

// Option is one selectable clarification choice.
type Option struct {
	// DisplayText is the human-readable product display name.
	DisplayText string
	// Payload is the opaque catalog key the caller sends back on
	// selection.
	Payload string
}

// Decision is the policy output.
type Decision struct {
	Kind      DecisionKind
	Candidate *Candidate // set for SingleMatch
	Options   []Option   // set for Clarify
}

// Policy decides between answering directly and asking the user to
// disambiguate. The gate is asymmetric on purpose: wrongly auto-selecting
// among near-ties costs more than one extra clarification round.
type Policy struct {
	// DominantThreshold is the minimum top score for skipping
	// clarification.
	DominantThreshold float64
	// SignificantDifference is how far the top score must lead the
	// runner-up.
	SignificantDifference float64
	// CandidateThreshold trims weak entries from the clarification list
	// when at least two strong ones remain.
	CandidateThreshold float64
	// MaxOptions caps the clarification list.
	MaxOptions int
}

// Decide maps a ranked candidate list to a decision.
//
// Candidates are deduplicated by display name first: multiple
// specifications of the same named product are one choice, not several.
// With one distinct candidate the answer is direct. With more, the top
// candidate wins only when its score clears DominantThreshold and leads
// the runner-up by more than SignificantDifference; otherwise the user is
// asked to choose.
func (p Policy) Decide(candidates []Candidate) Decision {
	if len(candidates) == 0 {
		return Decision{Kind: NoMatch}
	}

	distinct := dedupeByDisplayName(candidates)
	if len(distinct) == 1 {
		return Decision{Kind: SingleMatch, Candidate: &distinct[0]}
	}

	top, second := distinct[0], distinct[1]
	if top.Score.Aggregate > p.DominantThreshold &&
		top.Score.Aggregate-second.Score.Aggregate > p.SignificantDifference {
		slog.Debug("dominant match selected without clarification",
			"top", top.Key, "score", top.Score.Aggregate, "second", second.Score.Aggregate)
		return Decision{Kind: SingleMatch, Candidate: &distinct[0]}
	}

	options := clarifyOptions(distinct, p.CandidateThreshold, p.MaxOptions)
	if len(options) <= 1 {
		// Thinning collapsed the choice back to one product.
		return Decision{Kind: SingleMatch, Candidate: &distinct[0]}
	}
	return Decision{Kind: Clarify, Options: options}
}

func dedupeByDisplayName(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.Entry.DisplayName]; dup {
			continue
		}
		seen[c.Entry.DisplayName] = struct{}{}
		out = append(out, c)
	}
	return out
}

// clarifyOptions builds the selectable list. Entries below the candidate
// threshold are dropped only while at least two strong options remain:
// the threshold thins noisy tails, it never suppresses a genuine tie
// between weak matches.
func clarifyOptions(distinct []Candidate, threshold float64, maxOptions int) []Option {
	strong := 0
	for _, c := range distinct {
		if c.Score.Aggregate >= threshold {
			strong++
		}
	}

	var options []Option
	for _, c := range distinct {
		if maxOptions > 0 && len(options) >= maxOptions {
			break
		}
		if strong >= 2 && c.Score.Aggregate < threshold {
			continue
		}
		options = append(options, Option{
			DisplayText: c.Entry.DisplayName,
			Payload:     c.Key,
		})
	}
	return options
}
