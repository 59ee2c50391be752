package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() Policy {
	return Policy{
		DominantThreshold:     0.80,
		SignificantDifference: 0.15,
		CandidateThreshold:    0.65,
		MaxOptions:            3,
	}
}

func candidate(name string, score float64, order int) Candidate {
	return Candidate{
		Key:   name,
		Entry: entry(name),
		Score: Score{Aggregate: score},
		order: order,
	}
}

func TestPolicy_NoCandidates(t *testing.T) {
	d := testPolicy().Decide(nil)
	assert.Equal(t, NoMatch, d.Kind)
}

func TestPolicy_SingleCandidate(t *testing.T) {
	d := testPolicy().Decide([]Candidate{candidate("草莓", 0.9, 0)})
	require.Equal(t, SingleMatch, d.Kind)
	assert.Equal(t, "草莓", d.Candidate.Key)
}

func TestPolicy_DominantTopWins(t *testing.T) {
	d := testPolicy().Decide([]Candidate{
		candidate("草莓", 0.95, 0),
		candidate("蓝莓", 0.50, 1),
	})
	require.Equal(t, SingleMatch, d.Kind)
	assert.Equal(t, "草莓", d.Candidate.Key)
}

func TestPolicy_NearTieClarifies(t *testing.T) {
	d := testPolicy().Decide([]Candidate{
		candidate("台湾香瓜", 0.45, 0),
		candidate("韩国香瓜", 0.45, 1),
	})
	require.Equal(t, Clarify, d.Kind)
	require.Len(t, d.Options, 2)
	assert.Equal(t, "台湾香瓜", d.Options[0].DisplayText)
	assert.Equal(t, "韩国香瓜", d.Options[1].DisplayText)
}

func TestPolicy_HighButCloseClarifies(t *testing.T) {
	// Both above dominant but the gap is insignificant.
	d := testPolicy().Decide([]Candidate{
		candidate("台湾香瓜", 0.90, 0),
		candidate("韩国香瓜", 0.85, 1),
	})
	assert.Equal(t, Clarify, d.Kind)
}

func TestPolicy_ThresholdTrimsWeakTail(t *testing.T) {
	// Two strong options plus one weak one: the weak tail is dropped.
	d := testPolicy().Decide([]Candidate{
		candidate("台湾香瓜", 0.75, 0),
		candidate("韩国香瓜", 0.70, 1),
		candidate("哈密瓜", 0.45, 2),
	})
	require.Equal(t, Clarify, d.Kind)
	require.Len(t, d.Options, 2)
	for _, opt := range d.Options {
		assert.NotEqual(t, "哈密瓜", opt.DisplayText)
	}
}

func TestPolicy_WeakTieStillClarifies(t *testing.T) {
	// With no strong candidate the threshold must not suppress a genuine
	// tie between weak matches.
	d := testPolicy().Decide([]Candidate{
		candidate("台湾香瓜", 0.45, 0),
		candidate("韩国香瓜", 0.44, 1),
	})
	require.Equal(t, Clarify, d.Kind)
	assert.Len(t, d.Options, 2)
}

func TestPolicy_MaxOptionsCap(t *testing.T) {
	d := testPolicy().Decide([]Candidate{
		candidate("a", 0.5, 0),
		candidate("b", 0.5, 1),
		candidate("c", 0.5, 2),
		candidate("d", 0.5, 3),
	})
	require.Equal(t, Clarify, d.Kind)
	assert.Len(t, d.Options, 3)
}

func TestPolicy_DedupeByDisplayName(t *testing.T) {
	// Two specifications of the same named product are one choice.
	a := Candidate{Key: "草莓1", Entry: entry("草莓"), Score: Score{Aggregate: 0.7}}
	b := Candidate{Key: "草莓2", Entry: entry("草莓"), Score: Score{Aggregate: 0.6}}
	d := testPolicy().Decide([]Candidate{a, b})
	require.Equal(t, SingleMatch, d.Kind)
	assert.Equal(t, "草莓1", d.Candidate.Key)
}
