package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineAllSignals(t *testing.T) {
	w := DefaultWeights()
	sub := SubScores{
		Lexical:  fracPtr(1.0),
		Semantic: fracPtr(0.5),
		Keyword:  fracPtr(0.0),
		Phrase:   fracPtr(1.0),
	}

	overall, ok := w.Combine(sub)
	require.True(t, ok)
	// 0.3*1.0 + 0.3*0.5 + 0.2*0.0 + 0.2*1.0 = 0.65
	assert.InDelta(t, 0.65, overall.Float(), 1e-9)
}

func TestCombineRenormalizesAbsentSignals(t *testing.T) {
	w := DefaultWeights()
	sub := SubScores{Lexical: fracPtr(0.8)}

	overall, ok := w.Combine(sub)
	require.True(t, ok)
	// Only one signal present: the mean is that signal's value.
	assert.InDelta(t, 0.8, overall.Float(), 1e-9)

	sub = SubScores{Lexical: fracPtr(1.0), Phrase: fracPtr(0.0)}
	overall, ok = w.Combine(sub)
	require.True(t, ok)
	// Renormalized over 0.3 and 0.2: 0.3/0.5 = 0.6.
	assert.InDelta(t, 0.6, overall.Float(), 1e-9)
}

func TestCombineNoSignals(t *testing.T) {
	overall, ok := DefaultWeights().Combine(SubScores{})
	assert.False(t, ok)
	assert.Zero(t, overall.Float())
}

func TestCombineIgnoresZeroWeightSignals(t *testing.T) {
	w := Weights{Lexical: 1.0}
	sub := SubScores{Lexical: fracPtr(0.3), Semantic: fracPtr(1.0)}

	overall, ok := w.Combine(sub)
	require.True(t, ok)
	assert.InDelta(t, 0.3, overall.Float(), 1e-9)
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	negative := Weights{Lexical: -0.1, Semantic: 0.5}
	assert.Error(t, negative.Validate())

	allZero := Weights{}
	assert.Error(t, allZero.Validate())
}

func TestSubScoresAny(t *testing.T) {
	assert.False(t, SubScores{}.Any())
	assert.True(t, SubScores{Keyword: fracPtr(0.2)}.Any())
}
