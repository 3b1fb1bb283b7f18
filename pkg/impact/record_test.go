package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

func TestNewRecordDerivesVerdict(t *testing.T) {
	cfg := DefaultConfig()
	p := Params{
		ChangeID:   1,
		QuestionID: 10,
		Sub:        SubScores{Lexical: fracPtr(0.9), Phrase: fracPtr(1.0)},
		Reason:     strPtr("matched all changed phrases"),
	}

	rec, err := NewRecord(p, cfg)
	require.NoError(t, err)
	// Renormalized mean of 0.9 (0.3) and 1.0 (0.2) = 0.94.
	assert.InDelta(t, 0.94, rec.OverallImpactScore.Float(), 1e-9)
	assert.True(t, rec.IsAffected)
	assert.Equal(t, LevelHigh, rec.ImpactLevel)
	assert.Equal(t, MethodRuleBased, rec.AnalysisMethod)
	require.NotNil(t, rec.AnalysisVersion)
	assert.Equal(t, "1.0", *rec.AnalysisVersion)
	assert.False(t, rec.AnalyzedAt.IsZero())

	// The derived verdict always passes its own validation.
	require.NoError(t, rec.Validate(cfg.Thresholds))
}

func TestNewRecordBelowCutoffNeedsNoReason(t *testing.T) {
	rec, err := NewRecord(Params{
		ChangeID:   1,
		AnswerID:   20,
		Sub:        SubScores{Lexical: fracPtr(0.2)},
	}, DefaultConfig())
	require.NoError(t, err)
	assert.False(t, rec.IsAffected)
	assert.Equal(t, LevelLow, rec.ImpactLevel)
	assert.Nil(t, rec.ImpactReason)
}

func TestNewRecordAffectedRequiresReason(t *testing.T) {
	p := Params{
		ChangeID:   1,
		QuestionID: 10,
		Sub:        SubScores{Lexical: fracPtr(0.9)},
	}
	_, err := NewRecord(p, DefaultConfig())
	assert.Error(t, err)

	empty := ""
	p.Reason = &empty
	_, err = NewRecord(p, DefaultConfig())
	assert.Error(t, err)
}

func TestNewRecordTargetValidation(t *testing.T) {
	cfg := DefaultConfig()

	_, err := NewRecord(Params{ChangeID: 0, QuestionID: 1}, cfg)
	assert.Error(t, err)

	_, err = NewRecord(Params{ChangeID: 1, QuestionID: -1}, cfg)
	assert.Error(t, err)

	// Targeting neither a question nor an answer is meaningless.
	_, err = NewRecord(Params{ChangeID: 1}, cfg)
	assert.Error(t, err)
}

func TestNewRecordValidatesConfidence(t *testing.T) {
	_, err := NewRecord(Params{
		ChangeID:   1,
		QuestionID: 1,
		Confidence: floatPtr(1.5),
	}, DefaultConfig())
	assert.Error(t, err)
}

func TestValidateCatchesTamperedVerdict(t *testing.T) {
	cfg := DefaultConfig()
	rec, err := NewRecord(Params{
		ChangeID:   1,
		QuestionID: 10,
		Sub:        SubScores{Lexical: fracPtr(0.9)},
		Reason:     strPtr("high lexical overlap"),
	}, cfg)
	require.NoError(t, err)

	tampered := *rec
	tampered.IsAffected = false
	assert.Error(t, tampered.Validate(cfg.Thresholds))

	tampered = *rec
	tampered.ImpactLevel = LevelLow
	assert.Error(t, tampered.Validate(cfg.Thresholds))

	tampered = *rec
	tampered.ImpactReason = nil
	assert.Error(t, tampered.Validate(cfg.Thresholds))
}

func TestParseLevelAndMethod(t *testing.T) {
	for _, tag := range []string{"none", "low", "medium", "high"} {
		_, ok := ParseLevel(tag)
		assert.True(t, ok, tag)
	}
	_, ok := ParseLevel("severe")
	assert.False(t, ok)

	for _, tag := range []string{"rule_based", "ml_model", "hybrid"} {
		_, ok := ParseMethod(tag)
		assert.True(t, ok, tag)
	}
	_, ok = ParseMethod("manual")
	assert.False(t, ok)
}

func TestRecordProjectionRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	rec, err := NewRecord(Params{
		ChangeID:   3,
		QuestionID: 7,
		Sub:        SubScores{Lexical: fracPtr(0.6), Keyword: fracPtr(0.4)},
		Reason:     strPtr("keyword overlap with changed text"),
		Confidence: floatPtr(0.8),
	}, cfg)
	require.NoError(t, err)
	rec.ImpactID = 42

	got, err := FromProjection(rec.Projection())
	require.NoError(t, err)
	assert.Equal(t, rec.ImpactID, got.ImpactID)
	assert.Equal(t, rec.ChangeID, got.ChangeID)
	assert.Equal(t, rec.QuestionID, got.QuestionID)
	assert.Equal(t, rec.IsAffected, got.IsAffected)
	assert.Equal(t, rec.ImpactLevel, got.ImpactLevel)
	assert.InDelta(t, rec.OverallImpactScore.Float(), got.OverallImpactScore.Float(), 1e-9)
	require.NotNil(t, got.Confidence)
	assert.InDelta(t, 0.8, got.Confidence.Float(), 1e-9)
}
