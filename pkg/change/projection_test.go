package change

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowbase/faqprov/pkg/dbtypes"
)

func TestRecordProjectionRoundTrip(t *testing.T) {
	sim := 0.42
	rec, err := NewRecord(testChecksum("b"), strPtr(testChecksum("a")), "run-1", &sim)
	require.NoError(t, err)
	rec.ID = 7
	rec.FileName = "handbook.pdf"
	rec.PageNumber = int64Ptr(3)
	rec.SectionName = strPtr("Benefits")
	changeType := TypeModifiedContent
	rec.ChangeType = &changeType
	rec.RequiresFAQRegen = true
	rec.SimilarityMethod = strPtr("cosine")
	require.NoError(t, rec.SetImpactCounts(5, 2, 1))
	start := rec.DetectionTimestamp.Add(-time.Minute)
	rec.DetectionStart = &start
	rec.Domain = strPtr("hr")

	back, err := FromProjection(rec.Projection())
	require.NoError(t, err)
	assert.Equal(t, rec.ID, back.ID)
	assert.Equal(t, rec.Checksum, back.Checksum)
	assert.Equal(t, *rec.PreviousChecksum, *back.PreviousChecksum)
	assert.Equal(t, TypeModifiedContent, *back.ChangeType)
	assert.True(t, back.RequiresFAQRegen)
	assert.Equal(t, rec.SimilarityScore.Float(), back.SimilarityScore.Float())
	assert.Equal(t, "cosine", *back.SimilarityMethod)
	assert.Equal(t, int64(5), back.TotalFAQsAtRisk)
	assert.Equal(t, int64(2), back.AffectedQuestions)
	assert.Equal(t, int64(1), back.AffectedAnswers)
	assert.True(t, rec.DetectionTimestamp.Equal(back.DetectionTimestamp))
	assert.True(t, rec.DetectionStart.Equal(*back.DetectionStart))
	assert.Equal(t, "hr", *back.Domain)
	assert.Nil(t, back.Service)
}

func TestRecordFromProjectionRejectsUnknownType(t *testing.T) {
	rec, err := NewRecord(testChecksum("b"), nil, "run-1", nil)
	require.NoError(t, err)

	m := rec.Projection()
	m["change_type"] = "rewritten"
	_, err = FromProjection(m)
	assert.Error(t, err)
}

func TestDiffProjectionRoundTrip(t *testing.T) {
	pct := 37.5
	diff, err := NewDiff(7, testChecksum("a"), testChecksum("b"), &pct)
	require.NoError(t, err)
	diff.ID = 11
	diffType := DiffWordDiff
	diff.DiffType = &diffType
	algorithm := AlgorithmMyers
	diff.DiffAlgorithm = &algorithm
	diff.AdditionsCount = int64Ptr(4)
	diff.DeletionsCount = int64Ptr(2)
	diff.TotalChanges = int64Ptr(6)
	numeric := true
	diff.ContainsNumericChanges = &numeric
	diff.ChangedPhrases = dbtypes.JSONStringSlice{"enrollment deadline", "March 1"}
	diff.DiffData = dbtypes.JSONAny{"chunks": "opaque"}

	back, err := DiffFromProjection(diff.Projection())
	require.NoError(t, err)
	assert.Equal(t, diff.ID, back.ID)
	assert.Equal(t, diff.ChangeID, back.ChangeID)
	assert.Equal(t, diff.OldChecksum, back.OldChecksum)
	assert.Equal(t, diff.NewChecksum, back.NewChecksum)
	assert.Equal(t, DiffWordDiff, *back.DiffType)
	assert.Equal(t, AlgorithmMyers, *back.DiffAlgorithm)
	assert.Equal(t, int64(4), *back.AdditionsCount)
	assert.Equal(t, int64(2), *back.DeletionsCount)
	assert.Nil(t, back.ModificationsCount)
	assert.Equal(t, diff.ChangePercentage.Float(), back.ChangePercentage.Float())
	assert.True(t, *back.ContainsNumericChanges)
	assert.Nil(t, back.ContainsDateChanges)
	assert.Equal(t, diff.ChangedPhrases, back.ChangedPhrases)
	assert.Equal(t, "opaque", back.DiffData["chunks"])
	assert.True(t, diff.ComputedAt.Equal(back.ComputedAt))
}

func TestDiffFromProjectionRejectsBadPhrases(t *testing.T) {
	diff, err := NewDiff(7, testChecksum("a"), testChecksum("b"), nil)
	require.NoError(t, err)

	m := diff.Projection()
	m["changed_phrases"] = []any{"ok", 42}
	_, err = DiffFromProjection(m)
	assert.Error(t, err)
}
