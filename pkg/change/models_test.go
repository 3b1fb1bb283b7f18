package change

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChecksum(fill string) string {
	return strings.Repeat(fill, 64)
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestResolveType(t *testing.T) {
	prev := testChecksum("a")
	next := testChecksum("b")

	tests := []struct {
		name string
		obs  Observation
		want Type
	}{
		{"never seen before", Observation{NewChecksum: &next}, TypeNewContent},
		{"digest disappeared", Observation{PreviousChecksum: &prev}, TypeDeletedContent},
		{"location only", Observation{PreviousChecksum: &prev, NewChecksum: &next, LocationOnly: true}, TypeLocationChange},
		{"diff recorded changes", Observation{PreviousChecksum: &prev, NewChecksum: &next, DiffHasChanges: true}, TypeModifiedContent},
		{"diff empty", Observation{PreviousChecksum: &prev, NewChecksum: &next}, TypeUnchangedContent},
		// Deletion wins even when there is no previous digest on record.
		{"nothing observed", Observation{}, TypeDeletedContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveType(tc.obs))
		})
	}
}

func TestNewRecordValidation(t *testing.T) {
	_, err := NewRecord("short", nil, "run-1", nil)
	assert.Error(t, err)

	_, err = NewRecord(testChecksum("a"), strPtr("short"), "run-1", nil)
	assert.Error(t, err)

	_, err = NewRecord(testChecksum("a"), nil, "", nil)
	assert.Error(t, err)

	bad := 1.5
	_, err = NewRecord(testChecksum("a"), nil, "run-1", &bad)
	assert.Error(t, err)

	sim := 0.85
	rec, err := NewRecord(testChecksum("a"), strPtr(testChecksum("b")), "run-1", &sim)
	require.NoError(t, err)
	assert.Equal(t, "run-1", rec.DetectionRunID)
	require.NotNil(t, rec.SimilarityScore)
	assert.Equal(t, 0.85, rec.SimilarityScore.Float())
	assert.False(t, rec.DetectionTimestamp.IsZero())
	assert.Nil(t, rec.ChangeType)
}

func TestSetImpactCountsRejectsNegative(t *testing.T) {
	rec, err := NewRecord(testChecksum("a"), nil, "run-1", nil)
	require.NoError(t, err)

	assert.Error(t, rec.SetImpactCounts(-1, 0, 0))
	assert.Error(t, rec.SetImpactCounts(0, -1, 0))
	assert.Error(t, rec.SetImpactCounts(0, 0, -1))

	require.NoError(t, rec.SetImpactCounts(5, 2, 3))
	assert.Equal(t, int64(5), rec.TotalFAQsAtRisk)
	assert.Equal(t, int64(2), rec.AffectedQuestions)
	assert.Equal(t, int64(3), rec.AffectedAnswers)
}

func TestNewDiffValidation(t *testing.T) {
	_, err := NewDiff(0, testChecksum("a"), testChecksum("b"), nil)
	assert.Error(t, err)

	_, err = NewDiff(1, "short", testChecksum("b"), nil)
	assert.Error(t, err)

	over := 120.0
	_, err = NewDiff(1, testChecksum("a"), testChecksum("b"), &over)
	assert.Error(t, err)

	pct := 12.5
	d, err := NewDiff(1, testChecksum("a"), testChecksum("b"), &pct)
	require.NoError(t, err)
	require.NotNil(t, d.ChangePercentage)
	assert.Equal(t, 12.5, d.ChangePercentage.Float())
}

func TestHasRecordedChanges(t *testing.T) {
	d, err := NewDiff(1, testChecksum("a"), testChecksum("b"), nil)
	require.NoError(t, err)
	assert.False(t, d.HasRecordedChanges())

	d.AdditionsCount = int64Ptr(0)
	assert.False(t, d.HasRecordedChanges())

	d.AdditionsCount = int64Ptr(2)
	assert.True(t, d.HasRecordedChanges())

	d.AdditionsCount = nil
	d.ChangedPhrases = []string{"new deadline"}
	assert.True(t, d.HasRecordedChanges())
}
