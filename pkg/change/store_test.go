package change

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}, &Diff{}))
	return db
}

func TestCreateAndGet(t *testing.T) {
	store := NewStore(setupTestDB(t))

	rec, err := NewRecord(testChecksum("a"), nil, "run-1", nil)
	require.NoError(t, err)
	require.NoError(t, store.Create(rec))
	assert.NotZero(t, rec.ID)

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Checksum, got.Checksum)

	missing, err := store.Get(999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListByRun(t *testing.T) {
	store := NewStore(setupTestDB(t))

	for _, fill := range []string{"1", "2"} {
		rec, err := NewRecord(testChecksum(fill), nil, "run-a", nil)
		require.NoError(t, err)
		require.NoError(t, store.Create(rec))
	}
	other, err := NewRecord(testChecksum("3"), nil, "run-b", nil)
	require.NoError(t, err)
	require.NoError(t, store.Create(other))

	records, err := store.ListByRun("run-a")
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Oldest first.
	assert.Less(t, records[0].ID, records[1].ID)
}

func TestSetChangeType(t *testing.T) {
	store := NewStore(setupTestDB(t))

	rec, err := NewRecord(testChecksum("a"), nil, "run-1", nil)
	require.NoError(t, err)
	require.NoError(t, store.Create(rec))

	require.NoError(t, store.SetChangeType(rec.ID, TypeModifiedContent, true))

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ChangeType)
	assert.Equal(t, TypeModifiedContent, *got.ChangeType)
	assert.True(t, got.RequiresFAQRegen)

	assert.Error(t, store.SetChangeType(999, TypeNewContent, false))
}

func TestUpdateImpactCounts(t *testing.T) {
	store := NewStore(setupTestDB(t))

	rec, err := NewRecord(testChecksum("a"), nil, "run-1", nil)
	require.NoError(t, err)
	require.NoError(t, store.Create(rec))

	require.NoError(t, store.UpdateImpactCounts(rec.ID, 4, 1, 2))

	got, err := store.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.TotalFAQsAtRisk)
	assert.Equal(t, int64(1), got.AffectedQuestions)
	assert.Equal(t, int64(2), got.AffectedAnswers)

	assert.Error(t, store.UpdateImpactCounts(999, 0, 0, 0))
}

func TestDiffLifecycle(t *testing.T) {
	store := NewStore(setupTestDB(t))

	rec, err := NewRecord(testChecksum("a"), nil, "run-1", nil)
	require.NoError(t, err)
	require.NoError(t, store.Create(rec))

	first, err := NewDiff(rec.ID, testChecksum("a"), testChecksum("b"), nil)
	require.NoError(t, err)
	first.ComputedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.CreateDiff(first))

	second, err := NewDiff(rec.ID, testChecksum("a"), testChecksum("b"), nil)
	require.NoError(t, err)
	second.ChangedPhrases = []string{"deadline moved"}
	require.NoError(t, store.CreateDiff(second))

	latest, err := store.LatestDiffForChange(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, []string{"deadline moved"}, []string(latest.ChangedPhrases))

	diffs, err := store.ListDiffsForChange(rec.ID)
	require.NoError(t, err)
	assert.Len(t, diffs, 2)

	got, err := store.GetDiff(first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ChangeID)
}

func TestLatestDiffMissingReturnsNil(t *testing.T) {
	store := NewStore(setupTestDB(t))
	latest, err := store.LatestDiffForChange(1)
	require.NoError(t, err)
	assert.Nil(t, latest)
}
