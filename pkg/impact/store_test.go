package impact

import (
	"testing"

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
	require.NoError(t, db.AutoMigrate(&Record{}))
	return db
}

func newAffectedRecord(t *testing.T, changeID, questionID, answerID int64, lexical float64) *Record {
	t.Helper()
	p := Params{
		ChangeID:   changeID,
		QuestionID: questionID,
		AnswerID:   answerID,
		Sub:        SubScores{Lexical: fracPtr(lexical)},
	}
	if DefaultThresholds().Affects(lexical) {
		p.Reason = strPtr("test verdict")
	}
	rec, err := NewRecord(p, DefaultConfig())
	require.NoError(t, err)
	return rec
}

func TestUpsertReplacesVerdict(t *testing.T) {
	store := NewStore(setupTestDB(t))

	first := newAffectedRecord(t, 1, 10, 0, 0.9)
	require.NoError(t, store.Upsert(first))

	// Re-analysis of the same pairing with a lower score.
	second := newAffectedRecord(t, 1, 10, 0, 0.2)
	require.NoError(t, store.Upsert(second))

	records, err := store.ListByChange(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 0.2, records[0].OverallImpactScore.Float(), 1e-9)
	assert.False(t, records[0].IsAffected)
}

func TestGetByPair(t *testing.T) {
	store := NewStore(setupTestDB(t))

	require.NoError(t, store.Upsert(newAffectedRecord(t, 1, 10, 0, 0.9)))
	require.NoError(t, store.Upsert(newAffectedRecord(t, 1, 0, 20, 0.3)))

	got, err := store.GetByPair(1, 10, 0)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(10), got.QuestionID)
	assert.True(t, got.IsAffected)

	got, err = store.GetByPair(1, 0, 20)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(20), got.AnswerID)

	missing, err := store.GetByPair(1, 99, 0)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListByChangeOrdersByScore(t *testing.T) {
	store := NewStore(setupTestDB(t))

	require.NoError(t, store.Upsert(newAffectedRecord(t, 1, 10, 0, 0.3)))
	require.NoError(t, store.Upsert(newAffectedRecord(t, 1, 11, 0, 0.9)))
	require.NoError(t, store.Upsert(newAffectedRecord(t, 1, 12, 0, 0.6)))
	require.NoError(t, store.Upsert(newAffectedRecord(t, 2, 10, 0, 1.0)))

	records, err := store.ListByChange(1)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(11), records[0].QuestionID)
	assert.Equal(t, int64(12), records[1].QuestionID)
	assert.Equal(t, int64(10), records[2].QuestionID)

	affected, err := store.ListAffectedByChange(1)
	require.NoError(t, err)
	require.Len(t, affected, 2)
	for _, rec := range affected {
		assert.True(t, rec.IsAffected)
	}
}

func TestGetRecord(t *testing.T) {
	store := NewStore(setupTestDB(t))

	rec := newAffectedRecord(t, 1, 10, 0, 0.9)
	require.NoError(t, store.Upsert(rec))
	require.NotZero(t, rec.ImpactID)

	got, err := store.Get(rec.ImpactID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ChangeID, got.ChangeID)

	missing, err := store.Get(999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
