package audit

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
	require.NoError(t, db.AutoMigrate(&Entry{}))
	return db
}

func mustEntry(t *testing.T, table, recordID string, action Action) *Entry {
	t.Helper()
	e, err := NewEntry(table, recordID, action, "tester")
	require.NoError(t, err)
	return e
}

func TestNewEntryValidation(t *testing.T) {
	_, err := NewEntry("", "1", ActionInsert, "tester")
	assert.Error(t, err)
	_, err = NewEntry("faq_questions", "", ActionInsert, "tester")
	assert.Error(t, err)
	_, err = NewEntry("faq_questions", "1", Action("TRUNCATE"), "tester")
	assert.Error(t, err)
	_, err = NewEntry("faq_questions", "1", ActionInsert, "")
	assert.Error(t, err)

	e, err := NewEntry("faq_questions", "1", ActionInsert, "tester")
	require.NoError(t, err)
	assert.NotEmpty(t, e.AuditID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestEntryProjectionRoundTrip(t *testing.T) {
	runID := "run-9"
	e := mustEntry(t, "faq_questions", "7", ActionInvalidate)
	e.DetectionRunID = &runID
	e.OldValues = map[string]any{"status": "active"}
	e.NewValues = map[string]any{"status": "invalidated"}

	back, err := EntryFromProjection(e.Projection())
	require.NoError(t, err)
	assert.Equal(t, e.AuditID, back.AuditID)
	assert.Equal(t, e.Action, back.Action)
	assert.Equal(t, "run-9", *back.DetectionRunID)
	assert.Equal(t, "active", back.OldValues["status"])
	assert.Equal(t, "invalidated", back.NewValues["status"])
	assert.True(t, e.CreatedAt.Equal(back.CreatedAt))

	bad := e.Projection()
	bad["action"] = "MERGE"
	_, err = EntryFromProjection(bad)
	assert.Error(t, err)
}

func TestAppendAndGet(t *testing.T) {
	store := NewStore(setupTestDB(t))

	e := mustEntry(t, "faq_questions", "7", ActionInsert)
	e.NewValues = map[string]any{"status": "active"}
	require.NoError(t, store.Append(e))

	got, err := store.Get(e.AuditID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "faq_questions", got.Table)
	assert.Equal(t, "active", got.NewValues["status"])

	missing, err := store.Get("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListByRecordNewestFirst(t *testing.T) {
	store := NewStore(setupTestDB(t))

	older := mustEntry(t, "faq_questions", "7", ActionInsert)
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Append(older))
	newer := mustEntry(t, "faq_questions", "7", ActionUpdate)
	require.NoError(t, store.Append(newer))
	other := mustEntry(t, "faq_questions", "8", ActionInsert)
	require.NoError(t, store.Append(other))

	entries, err := store.ListByRecord("faq_questions", "7", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionUpdate, entries[0].Action)
	assert.Equal(t, ActionInsert, entries[1].Action)
}

func TestListByRun(t *testing.T) {
	store := NewStore(setupTestDB(t))

	runID := "run-1"
	inRun := mustEntry(t, "content_change_log", "1", ActionUpdate)
	inRun.DetectionRunID = &runID
	require.NoError(t, store.Append(inRun))
	require.NoError(t, store.Append(mustEntry(t, "faq_questions", "2", ActionInsert)))

	entries, err := store.ListByRun(runID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "content_change_log", entries[0].Table)
}

func TestListRecentFiltersByAction(t *testing.T) {
	store := NewStore(setupTestDB(t))

	require.NoError(t, store.Append(mustEntry(t, "faq_questions", "1", ActionInsert)))
	require.NoError(t, store.Append(mustEntry(t, "faq_questions", "1", ActionUpdate)))
	require.NoError(t, store.Append(mustEntry(t, "faq_question_sources", "3", ActionSelectiveInvalidate)))

	all, err := store.ListRecent(0, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	invalidations, err := store.ListRecent(0, string(ActionSelectiveInvalidate))
	require.NoError(t, err)
	require.Len(t, invalidations, 1)
	assert.Equal(t, "faq_question_sources", invalidations[0].Table)
}

func TestDeleteOlderThan(t *testing.T) {
	store := NewStore(setupTestDB(t))

	old := mustEntry(t, "faq_questions", "1", ActionInsert)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Append(old))
	recent := mustEntry(t, "faq_questions", "2", ActionInsert)
	require.NoError(t, store.Append(recent))

	deleted, err := store.DeleteOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := store.ListRecent(0, "")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "2", remaining[0].RecordID)
}
