package runs

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
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
	require.NoError(t, db.AutoMigrate(&DetectionRun{}))
	return db
}

func newTestRun(sourceName, idempotencyKey string) *DetectionRun {
	run := &DetectionRun{
		ID:          uuid.NewString(),
		SourceName:  sourceName,
		RequestedBy: "test-user",
		RequestedAt: time.Now().UTC(),
	}
	if idempotencyKey != "" {
		run.IdempotencyKey = &idempotencyKey
	}
	return run
}

func TestEnqueueCreatesRun(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	run := newTestRun("handbook.pdf", "")
	created, err := store.Enqueue(run)
	require.NoError(t, err)
	assert.Equal(t, run.ID, created.ID)
	assert.Equal(t, StateQueued, created.State)
}

func TestEnqueueAllowsRepeatedKeylessRuns(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	for i := 0; i < 3; i++ {
		_, err := store.Enqueue(newTestRun("handbook.pdf", ""))
		require.NoError(t, err)
	}

	runs, _, total, err := store.List(RunListFilter{}, 10, "")
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	assert.Equal(t, 3, total)
	for _, run := range runs {
		assert.Nil(t, run.IdempotencyKey)
	}
}

func TestEnqueueIdempotencyReturnsExisting(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	first := newTestRun("handbook.pdf", "key-1")
	created1, err := store.Enqueue(first)
	require.NoError(t, err)

	second := newTestRun("handbook.pdf", "key-1")
	created2, err := store.Enqueue(second)
	require.NoError(t, err)
	assert.Equal(t, created1.ID, created2.ID)
}

func TestEnqueueIdempotencyAllowsAfterTerminal(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	first := newTestRun("handbook.pdf", "key-1")
	_, err := store.Enqueue(first)
	require.NoError(t, err)
	require.NoError(t, store.Complete(first.ID, 3, 1, 250))

	second := newTestRun("handbook.pdf", "key-1")
	created2, err := store.Enqueue(second)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, created2.ID)
}

func TestClaimTransitionsToRunning(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	run := newTestRun("handbook.pdf", "")
	_, err := store.Enqueue(run)
	require.NoError(t, err)

	claimed, err := store.Claim(3)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, run.ID, claimed.ID)
	assert.Equal(t, StateRunning, claimed.State)
	assert.NotNil(t, claimed.StartedAt)
	assert.Equal(t, 1, claimed.AttemptCount)
}

func TestClaimReturnsNilWhenEmpty(t *testing.T) {
	store := NewRunStore(setupTestDB(t))
	claimed, err := store.Claim(3)
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestClaimOrdersOldestFirst(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	older := newTestRun("a.pdf", "")
	older.RequestedAt = time.Now().Add(-time.Hour)
	_, err := store.Enqueue(older)
	require.NoError(t, err)

	newer := newTestRun("b.pdf", "")
	_, err = store.Enqueue(newer)
	require.NoError(t, err)

	claimed, err := store.Claim(3)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, older.ID, claimed.ID)
}

func TestCompleteRecordsResults(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	run := newTestRun("handbook.pdf", "")
	_, err := store.Enqueue(run)
	require.NoError(t, err)
	_, err = store.Claim(3)
	require.NoError(t, err)

	require.NoError(t, store.Complete(run.ID, 5, 2, 1200))

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, got.State)
	assert.Equal(t, 5, got.ChangesDetected)
	assert.Equal(t, 2, got.FAQsInvalidated)
	assert.Equal(t, int64(1200), got.DurationMs)
	assert.Contains(t, got.Message, "Detected 5 changes")
	assert.NotNil(t, got.FinishedAt)
}

func TestFailRequeuesWithinRetries(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	run := newTestRun("handbook.pdf", "")
	_, err := store.Enqueue(run)
	require.NoError(t, err)
	_, err = store.Claim(3)
	require.NoError(t, err)

	require.NoError(t, store.Fail(run.ID, "source unreachable", 3))

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, got.State)
	assert.Equal(t, "source unreachable", got.LastError)
	assert.Nil(t, got.StartedAt)
	assert.Nil(t, got.FinishedAt)

	// The re-queued run can be claimed again.
	claimed, err := store.Claim(3)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, 2, claimed.AttemptCount)
}

func TestFailTerminalAfterMaxRetries(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	run := newTestRun("handbook.pdf", "")
	_, err := store.Enqueue(run)
	require.NoError(t, err)

	maxRetries := 2
	for i := 0; i < maxRetries; i++ {
		claimed, err := store.Claim(maxRetries)
		require.NoError(t, err)
		require.NotNil(t, claimed)
		require.NoError(t, store.Fail(run.ID, "still broken", maxRetries))
	}

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, got.State)
	assert.Contains(t, got.Message, "Max retries exceeded")
	assert.True(t, got.IsTerminal())
}

func TestCancelQueuedOnly(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	run := newTestRun("handbook.pdf", "")
	_, err := store.Enqueue(run)
	require.NoError(t, err)

	require.NoError(t, store.Cancel(run.ID))
	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCanceled, got.State)

	// Running runs cannot be canceled.
	running := newTestRun("other.pdf", "")
	_, err = store.Enqueue(running)
	require.NoError(t, err)
	_, err = store.Claim(3)
	require.NoError(t, err)
	assert.Error(t, store.Cancel(running.ID))

	assert.Error(t, store.Cancel("no-such-run"))
}

func TestListFiltersAndPaginates(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		run := newTestRun("handbook.pdf", "")
		run.RequestedAt = base.Add(-time.Duration(i) * time.Minute)
		_, err := store.Enqueue(run)
		require.NoError(t, err)
	}
	other := newTestRun("other.pdf", "")
	_, err := store.Enqueue(other)
	require.NoError(t, err)

	records, nextToken, total, err := store.List(RunListFilter{SourceName: "handbook.pdf"}, 2, "")
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 5, total)
	require.NotEmpty(t, nextToken)

	// Second page continues past the token.
	records2, _, _, err := store.List(RunListFilter{SourceName: "handbook.pdf"}, 2, nextToken)
	require.NoError(t, err)
	require.NotEmpty(t, records2)
	assert.True(t, records2[0].RequestedAt.Before(records[1].RequestedAt))
}

func TestCleanupStuckRuns(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	run := newTestRun("handbook.pdf", "")
	_, err := store.Enqueue(run)
	require.NoError(t, err)
	_, err = store.Claim(3)
	require.NoError(t, err)

	// Backdate the claim so the run looks stuck.
	stale := time.Now().Add(-time.Hour)
	require.NoError(t, store.db.Model(&DetectionRun{}).
		Where("run_id = ?", run.ID).Update("started_at", stale).Error)

	recovered, err := store.CleanupStuckRuns(10 * time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), recovered)

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, got.State)
}

func TestDeleteOlderThanRemovesTerminalOnly(t *testing.T) {
	store := NewRunStore(setupTestDB(t))

	done := newTestRun("handbook.pdf", "")
	_, err := store.Enqueue(done)
	require.NoError(t, err)
	require.NoError(t, store.Complete(done.ID, 0, 0, 10))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.db.Model(&DetectionRun{}).
		Where("run_id = ?", done.ID).Update("finished_at", old).Error)

	queued := newTestRun("other.pdf", "")
	_, err = store.Enqueue(queued)
	require.NoError(t, err)

	deleted, err := store.DeleteOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	gone, err := store.Get(done.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	kept, err := store.Get(queued.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
