package runs

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// RunStore provides database operations for detection runs.
type RunStore struct {
	db *gorm.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *gorm.DB) *RunStore {
	return &RunStore{db: db}
}

// AutoMigrate creates or updates the detection_runs table.
func (s *RunStore) AutoMigrate() error {
	return s.db.AutoMigrate(&DetectionRun{})
}

// RunListFilter defines filters for listing runs.
type RunListFilter struct {
	SourceName  string
	State       string
	RequestedBy string
	Domain      string
}

// Enqueue creates a new queued run. If idempotencyKey is non-empty and a
// non-terminal run with the same key exists, the existing run is returned
// instead of creating a duplicate. Safe for concurrent use.
func (s *RunStore) Enqueue(run *DetectionRun) (*DetectionRun, error) {
	if run.State == "" {
		run.State = StateQueued
	}
	if run.RequestedAt.IsZero() {
		run.RequestedAt = time.Now().UTC()
	}

	if run.IdempotencyKey != nil && *run.IdempotencyKey == "" {
		run.IdempotencyKey = nil
	}
	if run.IdempotencyKey == nil {
		if err := s.db.Create(run).Error; err != nil {
			return nil, fmt.Errorf("enqueue run: %w", err)
		}
		return run, nil
	}
	key := *run.IdempotencyKey

	// With idempotency key: use a transaction for atomicity.
	var result *DetectionRun
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Check for existing non-terminal run with this key.
		var existing DetectionRun
		err := tx.Where("idempotency_key = ? AND state IN ?", key,
			[]State{StateQueued, StateRunning}).First(&existing).Error
		if err == nil {
			result = &existing
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("check idempotency key: %w", err)
		}

		// Clear the idempotency key on any terminal runs with the same key
		// so the unique index doesn't block creating a new run.
		tx.Model(&DetectionRun{}).
			Where("idempotency_key = ? AND state IN ?", key,
				[]State{StateSucceeded, StateFailed, StateCanceled}).
			Update("idempotency_key", nil)

		if err := tx.Create(run).Error; err != nil {
			// Another transaction may have created the run between our check
			// and create. Look up the existing run.
			var raceExisting DetectionRun
			lookupErr := s.db.Where("idempotency_key = ? AND state IN ?", key,
				[]State{StateQueued, StateRunning}).First(&raceExisting).Error
			if lookupErr == nil {
				result = &raceExisting
				return nil
			}
			return fmt.Errorf("enqueue run: %w", err)
		}
		result = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Claim atomically picks a queued run and transitions it to running.
// Uses FOR UPDATE SKIP LOCKED where supported (PostgreSQL).
// Returns nil if no runs are available.
func (s *RunStore) Claim(maxRetries int) (*DetectionRun, error) {
	var run DetectionRun

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Attempt FOR UPDATE SKIP LOCKED (PostgreSQL). For SQLite or
		// databases that don't support it, fall back to plain SELECT.
		result := tx.Raw(`
			SELECT * FROM detection_runs
			WHERE state = ? AND attempt_count <= ?
			ORDER BY requested_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`, StateQueued, maxRetries).Scan(&run)

		if result.Error != nil {
			result = tx.Where("state = ? AND attempt_count <= ?", StateQueued, maxRetries).
				Order("requested_at ASC").
				Limit(1).
				First(&run)
			if result.Error != nil {
				if result.Error == gorm.ErrRecordNotFound {
					return nil
				}
				return result.Error
			}
		}

		if run.ID == "" {
			return nil
		}

		// Transition to running.
		now := time.Now()
		return tx.Model(&DetectionRun{}).Where("run_id = ? AND state = ?", run.ID, StateQueued).
			Updates(map[string]any{
				"state":         StateRunning,
				"started_at":    now,
				"attempt_count": gorm.Expr("attempt_count + 1"),
			}).Error
	})

	if err != nil {
		return nil, fmt.Errorf("claim run: %w", err)
	}

	if run.ID == "" {
		return nil, nil
	}

	// Reload to get the updated values.
	if err := s.db.First(&run, "run_id = ?", run.ID).Error; err != nil {
		return nil, fmt.Errorf("reload claimed run: %w", err)
	}

	return &run, nil
}

// Complete marks a run as succeeded.
func (s *RunStore) Complete(runID string, changesDetected, faqsInvalidated int, durationMs int64) error {
	now := time.Now()
	result := s.db.Model(&DetectionRun{}).Where("run_id = ?", runID).Updates(map[string]any{
		"state":            StateSucceeded,
		"finished_at":      now,
		"changes_detected": changesDetected,
		"faqs_invalidated": faqsInvalidated,
		"duration_ms":      durationMs,
		"message": fmt.Sprintf("Detected %d changes, invalidated %d FAQ components",
			changesDetected, faqsInvalidated),
	})
	if result.Error != nil {
		return fmt.Errorf("complete run: %w", result.Error)
	}
	return nil
}

// Fail marks a run as failed. If the attempt count is within retries, it
// re-queues the run for retry.
func (s *RunStore) Fail(runID string, errMsg string, maxRetries int) error {
	now := time.Now()

	var run DetectionRun
	if err := s.db.First(&run, "run_id = ?", runID).Error; err != nil {
		return fmt.Errorf("load run for fail: %w", err)
	}

	updates := map[string]any{
		"last_error":  errMsg,
		"finished_at": now,
	}

	if run.AttemptCount < maxRetries {
		// Re-queue for retry.
		updates["state"] = StateQueued
		updates["started_at"] = nil
		updates["finished_at"] = nil
	} else {
		updates["state"] = StateFailed
		updates["message"] = "Max retries exceeded: " + errMsg
	}

	result := s.db.Model(&DetectionRun{}).Where("run_id = ?", runID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("fail run: %w", result.Error)
	}
	return nil
}

// Cancel marks a queued run as canceled. Running runs cannot be canceled
// through this method.
func (s *RunStore) Cancel(runID string) error {
	now := time.Now()
	result := s.db.Model(&DetectionRun{}).
		Where("run_id = ? AND state = ?", runID, StateQueued).
		Updates(map[string]any{
			"state":       StateCanceled,
			"finished_at": now,
			"message":     "Canceled by user",
		})
	if result.Error != nil {
		return fmt.Errorf("cancel run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var run DetectionRun
		if err := s.db.First(&run, "run_id = ?", runID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("run not found: %s", runID)
			}
			return fmt.Errorf("check run: %w", err)
		}
		return fmt.Errorf("run %s is in state %s, only queued runs can be canceled", runID, run.State)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(runID string) (*DetectionRun, error) {
	var run DetectionRun
	if err := s.db.First(&run, "run_id = ?", runID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &run, nil
}

// List returns paginated runs matching the given filter.
func (s *RunStore) List(filter RunListFilter, pageSize int, pageToken string) ([]DetectionRun, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	buildQuery := func(base *gorm.DB) *gorm.DB {
		q := base.Model(&DetectionRun{})
		if filter.SourceName != "" {
			q = q.Where("source_name = ?", filter.SourceName)
		}
		if filter.State != "" {
			q = q.Where("state = ?", filter.State)
		}
		if filter.RequestedBy != "" {
			q = q.Where("requested_by = ?", filter.RequestedBy)
		}
		if filter.Domain != "" {
			q = q.Where("domain = ?", filter.Domain)
		}
		return q
	}

	var totalSize int64
	if err := buildQuery(s.db).Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count runs: %w", err)
	}

	query := buildQuery(s.db).Order("requested_at DESC").Limit(pageSize + 1)
	if pageToken != "" {
		t, err := time.Parse(time.RFC3339Nano, pageToken)
		if err != nil {
			return nil, "", 0, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.Where("requested_at < ?", t)
	}

	var records []DetectionRun
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list runs: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		nextToken = records[pageSize-1].RequestedAt.Format(time.RFC3339Nano)
		records = records[:pageSize]
	}

	return records, nextToken, int(totalSize), nil
}

// CleanupStuckRuns transitions running runs that have been stuck
// (started_at older than claimTimeout) back to queued for retry.
func (s *RunStore) CleanupStuckRuns(claimTimeout time.Duration) (int64, error) {
	cutoff := time.Now().Add(-claimTimeout)
	result := s.db.Model(&DetectionRun{}).
		Where("state = ? AND started_at < ?", StateRunning, cutoff).
		Updates(map[string]any{
			"state":      StateQueued,
			"started_at": nil,
			"last_error": "Timed out (stuck run recovery)",
		})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup stuck runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteOlderThan removes terminal runs older than the given cutoff.
func (s *RunStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("state IN ? AND finished_at < ?",
		[]State{StateSucceeded, StateFailed, StateCanceled}, cutoff).
		Delete(&DetectionRun{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete old runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
