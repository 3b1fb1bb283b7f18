// Package runs manages detection runs: one run scans a content source,
// records the detected changes, and drives impact analysis over them. Runs
// are queued in the database and processed by a worker pool, so multiple
// server replicas share one queue.
package runs

import (
	"time"
)

// State represents the lifecycle state of a detection run.
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCanceled  State = "canceled"
)

// DetectionRun is the GORM model for a detection run.
type DetectionRun struct {
	ID             string     `gorm:"primaryKey;column:run_id;type:varchar(36)"`
	SourceName     string     `gorm:"column:source_name;index:idx_run_source_state,priority:1;not null"`
	Domain         *string    `gorm:"column:domain"`
	Service        *string    `gorm:"column:service"`
	RequestedBy    string     `gorm:"column:requested_by;not null"`
	RequestedAt    time.Time  `gorm:"column:requested_at;not null"`
	State          State      `gorm:"column:state;index:idx_run_source_state,priority:2;index:idx_run_state;not null;default:queued"`
	Message        string     `gorm:"column:message"`
	StartedAt      *time.Time `gorm:"column:started_at"`
	FinishedAt     *time.Time `gorm:"column:finished_at"`
	AttemptCount   int        `gorm:"column:attempt_count;default:0"`
	LastError      string     `gorm:"column:last_error"`
	// NULL when the caller supplied no key: unique indexes permit any
	// number of NULLs, while "" would collide on the second keyless run.
	IdempotencyKey *string `gorm:"column:idempotency_key;uniqueIndex:idx_run_idemp_key"`

	ChangesDetected int   `gorm:"column:changes_detected"`
	FAQsInvalidated int   `gorm:"column:faqs_invalidated"`
	DurationMs      int64 `gorm:"column:duration_ms"`
}

// TableName returns the GORM table name.
func (DetectionRun) TableName() string { return "detection_runs" }

// IsTerminal returns true if the run is in a terminal state.
func (r *DetectionRun) IsTerminal() bool {
	switch r.State {
	case StateSucceeded, StateFailed, StateCanceled:
		return true
	}
	return false
}
