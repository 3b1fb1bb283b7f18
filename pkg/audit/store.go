package audit

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store provides append-only operations for audit entries. There is no
// update or single-row delete path: entries leave the trail only through
// retention-driven bulk expiry.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new audit Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the faq_audit_log table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("auto-migrate faq_audit_log: %w", err)
	}
	return nil
}

// Append writes a new audit entry.
func (s *Store) Append(e *Entry) error {
	if err := s.db.Create(e).Error; err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID. Returns nil, nil if absent.
func (s *Store) Get(auditID string) (*Entry, error) {
	var e Entry
	err := s.db.Where("audit_id = ?", auditID).First(&e).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get audit entry: %w", err)
	}
	return &e, nil
}

// ListByRecord returns the trail for one record, newest first.
func (s *Store) ListByRecord(table, recordID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []Entry
	err := s.db.Where("table_name = ? AND record_id = ?", table, recordID).
		Order("changed_at DESC, audit_id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list audit entries by record: %w", err)
	}
	return entries, nil
}

// ListByRun returns all entries written under one detection run, newest first.
func (s *Store) ListByRun(detectionRunID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []Entry
	err := s.db.Where("detection_run_id = ?", detectionRunID).
		Order("changed_at DESC, audit_id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list audit entries by run: %w", err)
	}
	return entries, nil
}

// ListRecent returns the newest entries across all tables, optionally
// filtered by action.
func (s *Store) ListRecent(limit int, action string) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := s.db.Model(&Entry{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	var entries []Entry
	err := query.Order("changed_at DESC, audit_id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list recent audit entries: %w", err)
	}
	return entries, nil
}

// DeleteOlderThan removes entries older than the cutoff and returns the
// number deleted. This is the only delete path into the trail.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("changed_at < ?", cutoff).Delete(&Entry{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete old audit entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
