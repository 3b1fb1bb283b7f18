package change

import (
	"fmt"

	"gorm.io/gorm"
)

// Store provides database operations for change and diff records.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new change Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the content_change_log and content_diffs
// tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("auto-migrate content_change_log: %w", err)
	}
	if err := s.db.AutoMigrate(&Diff{}); err != nil {
		return fmt.Errorf("auto-migrate content_diffs: %w", err)
	}
	return nil
}

// Create inserts a change record and assigns its ID.
func (s *Store) Create(record *Record) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("create change record: %w", err)
	}
	return nil
}

// Get retrieves a change record by ID. Returns nil, nil if absent.
func (s *Store) Get(id int64) (*Record, error) {
	var record Record
	err := s.db.Where("change_id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get change record: %w", err)
	}
	return &record, nil
}

// ListByRun returns all change records belonging to one detection run,
// oldest first.
func (s *Store) ListByRun(detectionRunID string) ([]Record, error) {
	var records []Record
	err := s.db.Where("detection_run_id = ?", detectionRunID).
		Order("change_id ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list changes by run: %w", err)
	}
	return records, nil
}

// UpdateImpactCounts writes the counts produced by impact analysis back onto
// the change record.
func (s *Store) UpdateImpactCounts(changeID, totalAtRisk, affectedQuestions, affectedAnswers int64) error {
	result := s.db.Model(&Record{}).Where("change_id = ?", changeID).Updates(map[string]any{
		"total_faqs_at_risk":      totalAtRisk,
		"affected_question_count": affectedQuestions,
		"affected_answer_count":   affectedAnswers,
	})
	if result.Error != nil {
		return fmt.Errorf("update impact counts: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update impact counts: change %d not found", changeID)
	}
	return nil
}

// SetChangeType writes the resolved classification onto the change record.
// The diff-driven modified/unchanged split is only known once a diff has
// been computed, so classification can arrive after intake.
func (s *Store) SetChangeType(changeID int64, t Type, requiresRegen bool) error {
	result := s.db.Model(&Record{}).Where("change_id = ?", changeID).Updates(map[string]any{
		"change_type":               t,
		"requires_faq_regeneration": requiresRegen,
	})
	if result.Error != nil {
		return fmt.Errorf("set change type: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("set change type: change %d not found", changeID)
	}
	return nil
}

// CreateDiff inserts a diff record and assigns its ID.
func (s *Store) CreateDiff(d *Diff) error {
	if err := s.db.Create(d).Error; err != nil {
		return fmt.Errorf("create diff record: %w", err)
	}
	return nil
}

// GetDiff retrieves a diff record by ID. Returns nil, nil if absent.
func (s *Store) GetDiff(id int64) (*Diff, error) {
	var d Diff
	err := s.db.Where("diff_id = ?", id).First(&d).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get diff record: %w", err)
	}
	return &d, nil
}

// LatestDiffForChange returns the most recently computed diff for a change.
// Returns nil, nil if no diff has been computed yet.
func (s *Store) LatestDiffForChange(changeID int64) (*Diff, error) {
	var d Diff
	err := s.db.Where("change_id = ?", changeID).
		Order("computed_at DESC").Order("diff_id DESC").First(&d).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("latest diff for change: %w", err)
	}
	return &d, nil
}

// ListDiffsForChange returns every computed diff for a change, newest first.
func (s *Store) ListDiffsForChange(changeID int64) ([]Diff, error) {
	var diffs []Diff
	err := s.db.Where("change_id = ?", changeID).
		Order("computed_at DESC").Find(&diffs).Error
	if err != nil {
		return nil, fmt.Errorf("list diffs for change: %w", err)
	}
	return diffs, nil
}
