package impact

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store provides database operations for impact records. Writes go through
// an upsert keyed on (change_id, question_id, answer_id), so re-analysis of
// a pairing replaces its verdict instead of adding a second row.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new impact Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the faq_impact_analysis table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("auto-migrate faq_impact_analysis: %w", err)
	}
	return nil
}

// Upsert writes a record, replacing any previous verdict for the same
// (change, question, answer) pairing.
func (s *Store) Upsert(rec *Record) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "change_id"}, {Name: "question_id"}, {Name: "answer_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"diff_id",
			"overall_impact_score",
			"lexical_similarity",
			"semantic_similarity",
			"keyword_overlap",
			"phrase_match_score",
			"is_affected",
			"impact_level",
			"impact_reason",
			"matched_changes",
			"analysis_method",
			"analysis_version",
			"confidence",
			"analyzed_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("upsert impact record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID. Returns nil, nil if absent.
func (s *Store) Get(id int64) (*Record, error) {
	var rec Record
	err := s.db.Where("impact_id = ?", id).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get impact record: %w", err)
	}
	return &rec, nil
}

// GetByPair retrieves the verdict for one (change, question, answer)
// pairing. Zero means "not targeted". Returns nil, nil if absent.
func (s *Store) GetByPair(changeID, questionID, answerID int64) (*Record, error) {
	var rec Record
	err := s.db.Where("change_id = ? AND question_id = ? AND answer_id = ?",
		changeID, questionID, answerID).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get impact record by pair: %w", err)
	}
	return &rec, nil
}

// ListByChange returns all verdicts for a change, highest score first.
func (s *Store) ListByChange(changeID int64) ([]Record, error) {
	var records []Record
	err := s.db.Where("change_id = ?", changeID).
		Order("overall_impact_score DESC, impact_id ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list impact records: %w", err)
	}
	return records, nil
}

// ListAffectedByChange returns only the affected verdicts for a change,
// highest score first.
func (s *Store) ListAffectedByChange(changeID int64) ([]Record, error) {
	var records []Record
	err := s.db.Where("change_id = ? AND is_affected = ?", changeID, true).
		Order("overall_impact_score DESC, impact_id ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list affected impact records: %w", err)
	}
	return records, nil
}
