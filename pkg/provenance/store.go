package provenance

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/knowbase/faqprov/pkg/faqerrors"
)

// Store provides database operations for provenance links. Window closure is
// a compare-and-set against "currently open": concurrent invalidation
// attempts on the same link never both succeed — the loser observes an
// already-closed window and treats it as a no-op, not an error.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new provenance Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates both link tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&QuestionSource{}); err != nil {
		return fmt.Errorf("auto-migrate faq_question_sources: %w", err)
	}
	if err := s.db.AutoMigrate(&AnswerSource{}); err != nil {
		return fmt.Errorf("auto-migrate faq_answer_sources: %w", err)
	}
	return nil
}

// CreateQuestionSource inserts a question-source link.
func (s *Store) CreateQuestionSource(link *QuestionSource) error {
	if err := s.db.Create(link).Error; err != nil {
		return fmt.Errorf("create question source: %w", err)
	}
	return nil
}

// CreateAnswerSource inserts an answer-source link.
func (s *Store) CreateAnswerSource(link *AnswerSource) error {
	if err := s.db.Create(link).Error; err != nil {
		return fmt.Errorf("create answer source: %w", err)
	}
	return nil
}

// GetQuestionSource retrieves a question-source link by ID. Returns nil, nil
// if absent.
func (s *Store) GetQuestionSource(id int64) (*QuestionSource, error) {
	var link QuestionSource
	err := s.db.Where("source_id = ?", id).First(&link).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get question source: %w", err)
	}
	return &link, nil
}

// GetAnswerSource retrieves an answer-source link by ID. Returns nil, nil
// if absent.
func (s *Store) GetAnswerSource(id int64) (*AnswerSource, error) {
	var link AnswerSource
	err := s.db.Where("source_id = ?", id).First(&link).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get answer source: %w", err)
	}
	return &link, nil
}

// ListQuestionSourcesByChecksum returns question-source links pointing at the
// given digest. validOnly restricts to links whose window is still open.
func (s *Store) ListQuestionSourcesByChecksum(checksum string, validOnly bool) ([]QuestionSource, error) {
	query := s.db.Where("content_checksum = ?", checksum)
	if validOnly {
		query = query.Where("valid_until IS NULL")
	}
	var links []QuestionSource
	if err := query.Order("source_id ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list question sources: %w", err)
	}
	return links, nil
}

// ListAnswerSourcesByChecksum returns answer-source links pointing at the
// given digest. validOnly restricts to links whose window is still open.
func (s *Store) ListAnswerSourcesByChecksum(checksum string, validOnly bool) ([]AnswerSource, error) {
	query := s.db.Where("content_checksum = ?", checksum)
	if validOnly {
		query = query.Where("valid_until IS NULL")
	}
	var links []AnswerSource
	if err := query.Order("source_id ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("list answer sources: %w", err)
	}
	return links, nil
}

// Closure describes one window-close request.
type Closure struct {
	Reason   InvalidationReason
	ChangeID *int64
	At       time.Time // zero means now
}

func (c *Closure) validate() error {
	if _, ok := ParseInvalidationReason(string(c.Reason)); !ok {
		return faqerrors.Validationf("invalidation_reason", "unknown reason %q", c.Reason)
	}
	if c.Reason.ChangeDriven() && c.ChangeID == nil {
		return faqerrors.Validationf("invalidated_by_change_id",
			"required for change-driven reason %q", c.Reason)
	}
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	return nil
}

// CloseQuestionSource closes a question-source link's validity window using a
// compare-and-set on the open window. Returns true if this call performed the
// closure; false means another writer already closed it (no-op success, so
// the caller can skip its audit write).
func (s *Store) CloseQuestionSource(sourceID int64, c Closure) (bool, error) {
	if err := c.validate(); err != nil {
		return false, err
	}
	result := s.db.Model(&QuestionSource{}).
		Where("source_id = ? AND valid_until IS NULL", sourceID).
		Updates(map[string]any{
			"is_valid":                 false,
			"valid_until":              c.At,
			"invalidation_reason":      c.Reason,
			"invalidated_by_change_id": c.ChangeID,
		})
	if result.Error != nil {
		return false, fmt.Errorf("close question source: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CloseAnswerSource closes an answer-source link's validity window. Same
// compare-and-set semantics as CloseQuestionSource.
func (s *Store) CloseAnswerSource(sourceID int64, c Closure) (bool, error) {
	if err := c.validate(); err != nil {
		return false, err
	}
	result := s.db.Model(&AnswerSource{}).
		Where("source_id = ? AND valid_until IS NULL", sourceID).
		Updates(map[string]any{
			"is_valid":                 false,
			"valid_until":              c.At,
			"invalidation_reason":      c.Reason,
			"invalidated_by_change_id": c.ChangeID,
		})
	if result.Error != nil {
		return false, fmt.Errorf("close answer source: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
