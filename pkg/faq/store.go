package faq

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store provides database operations for questions and answers. Identifier
// assignment is delegated to the database's autoincrement so concurrent
// creators never collide.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new FAQ Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the faq_questions and faq_answers tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&Question{}); err != nil {
		return fmt.Errorf("auto-migrate faq_questions: %w", err)
	}
	if err := s.db.AutoMigrate(&Answer{}); err != nil {
		return fmt.Errorf("auto-migrate faq_answers: %w", err)
	}
	return nil
}

// CreateQuestion inserts a question and assigns its ID.
func (s *Store) CreateQuestion(q *Question) error {
	if err := s.db.Create(q).Error; err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

// CreateAnswer inserts an answer and assigns its ID. The unique index on
// question_id enforces the 1:1 join.
func (s *Store) CreateAnswer(a *Answer) error {
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("create answer: %w", err)
	}
	return nil
}

// GetQuestion retrieves a question by ID. Returns nil, nil if absent.
func (s *Store) GetQuestion(id int64) (*Question, error) {
	var q Question
	err := s.db.Where("question_id = ?", id).First(&q).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

// GetAnswer retrieves an answer by ID. Returns nil, nil if absent.
func (s *Store) GetAnswer(id int64) (*Answer, error) {
	var a Answer
	err := s.db.Where("answer_id = ?", id).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return &a, nil
}

// GetAnswerForQuestion retrieves the answer joined to a question.
// Returns nil, nil if the question has no answer yet.
func (s *Store) GetAnswerForQuestion(questionID int64) (*Answer, error) {
	var a Answer
	err := s.db.Where("question_id = ?", questionID).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get answer for question: %w", err)
	}
	return &a, nil
}

// SetQuestionStatus transitions a question's status and stamps the actor.
func (s *Store) SetQuestionStatus(id int64, status Status, actor string) error {
	result := s.db.Model(&Question{}).Where("question_id = ?", id).Updates(map[string]any{
		"status":      status,
		"modified_by": actor,
		"modified_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("set question status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("set question status: question %d not found", id)
	}
	return nil
}

// SetAnswerStatus transitions an answer's status and stamps the actor.
func (s *Store) SetAnswerStatus(id int64, status Status, actor string) error {
	result := s.db.Model(&Answer{}).Where("answer_id = ?", id).Updates(map[string]any{
		"status":      status,
		"modified_by": actor,
		"modified_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return fmt.Errorf("set answer status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("set answer status: answer %d not found", id)
	}
	return nil
}

// ListQuestionsByStatus returns questions in the given status, newest first.
func (s *Store) ListQuestionsByStatus(status Status, limit int) ([]Question, error) {
	if limit <= 0 {
		limit = 100
	}
	var questions []Question
	err := s.db.Where("status = ?", status).
		Order("question_id DESC").Limit(limit).Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}
