// Package faq models generated question/answer pairs. A question and its
// answer are separate entities joined 1:1 by the question ID, each with its
// own lifecycle status and modification timestamps.
package faq

import (
	"time"

	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/projection"
	"github.com/knowbase/faqprov/pkg/score"
)

// Question is a content-agnostic FAQ question.
type Question struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:question_id"`
	Text       string    `gorm:"column:question_text;type:text;not null"`
	Status     Status    `gorm:"column:status;index;not null;default:active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	ModifiedAt time.Time `gorm:"column:modified_at;autoUpdateTime"`

	SourceType       *SourceType       `gorm:"column:source_type"`
	GenerationMethod *GenerationMethod `gorm:"column:generation_method"`
	Domain           *string           `gorm:"column:domain;index"`
	Service          *string           `gorm:"column:service"`
	CreatedBy        string            `gorm:"column:created_by;not null"`
	ModifiedBy       string            `gorm:"column:modified_by;not null"`
}

// TableName returns the GORM table name.
func (Question) TableName() string { return "faq_questions" }

// NewQuestion constructs a question with the given text and acting identity.
func NewQuestion(text, createdBy string) (*Question, error) {
	if text == "" {
		return nil, faqerrors.Validationf("question_text", "must not be empty")
	}
	now := time.Now().UTC()
	return &Question{
		Text:       text,
		Status:     StatusActive,
		CreatedAt:  now,
		ModifiedAt: now,
		CreatedBy:  createdBy,
		ModifiedBy: createdBy,
	}, nil
}

// Answer is the FAQ answer linked 1:1 to a question.
type Answer struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:answer_id"`
	QuestionID int64     `gorm:"column:question_id;uniqueIndex;not null"`
	Text       string    `gorm:"column:answer_text;type:text;not null"`
	Format     AnswerFormat `gorm:"column:answer_format;not null;default:html"`
	Status     Status    `gorm:"column:status;index;not null;default:active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	ModifiedAt time.Time `gorm:"column:modified_at;autoUpdateTime"`

	ConfidenceScore *score.Fraction `gorm:"column:confidence_score"`
	CreatedBy       string          `gorm:"column:created_by;not null"`
	ModifiedBy      string          `gorm:"column:modified_by;not null"`
}

// TableName returns the GORM table name.
func (Answer) TableName() string { return "faq_answers" }

// NewAnswer constructs an answer for a question. confidence is optional and
// must be in [0,1] when present.
func NewAnswer(questionID int64, text string, format AnswerFormat, confidence *float64, createdBy string) (*Answer, error) {
	if questionID <= 0 {
		return nil, faqerrors.Validationf("question_id", "must reference a question, got %d", questionID)
	}
	if text == "" {
		return nil, faqerrors.Validationf("answer_text", "must not be empty")
	}
	if _, ok := ParseAnswerFormat(string(format)); !ok {
		return nil, faqerrors.Validationf("answer_format", "unknown format %q", format)
	}
	conf, err := score.NewFractionPtr("confidence_score", confidence)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Answer{
		QuestionID:      questionID,
		Text:            text,
		Format:          format,
		Status:          StatusActive,
		CreatedAt:       now,
		ModifiedAt:      now,
		ConfidenceScore: conf,
		CreatedBy:       createdBy,
		ModifiedBy:      createdBy,
	}, nil
}

// Projection returns the flat key-value form of the question.
func (q *Question) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetInt(m, "question_id", q.ID)
	projection.SetString(m, "question_text", q.Text)
	projection.SetString(m, "status", string(q.Status))
	projection.SetTime(m, "created_at", q.CreatedAt)
	projection.SetTime(m, "modified_at", q.ModifiedAt)
	if q.SourceType != nil {
		projection.SetString(m, "source_type", string(*q.SourceType))
	}
	if q.GenerationMethod != nil {
		projection.SetString(m, "generation_method", string(*q.GenerationMethod))
	}
	projection.SetOptString(m, "domain", q.Domain)
	projection.SetOptString(m, "service", q.Service)
	projection.SetString(m, "created_by", q.CreatedBy)
	projection.SetString(m, "modified_by", q.ModifiedBy)
	return m
}

// QuestionFromProjection reconstructs a question from its flat projection.
func QuestionFromProjection(m projection.Flat) (*Question, error) {
	var q Question
	var err error
	if q.ID, err = projection.Int(m, "question_id"); err != nil {
		return nil, err
	}
	if q.Text, err = projection.String(m, "question_text"); err != nil {
		return nil, err
	}
	statusTag, err := projection.String(m, "status")
	if err != nil {
		return nil, err
	}
	status, ok := ParseStatus(statusTag)
	if !ok {
		return nil, faqerrors.Validationf("status", "unknown status %q", statusTag)
	}
	q.Status = status
	if q.CreatedAt, err = projection.Time(m, "created_at"); err != nil {
		return nil, err
	}
	if q.ModifiedAt, err = projection.Time(m, "modified_at"); err != nil {
		return nil, err
	}
	if tag, err := projection.OptString(m, "source_type"); err != nil {
		return nil, err
	} else if tag != nil {
		st, ok := ParseSourceType(*tag)
		if !ok {
			return nil, faqerrors.Validationf("source_type", "unknown source type %q", *tag)
		}
		q.SourceType = &st
	}
	if tag, err := projection.OptString(m, "generation_method"); err != nil {
		return nil, err
	} else if tag != nil {
		gm, ok := ParseGenerationMethod(*tag)
		if !ok {
			return nil, faqerrors.Validationf("generation_method", "unknown generation method %q", *tag)
		}
		q.GenerationMethod = &gm
	}
	if q.Domain, err = projection.OptString(m, "domain"); err != nil {
		return nil, err
	}
	if q.Service, err = projection.OptString(m, "service"); err != nil {
		return nil, err
	}
	if q.CreatedBy, err = projection.String(m, "created_by"); err != nil {
		return nil, err
	}
	if q.ModifiedBy, err = projection.String(m, "modified_by"); err != nil {
		return nil, err
	}
	return &q, nil
}

// Projection returns the flat key-value form of the answer.
func (a *Answer) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetInt(m, "answer_id", a.ID)
	projection.SetInt(m, "question_id", a.QuestionID)
	projection.SetString(m, "answer_text", a.Text)
	projection.SetString(m, "answer_format", string(a.Format))
	projection.SetString(m, "status", string(a.Status))
	projection.SetTime(m, "created_at", a.CreatedAt)
	projection.SetTime(m, "modified_at", a.ModifiedAt)
	if a.ConfidenceScore != nil {
		projection.SetFloat(m, "confidence_score", a.ConfidenceScore.Float())
	}
	projection.SetString(m, "created_by", a.CreatedBy)
	projection.SetString(m, "modified_by", a.ModifiedBy)
	return m
}

// AnswerFromProjection reconstructs an answer from its flat projection.
func AnswerFromProjection(m projection.Flat) (*Answer, error) {
	var a Answer
	var err error
	if a.ID, err = projection.Int(m, "answer_id"); err != nil {
		return nil, err
	}
	if a.QuestionID, err = projection.Int(m, "question_id"); err != nil {
		return nil, err
	}
	if a.Text, err = projection.String(m, "answer_text"); err != nil {
		return nil, err
	}
	formatTag, err := projection.String(m, "answer_format")
	if err != nil {
		return nil, err
	}
	format, ok := ParseAnswerFormat(formatTag)
	if !ok {
		return nil, faqerrors.Validationf("answer_format", "unknown format %q", formatTag)
	}
	a.Format = format
	statusTag, err := projection.String(m, "status")
	if err != nil {
		return nil, err
	}
	status, ok := ParseStatus(statusTag)
	if !ok {
		return nil, faqerrors.Validationf("status", "unknown status %q", statusTag)
	}
	a.Status = status
	if a.CreatedAt, err = projection.Time(m, "created_at"); err != nil {
		return nil, err
	}
	if a.ModifiedAt, err = projection.Time(m, "modified_at"); err != nil {
		return nil, err
	}
	if f, err := projection.OptFloat(m, "confidence_score"); err != nil {
		return nil, err
	} else if f != nil {
		conf, err := score.NewFraction("confidence_score", *f)
		if err != nil {
			return nil, err
		}
		a.ConfidenceScore = &conf
	}
	if a.CreatedBy, err = projection.String(m, "created_by"); err != nil {
		return nil, err
	}
	if a.ModifiedBy, err = projection.String(m, "modified_by"); err != nil {
		return nil, err
	}
	return &a, nil
}
