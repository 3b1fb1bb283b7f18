// Package provenance models the links between FAQ components and the content
// digests they were derived from. Each link carries a half-open validity
// window [valid_from, valid_until): open links are valid, and closing the
// window is terminal — a closed window is never reopened or widened.
package provenance

import (
	"time"

	"github.com/knowbase/faqprov/pkg/content"
	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/projection"
	"github.com/knowbase/faqprov/pkg/score"
)

// Validity is the shared temporal-validity state embedded in both link kinds.
// IsValid is derived from the window and kept consistent by the store.
type Validity struct {
	IsValid               bool                `gorm:"column:is_valid;index;not null;default:true"`
	ValidFrom             time.Time           `gorm:"column:valid_from;not null"`
	ValidUntil            *time.Time          `gorm:"column:valid_until"`
	InvalidationReason    *InvalidationReason `gorm:"column:invalidation_reason"`
	InvalidatedByChangeID *int64              `gorm:"column:invalidated_by_change_id"`
}

// Window is the validity interval as an explicit two-state value: either
// open, or closed with a reason (and the triggering change, when there is
// one). A closed window without a reason is unrepresentable.
type Window struct {
	Closed   bool
	Until    time.Time
	Reason   InvalidationReason
	ChangeID *int64
}

// Window returns the two-state view of the validity fields.
func (v *Validity) Window() Window {
	if v.ValidUntil == nil {
		return Window{}
	}
	w := Window{Closed: true, Until: *v.ValidUntil, ChangeID: v.InvalidatedByChangeID}
	if v.InvalidationReason != nil {
		w.Reason = *v.InvalidationReason
	}
	return w
}

// ValidAt reports whether the link is valid at t under the half-open
// interval [valid_from, valid_until).
func (v *Validity) ValidAt(t time.Time) bool {
	if t.Before(v.ValidFrom) {
		return false
	}
	return v.ValidUntil == nil || t.Before(*v.ValidUntil)
}

// QuestionSource links a question to the content digest it was derived from.
type QuestionSource struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement;column:source_id"`
	QuestionID         int64           `gorm:"column:question_id;index;not null"`
	Checksum           string          `gorm:"column:content_checksum;index;type:varchar(64);not null"`
	IsPrimarySource    bool            `gorm:"column:is_primary_source;not null;default:false"`
	ContributionWeight *score.Fraction `gorm:"column:contribution_weight"`
	Validity           `gorm:"embedded"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (QuestionSource) TableName() string { return "faq_question_sources" }

// AnswerSource links an answer to the content digest that provided its
// information. Structurally identical to QuestionSource plus the opaque
// context description of which sections were employed.
type AnswerSource struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement;column:source_id"`
	AnswerID           int64           `gorm:"column:answer_id;index;not null"`
	Checksum           string          `gorm:"column:content_checksum;index;type:varchar(64);not null"`
	IsPrimarySource    bool            `gorm:"column:is_primary_source;not null;default:false"`
	ContributionWeight *score.Fraction `gorm:"column:contribution_weight"`
	ContextEmployed    *string         `gorm:"column:context_employed;type:text"`
	Validity           `gorm:"embedded"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (AnswerSource) TableName() string { return "faq_answer_sources" }

// NewQuestionSource constructs an open (valid) question-source link. The
// contribution weight is the only locally checkable invariant; all
// cross-entity references are contracts the owning process upholds.
func NewQuestionSource(questionID int64, checksum string, weight *float64) (*QuestionSource, error) {
	if questionID <= 0 {
		return nil, faqerrors.Validationf("question_id", "must reference a question, got %d", questionID)
	}
	if err := content.ValidateChecksum("content_checksum", checksum); err != nil {
		return nil, err
	}
	w, err := score.NewFractionPtr("contribution_weight", weight)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &QuestionSource{
		QuestionID:         questionID,
		Checksum:           checksum,
		ContributionWeight: w,
		Validity:           Validity{IsValid: true, ValidFrom: now},
		CreatedAt:          now,
	}, nil
}

// NewAnswerSource constructs an open (valid) answer-source link.
func NewAnswerSource(answerID int64, checksum string, weight *float64) (*AnswerSource, error) {
	if answerID <= 0 {
		return nil, faqerrors.Validationf("answer_id", "must reference an answer, got %d", answerID)
	}
	if err := content.ValidateChecksum("content_checksum", checksum); err != nil {
		return nil, err
	}
	w, err := score.NewFractionPtr("contribution_weight", weight)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &AnswerSource{
		AnswerID:           answerID,
		Checksum:           checksum,
		ContributionWeight: w,
		Validity:           Validity{IsValid: true, ValidFrom: now},
		CreatedAt:          now,
	}, nil
}

func validityProjection(m projection.Flat, v *Validity) {
	projection.SetBool(m, "is_valid", v.IsValid)
	projection.SetTime(m, "valid_from", v.ValidFrom)
	projection.SetOptTime(m, "valid_until", v.ValidUntil)
	if v.InvalidationReason != nil {
		projection.SetString(m, "invalidation_reason", string(*v.InvalidationReason))
	}
	projection.SetOptInt(m, "invalidated_by_change_id", v.InvalidatedByChangeID)
}

func validityFromProjection(m projection.Flat) (Validity, error) {
	var v Validity
	var err error
	if v.IsValid, err = projection.Bool(m, "is_valid"); err != nil {
		return v, err
	}
	if v.ValidFrom, err = projection.Time(m, "valid_from"); err != nil {
		return v, err
	}
	if v.ValidUntil, err = projection.OptTime(m, "valid_until"); err != nil {
		return v, err
	}
	if tag, err := projection.OptString(m, "invalidation_reason"); err != nil {
		return v, err
	} else if tag != nil {
		reason, ok := ParseInvalidationReason(*tag)
		if !ok {
			return v, faqerrors.Validationf("invalidation_reason", "unknown reason %q", *tag)
		}
		v.InvalidationReason = &reason
	}
	if v.InvalidatedByChangeID, err = projection.OptInt(m, "invalidated_by_change_id"); err != nil {
		return v, err
	}
	if v.ValidUntil != nil && v.InvalidationReason == nil {
		return v, faqerrors.Validationf("invalidation_reason", "closed window requires a reason")
	}
	return v, nil
}

// Projection returns the flat key-value form of the link.
func (s *QuestionSource) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetInt(m, "source_id", s.ID)
	projection.SetInt(m, "question_id", s.QuestionID)
	projection.SetString(m, "content_checksum", s.Checksum)
	projection.SetBool(m, "is_primary_source", s.IsPrimarySource)
	if s.ContributionWeight != nil {
		projection.SetFloat(m, "contribution_weight", s.ContributionWeight.Float())
	}
	validityProjection(m, &s.Validity)
	projection.SetTime(m, "created_at", s.CreatedAt)
	return m
}

// QuestionSourceFromProjection reconstructs a link from its flat projection.
func QuestionSourceFromProjection(m projection.Flat) (*QuestionSource, error) {
	id, err := projection.Int(m, "source_id")
	if err != nil {
		return nil, err
	}
	questionID, err := projection.Int(m, "question_id")
	if err != nil {
		return nil, err
	}
	checksum, err := projection.String(m, "content_checksum")
	if err != nil {
		return nil, err
	}
	weight, err := projection.OptFloat(m, "contribution_weight")
	if err != nil {
		return nil, err
	}
	s, err := NewQuestionSource(questionID, checksum, weight)
	if err != nil {
		return nil, err
	}
	s.ID = id
	if s.IsPrimarySource, err = projection.Bool(m, "is_primary_source"); err != nil {
		return nil, err
	}
	if s.Validity, err = validityFromProjection(m); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = projection.Time(m, "created_at"); err != nil {
		return nil, err
	}
	return s, nil
}

// Projection returns the flat key-value form of the link.
func (s *AnswerSource) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetInt(m, "source_id", s.ID)
	projection.SetInt(m, "answer_id", s.AnswerID)
	projection.SetString(m, "content_checksum", s.Checksum)
	projection.SetBool(m, "is_primary_source", s.IsPrimarySource)
	if s.ContributionWeight != nil {
		projection.SetFloat(m, "contribution_weight", s.ContributionWeight.Float())
	}
	projection.SetOptString(m, "context_employed", s.ContextEmployed)
	validityProjection(m, &s.Validity)
	projection.SetTime(m, "created_at", s.CreatedAt)
	return m
}

// AnswerSourceFromProjection reconstructs a link from its flat projection.
func AnswerSourceFromProjection(m projection.Flat) (*AnswerSource, error) {
	id, err := projection.Int(m, "source_id")
	if err != nil {
		return nil, err
	}
	answerID, err := projection.Int(m, "answer_id")
	if err != nil {
		return nil, err
	}
	checksum, err := projection.String(m, "content_checksum")
	if err != nil {
		return nil, err
	}
	weight, err := projection.OptFloat(m, "contribution_weight")
	if err != nil {
		return nil, err
	}
	s, err := NewAnswerSource(answerID, checksum, weight)
	if err != nil {
		return nil, err
	}
	s.ID = id
	if s.IsPrimarySource, err = projection.Bool(m, "is_primary_source"); err != nil {
		return nil, err
	}
	if s.ContextEmployed, err = projection.OptString(m, "context_employed"); err != nil {
		return nil, err
	}
	if s.Validity, err = validityFromProjection(m); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = projection.Time(m, "created_at"); err != nil {
		return nil, err
	}
	return s, nil
}
