// Package change models detected content changes and the structured diffs
// between content versions. The diff-computation algorithm is an external
// collaborator: this layer validates shape and numeric ranges only, and
// treats diff content as an opaque payload.
package change

import (
	"time"

	"github.com/knowbase/faqprov/pkg/content"
	"github.com/knowbase/faqprov/pkg/dbtypes"
	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/score"
)

// Record is one detected content change, belonging to exactly one
// detection run.
type Record struct {
	ID                 int64   `gorm:"primaryKey;autoIncrement;column:change_id"`
	Checksum           string  `gorm:"column:content_checksum;index;type:varchar(64);not null"`
	PreviousChecksum   *string `gorm:"column:previous_checksum;type:varchar(64)"`
	FileName           string  `gorm:"column:file_name"`
	PageNumber         *int64  `gorm:"column:page_number"`
	SectionName        *string `gorm:"column:section_name"`
	RequiresFAQRegen   bool    `gorm:"column:requires_faq_regeneration;not null;default:false"`
	ChangeType         *Type   `gorm:"column:change_type"`
	SimilarityScore    *score.Fraction `gorm:"column:similarity_score"`
	SimilarityMethod   *string `gorm:"column:similarity_method"`
	TotalFAQsAtRisk    int64   `gorm:"column:total_faqs_at_risk;not null;default:0"`
	AffectedQuestions  int64   `gorm:"column:affected_question_count;not null;default:0"`
	AffectedAnswers    int64   `gorm:"column:affected_answer_count;not null;default:0"`
	DetectionRunID     string  `gorm:"column:detection_run_id;index;type:varchar(36);not null"`
	DetectionTimestamp time.Time  `gorm:"column:detection_timestamp;not null"`
	DetectionStart     *time.Time `gorm:"column:detection_period_start"`
	SourceModifiedAt   *time.Time `gorm:"column:source_modified_at"`
	Domain             *string `gorm:"column:domain"`
	Service            *string `gorm:"column:service"`
}

// TableName returns the GORM table name.
func (Record) TableName() string { return "content_change_log" }

// NewRecord constructs a change record. Both digests, when present, must be
// 64 hex chars; the similarity score, when present, must be in [0,1].
func NewRecord(checksum string, previous *string, detectionRunID string, similarity *float64) (*Record, error) {
	if err := content.ValidateChecksum("content_checksum", checksum); err != nil {
		return nil, err
	}
	if previous != nil {
		if err := content.ValidateChecksum("previous_checksum", *previous); err != nil {
			return nil, err
		}
	}
	if detectionRunID == "" {
		return nil, faqerrors.Validationf("detection_run_id", "must not be empty")
	}
	sim, err := score.NewFractionPtr("similarity_score", similarity)
	if err != nil {
		return nil, err
	}
	return &Record{
		Checksum:           checksum,
		PreviousChecksum:   previous,
		DetectionRunID:     detectionRunID,
		SimilarityScore:    sim,
		DetectionTimestamp: time.Now().UTC(),
	}, nil
}

// SetImpactCounts records the at-risk and affected counts. Counts must be
// non-negative; total_faqs_at_risk >= affected sums is a soft expectation
// only, never enforced here.
func (r *Record) SetImpactCounts(totalAtRisk, affectedQuestions, affectedAnswers int64) error {
	if totalAtRisk < 0 {
		return faqerrors.Validationf("total_faqs_at_risk", "must be >= 0, got %d", totalAtRisk)
	}
	if affectedQuestions < 0 {
		return faqerrors.Validationf("affected_question_count", "must be >= 0, got %d", affectedQuestions)
	}
	if affectedAnswers < 0 {
		return faqerrors.Validationf("affected_answer_count", "must be >= 0, got %d", affectedAnswers)
	}
	r.TotalFAQsAtRisk = totalAtRisk
	r.AffectedQuestions = affectedQuestions
	r.AffectedAnswers = affectedAnswers
	return nil
}

// Diff is the structured diff for one change: what actually changed between
// two content versions. Many-to-one with its change so recomputation with a
// different algorithm never overwrites an earlier diff.
type Diff struct {
	ID          int64  `gorm:"primaryKey;autoIncrement;column:diff_id"`
	ChangeID    int64  `gorm:"column:change_id;index;not null"`
	OldChecksum string `gorm:"column:old_checksum;type:varchar(64);not null"`
	NewChecksum string `gorm:"column:new_checksum;type:varchar(64);not null"`
	ComputedAt  time.Time `gorm:"column:computed_at;not null"`

	DiffType      *DiffType      `gorm:"column:diff_type"`
	DiffAlgorithm *DiffAlgorithm `gorm:"column:diff_algorithm"`

	AdditionsCount     *int64         `gorm:"column:additions_count"`
	DeletionsCount     *int64         `gorm:"column:deletions_count"`
	ModificationsCount *int64         `gorm:"column:modifications_count"`
	TotalChanges       *int64         `gorm:"column:total_changes"`
	ChangePercentage   *score.Percent `gorm:"column:change_percentage"`

	// DiffData is the raw diff output: chunks, line numbers, old/new text.
	// Its internal grammar is the diff service's concern.
	DiffData dbtypes.JSONAny `gorm:"column:diff_data;type:text"`

	ContainsNumericChanges     *bool `gorm:"column:contains_numeric_changes"`
	ContainsDateChanges        *bool `gorm:"column:contains_date_changes"`
	ContainsPolicyChanges      *bool `gorm:"column:contains_policy_changes"`
	ContainsEligibilityChanges *bool `gorm:"column:contains_eligibility_changes"`

	// ChangedPhrases feeds the downstream lexical matching.
	ChangedPhrases dbtypes.JSONStringSlice `gorm:"column:changed_phrases;type:text"`
}

// TableName returns the GORM table name.
func (Diff) TableName() string { return "content_diffs" }

// NewDiff constructs a diff record for a change. The change percentage, when
// present, must be in [0,100].
func NewDiff(changeID int64, oldChecksum, newChecksum string, changePct *float64) (*Diff, error) {
	if changeID <= 0 {
		return nil, faqerrors.Validationf("change_id", "must reference a change, got %d", changeID)
	}
	if err := content.ValidateChecksum("old_checksum", oldChecksum); err != nil {
		return nil, err
	}
	if err := content.ValidateChecksum("new_checksum", newChecksum); err != nil {
		return nil, err
	}
	pct, err := score.NewPercentPtr("change_percentage", changePct)
	if err != nil {
		return nil, err
	}
	return &Diff{
		ChangeID:         changeID,
		OldChecksum:      oldChecksum,
		NewChecksum:      newChecksum,
		ChangePercentage: pct,
		ComputedAt:       time.Now().UTC(),
	}, nil
}

// HasRecordedChanges reports whether the diff carries any change at all,
// which decides modified vs unchanged classification.
func (d *Diff) HasRecordedChanges() bool {
	for _, c := range []*int64{d.AdditionsCount, d.DeletionsCount, d.ModificationsCount, d.TotalChanges} {
		if c != nil && *c > 0 {
			return true
		}
	}
	return len(d.ChangedPhrases) > 0
}
