package impact

import (
	"time"

	"github.com/knowbase/faqprov/pkg/dbtypes"
	"github.com/knowbase/faqprov/pkg/score"
)

// Record is one analysis verdict for a (change, question, answer)
// pairing. QuestionID and AnswerID use zero for "not targeted"; the
// pair key (change_id, question_id, answer_id) is unique, so
// re-analyzing the same pairing replaces the previous verdict instead
// of accumulating rows.
type Record struct {
	ImpactID int64 `gorm:"column:impact_id;primaryKey;autoIncrement"`

	ChangeID int64  `gorm:"column:change_id;not null;uniqueIndex:idx_impact_pair,priority:1"`
	DiffID   *int64 `gorm:"column:diff_id"`

	QuestionID int64 `gorm:"column:question_id;not null;default:0;uniqueIndex:idx_impact_pair,priority:2"`
	AnswerID   int64 `gorm:"column:answer_id;not null;default:0;uniqueIndex:idx_impact_pair,priority:3"`

	OverallImpactScore score.Fraction  `gorm:"column:overall_impact_score;not null"`
	LexicalSimilarity  *score.Fraction `gorm:"column:lexical_similarity"`
	SemanticSimilarity *score.Fraction `gorm:"column:semantic_similarity"`
	KeywordOverlap     *score.Fraction `gorm:"column:keyword_overlap"`
	PhraseMatchScore   *score.Fraction `gorm:"column:phrase_match_score"`

	IsAffected   bool    `gorm:"column:is_affected;not null"`
	ImpactLevel  Level   `gorm:"column:impact_level;type:varchar(16);not null"`
	ImpactReason *string `gorm:"column:impact_reason;type:text"`

	MatchedChanges dbtypes.JSONAny `gorm:"column:matched_changes;type:text"`

	AnalysisMethod  Method          `gorm:"column:analysis_method;type:varchar(32);not null"`
	AnalysisVersion *string         `gorm:"column:analysis_version;type:varchar(64)"`
	Confidence      *score.Fraction `gorm:"column:confidence"`

	AnalyzedAt time.Time `gorm:"column:analyzed_at;not null"`
}

func (Record) TableName() string {
	return "faq_impact_analysis"
}

// TargetsQuestion reports whether the record names a question.
func (r *Record) TargetsQuestion() bool { return r.QuestionID > 0 }

// TargetsAnswer reports whether the record names an answer.
func (r *Record) TargetsAnswer() bool { return r.AnswerID > 0 }
