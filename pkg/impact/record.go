package impact

import (
	"time"

	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/score"
)

// Params is the raw input to NewRecord. The overall score, affected
// flag and level are derived, never supplied.
type Params struct {
	ChangeID   int64
	DiffID     *int64
	QuestionID int64
	AnswerID   int64

	Sub SubScores

	Reason         *string
	MatchedChanges map[string]any
	Confidence     *float64

	AnalyzedAt time.Time
}

// NewRecord derives a verdict from sub-scores and configuration. The
// overall score is the weighted mean of the present signals; the
// affected flag and level follow from the configured thresholds, so a
// constructed record can never disagree with them. A record that
// names neither a question nor an answer is rejected, as is an
// affected verdict without a reason.
func NewRecord(p Params, cfg Config) (*Record, error) {
	if p.ChangeID <= 0 {
		return nil, faqerrors.Validationf("change_id", "must be positive, got %d", p.ChangeID)
	}
	if p.QuestionID < 0 {
		return nil, faqerrors.Validationf("question_id", "must not be negative, got %d", p.QuestionID)
	}
	if p.AnswerID < 0 {
		return nil, faqerrors.Validationf("answer_id", "must not be negative, got %d", p.AnswerID)
	}
	if p.QuestionID == 0 && p.AnswerID == 0 {
		return nil, faqerrors.Validationf("question_id", "record must target a question or an answer")
	}

	confidence, err := score.NewFractionPtr("confidence", p.Confidence)
	if err != nil {
		return nil, err
	}

	overall, _ := cfg.Weights.Combine(p.Sub)
	affected := cfg.Thresholds.Affects(overall.Float())
	level := cfg.Thresholds.LevelFor(overall.Float())

	if affected && (p.Reason == nil || *p.Reason == "") {
		return nil, faqerrors.Validationf("impact_reason", "required when the pairing is affected")
	}

	at := p.AnalyzedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	rec := &Record{
		ChangeID:           p.ChangeID,
		DiffID:             p.DiffID,
		QuestionID:         p.QuestionID,
		AnswerID:           p.AnswerID,
		OverallImpactScore: overall,
		LexicalSimilarity:  p.Sub.Lexical,
		SemanticSimilarity: p.Sub.Semantic,
		KeywordOverlap:     p.Sub.Keyword,
		PhraseMatchScore:   p.Sub.Phrase,
		IsAffected:         affected,
		ImpactLevel:        level,
		ImpactReason:       p.Reason,
		AnalysisMethod:     MethodRuleBased,
		Confidence:         confidence,
		AnalyzedAt:         at,
	}
	if cfg.Version != "" {
		v := cfg.Version
		rec.AnalysisVersion = &v
	}
	if len(p.MatchedChanges) > 0 {
		rec.MatchedChanges = p.MatchedChanges
	}
	return rec, nil
}

// Validate checks a record against the thresholds that are supposed
// to have produced it. It catches records whose stored verdict
// disagrees with their stored score, which indicates corruption or a
// write that bypassed NewRecord.
func (r *Record) Validate(t Thresholds) error {
	if r.ChangeID <= 0 {
		return faqerrors.Validationf("change_id", "must be positive, got %d", r.ChangeID)
	}
	if r.QuestionID == 0 && r.AnswerID == 0 {
		return faqerrors.Validationf("question_id", "record must target a question or an answer")
	}
	if _, err := score.NewFraction("overall_impact_score", r.OverallImpactScore.Float()); err != nil {
		return err
	}
	if _, ok := ParseLevel(string(r.ImpactLevel)); !ok {
		return faqerrors.Validationf("impact_level", "unknown level %q", r.ImpactLevel)
	}
	if _, ok := ParseMethod(string(r.AnalysisMethod)); !ok {
		return faqerrors.Validationf("analysis_method", "unknown method %q", r.AnalysisMethod)
	}
	if want := t.Affects(r.OverallImpactScore.Float()); r.IsAffected != want {
		return faqerrors.Consistencyf("impact_affected_mismatch",
			"is_affected=%v disagrees with score %v against cutoff %v",
			r.IsAffected, r.OverallImpactScore.Float(), t.Affected)
	}
	if want := t.LevelFor(r.OverallImpactScore.Float()); r.ImpactLevel != want {
		return faqerrors.Consistencyf("impact_level_mismatch",
			"impact_level=%s disagrees with score %v, expected %s",
			r.ImpactLevel, r.OverallImpactScore.Float(), want)
	}
	if r.IsAffected && (r.ImpactReason == nil || *r.ImpactReason == "") {
		return faqerrors.Consistencyf("impact_reason_missing",
			"affected record %d has no impact_reason", r.ImpactID)
	}
	return nil
}
