package impact

import (
	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/projection"
	"github.com/knowbase/faqprov/pkg/score"
)

func optFracFloat(f *score.Fraction) *float64 {
	if f == nil {
		return nil
	}
	v := f.Float()
	return &v
}

// Projection returns the record's flat projection. Zero-valued question and
// answer references mean "not targeted" and are omitted.
func (r *Record) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetInt(m, "impact_id", r.ImpactID)
	projection.SetInt(m, "change_id", r.ChangeID)
	projection.SetOptInt(m, "diff_id", r.DiffID)
	if r.QuestionID > 0 {
		projection.SetInt(m, "question_id", r.QuestionID)
	}
	if r.AnswerID > 0 {
		projection.SetInt(m, "answer_id", r.AnswerID)
	}
	projection.SetFloat(m, "overall_impact_score", r.OverallImpactScore.Float())
	projection.SetOptFloat(m, "lexical_similarity", optFracFloat(r.LexicalSimilarity))
	projection.SetOptFloat(m, "semantic_similarity", optFracFloat(r.SemanticSimilarity))
	projection.SetOptFloat(m, "keyword_overlap", optFracFloat(r.KeywordOverlap))
	projection.SetOptFloat(m, "phrase_match_score", optFracFloat(r.PhraseMatchScore))
	projection.SetBool(m, "is_affected", r.IsAffected)
	projection.SetString(m, "impact_level", string(r.ImpactLevel))
	projection.SetOptString(m, "impact_reason", r.ImpactReason)
	if len(r.MatchedChanges) > 0 {
		m["matched_changes"] = map[string]any(r.MatchedChanges)
	}
	projection.SetString(m, "analysis_method", string(r.AnalysisMethod))
	projection.SetOptString(m, "analysis_version", r.AnalysisVersion)
	projection.SetOptFloat(m, "confidence", optFracFloat(r.Confidence))
	projection.SetTime(m, "analyzed_at", r.AnalyzedAt)
	return m
}

// FromProjection reconstructs a record from its flat projection, re-running
// field validation.
func FromProjection(m projection.Flat) (*Record, error) {
	rec := &Record{}

	var err error
	if rec.ImpactID, err = projection.Int(m, "impact_id"); err != nil {
		return nil, err
	}
	if rec.ChangeID, err = projection.Int(m, "change_id"); err != nil {
		return nil, err
	}
	if rec.DiffID, err = projection.OptInt(m, "diff_id"); err != nil {
		return nil, err
	}
	if qid, err := projection.OptInt(m, "question_id"); err != nil {
		return nil, err
	} else if qid != nil {
		rec.QuestionID = *qid
	}
	if aid, err := projection.OptInt(m, "answer_id"); err != nil {
		return nil, err
	} else if aid != nil {
		rec.AnswerID = *aid
	}

	overall, err := projection.Float(m, "overall_impact_score")
	if err != nil {
		return nil, err
	}
	if rec.OverallImpactScore, err = score.NewFraction("overall_impact_score", overall); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		key  string
		dest **score.Fraction
	}{
		{"lexical_similarity", &rec.LexicalSimilarity},
		{"semantic_similarity", &rec.SemanticSimilarity},
		{"keyword_overlap", &rec.KeywordOverlap},
		{"phrase_match_score", &rec.PhraseMatchScore},
		{"confidence", &rec.Confidence},
	} {
		v, err := projection.OptFloat(m, f.key)
		if err != nil {
			return nil, err
		}
		if *f.dest, err = score.NewFractionPtr(f.key, v); err != nil {
			return nil, err
		}
	}

	if rec.IsAffected, err = projection.Bool(m, "is_affected"); err != nil {
		return nil, err
	}
	levelTag, err := projection.String(m, "impact_level")
	if err != nil {
		return nil, err
	}
	level, ok := ParseLevel(levelTag)
	if !ok {
		return nil, faqerrors.Validationf("impact_level", "unknown level %q", levelTag)
	}
	rec.ImpactLevel = level

	if rec.ImpactReason, err = projection.OptString(m, "impact_reason"); err != nil {
		return nil, err
	}
	if mc, ok := m["matched_changes"].(map[string]any); ok {
		rec.MatchedChanges = mc
	}

	methodTag, err := projection.String(m, "analysis_method")
	if err != nil {
		return nil, err
	}
	method, ok := ParseMethod(methodTag)
	if !ok {
		return nil, faqerrors.Validationf("analysis_method", "unknown method %q", methodTag)
	}
	rec.AnalysisMethod = method

	if rec.AnalysisVersion, err = projection.OptString(m, "analysis_version"); err != nil {
		return nil, err
	}
	if rec.AnalyzedAt, err = projection.Time(m, "analyzed_at"); err != nil {
		return nil, err
	}
	return rec, nil
}
