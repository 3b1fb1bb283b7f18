package change

import (
	"github.com/knowbase/faqprov/pkg/dbtypes"
	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/projection"
)

// Projection returns the flat key-value form of the change record.
func (r *Record) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetInt(m, "change_id", r.ID)
	projection.SetString(m, "content_checksum", r.Checksum)
	projection.SetOptString(m, "previous_checksum", r.PreviousChecksum)
	projection.SetString(m, "file_name", r.FileName)
	projection.SetOptInt(m, "page_number", r.PageNumber)
	projection.SetOptString(m, "section_name", r.SectionName)
	projection.SetBool(m, "requires_faq_regeneration", r.RequiresFAQRegen)
	if r.ChangeType != nil {
		projection.SetString(m, "change_type", string(*r.ChangeType))
	}
	if r.SimilarityScore != nil {
		projection.SetFloat(m, "similarity_score", r.SimilarityScore.Float())
	}
	projection.SetOptString(m, "similarity_method", r.SimilarityMethod)
	projection.SetInt(m, "total_faqs_at_risk", r.TotalFAQsAtRisk)
	projection.SetInt(m, "affected_question_count", r.AffectedQuestions)
	projection.SetInt(m, "affected_answer_count", r.AffectedAnswers)
	projection.SetString(m, "detection_run_id", r.DetectionRunID)
	projection.SetTime(m, "detection_timestamp", r.DetectionTimestamp)
	projection.SetOptTime(m, "detection_period_start", r.DetectionStart)
	projection.SetOptTime(m, "source_modified_at", r.SourceModifiedAt)
	projection.SetOptString(m, "domain", r.Domain)
	projection.SetOptString(m, "service", r.Service)
	return m
}

// FromProjection reconstructs a change record from its flat projection.
func FromProjection(m projection.Flat) (*Record, error) {
	checksum, err := projection.String(m, "content_checksum")
	if err != nil {
		return nil, err
	}
	previous, err := projection.OptString(m, "previous_checksum")
	if err != nil {
		return nil, err
	}
	runID, err := projection.String(m, "detection_run_id")
	if err != nil {
		return nil, err
	}
	similarity, err := projection.OptFloat(m, "similarity_score")
	if err != nil {
		return nil, err
	}
	r, err := NewRecord(checksum, previous, runID, similarity)
	if err != nil {
		return nil, err
	}
	if r.ID, err = projection.Int(m, "change_id"); err != nil {
		return nil, err
	}
	if r.FileName, err = projection.String(m, "file_name"); err != nil {
		return nil, err
	}
	if r.PageNumber, err = projection.OptInt(m, "page_number"); err != nil {
		return nil, err
	}
	if r.SectionName, err = projection.OptString(m, "section_name"); err != nil {
		return nil, err
	}
	if r.RequiresFAQRegen, err = projection.Bool(m, "requires_faq_regeneration"); err != nil {
		return nil, err
	}
	if tag, err := projection.OptString(m, "change_type"); err != nil {
		return nil, err
	} else if tag != nil {
		t, ok := ParseType(*tag)
		if !ok {
			return nil, faqerrors.Validationf("change_type", "unknown change type %q", *tag)
		}
		r.ChangeType = &t
	}
	if r.SimilarityMethod, err = projection.OptString(m, "similarity_method"); err != nil {
		return nil, err
	}
	totalAtRisk, err := projection.Int(m, "total_faqs_at_risk")
	if err != nil {
		return nil, err
	}
	affectedQ, err := projection.Int(m, "affected_question_count")
	if err != nil {
		return nil, err
	}
	affectedA, err := projection.Int(m, "affected_answer_count")
	if err != nil {
		return nil, err
	}
	if err := r.SetImpactCounts(totalAtRisk, affectedQ, affectedA); err != nil {
		return nil, err
	}
	if r.DetectionTimestamp, err = projection.Time(m, "detection_timestamp"); err != nil {
		return nil, err
	}
	if r.DetectionStart, err = projection.OptTime(m, "detection_period_start"); err != nil {
		return nil, err
	}
	if r.SourceModifiedAt, err = projection.OptTime(m, "source_modified_at"); err != nil {
		return nil, err
	}
	if r.Domain, err = projection.OptString(m, "domain"); err != nil {
		return nil, err
	}
	if r.Service, err = projection.OptString(m, "service"); err != nil {
		return nil, err
	}
	return r, nil
}

// Projection returns the flat key-value form of the diff record.
func (d *Diff) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetInt(m, "diff_id", d.ID)
	projection.SetInt(m, "change_id", d.ChangeID)
	projection.SetString(m, "old_checksum", d.OldChecksum)
	projection.SetString(m, "new_checksum", d.NewChecksum)
	projection.SetTime(m, "computed_at", d.ComputedAt)
	if d.DiffType != nil {
		projection.SetString(m, "diff_type", string(*d.DiffType))
	}
	if d.DiffAlgorithm != nil {
		projection.SetString(m, "diff_algorithm", string(*d.DiffAlgorithm))
	}
	projection.SetOptInt(m, "additions_count", d.AdditionsCount)
	projection.SetOptInt(m, "deletions_count", d.DeletionsCount)
	projection.SetOptInt(m, "modifications_count", d.ModificationsCount)
	projection.SetOptInt(m, "total_changes", d.TotalChanges)
	if d.ChangePercentage != nil {
		projection.SetFloat(m, "change_percentage", d.ChangePercentage.Float())
	}
	if d.DiffData != nil {
		m["diff_data"] = map[string]any(d.DiffData)
	}
	for key, flag := range map[string]*bool{
		"contains_numeric_changes":     d.ContainsNumericChanges,
		"contains_date_changes":        d.ContainsDateChanges,
		"contains_policy_changes":      d.ContainsPolicyChanges,
		"contains_eligibility_changes": d.ContainsEligibilityChanges,
	} {
		if flag != nil {
			projection.SetBool(m, key, *flag)
		}
	}
	if d.ChangedPhrases != nil {
		m["changed_phrases"] = []string(d.ChangedPhrases)
	}
	return m
}

// DiffFromProjection reconstructs a diff record from its flat projection.
func DiffFromProjection(m projection.Flat) (*Diff, error) {
	changeID, err := projection.Int(m, "change_id")
	if err != nil {
		return nil, err
	}
	oldChecksum, err := projection.String(m, "old_checksum")
	if err != nil {
		return nil, err
	}
	newChecksum, err := projection.String(m, "new_checksum")
	if err != nil {
		return nil, err
	}
	pct, err := projection.OptFloat(m, "change_percentage")
	if err != nil {
		return nil, err
	}
	d, err := NewDiff(changeID, oldChecksum, newChecksum, pct)
	if err != nil {
		return nil, err
	}
	if d.ID, err = projection.Int(m, "diff_id"); err != nil {
		return nil, err
	}
	if d.ComputedAt, err = projection.Time(m, "computed_at"); err != nil {
		return nil, err
	}
	if tag, err := projection.OptString(m, "diff_type"); err != nil {
		return nil, err
	} else if tag != nil {
		t, ok := ParseDiffType(*tag)
		if !ok {
			return nil, faqerrors.Validationf("diff_type", "unknown diff type %q", *tag)
		}
		d.DiffType = &t
	}
	if tag, err := projection.OptString(m, "diff_algorithm"); err != nil {
		return nil, err
	} else if tag != nil {
		a, ok := ParseDiffAlgorithm(*tag)
		if !ok {
			return nil, faqerrors.Validationf("diff_algorithm", "unknown diff algorithm %q", *tag)
		}
		d.DiffAlgorithm = &a
	}
	if d.AdditionsCount, err = projection.OptInt(m, "additions_count"); err != nil {
		return nil, err
	}
	if d.DeletionsCount, err = projection.OptInt(m, "deletions_count"); err != nil {
		return nil, err
	}
	if d.ModificationsCount, err = projection.OptInt(m, "modifications_count"); err != nil {
		return nil, err
	}
	if d.TotalChanges, err = projection.OptInt(m, "total_changes"); err != nil {
		return nil, err
	}
	if raw, ok := m["diff_data"]; ok {
		data, ok := raw.(map[string]any)
		if !ok {
			return nil, faqerrors.Validationf("diff_data", "expected map, got %T", raw)
		}
		d.DiffData = dbtypes.JSONAny(data)
	}
	if d.ContainsNumericChanges, err = projection.OptBool(m, "contains_numeric_changes"); err != nil {
		return nil, err
	}
	if d.ContainsDateChanges, err = projection.OptBool(m, "contains_date_changes"); err != nil {
		return nil, err
	}
	if d.ContainsPolicyChanges, err = projection.OptBool(m, "contains_policy_changes"); err != nil {
		return nil, err
	}
	if d.ContainsEligibilityChanges, err = projection.OptBool(m, "contains_eligibility_changes"); err != nil {
		return nil, err
	}
	if raw, ok := m["changed_phrases"]; ok {
		switch phrases := raw.(type) {
		case []string:
			d.ChangedPhrases = dbtypes.JSONStringSlice(phrases)
		case []any:
			out := make(dbtypes.JSONStringSlice, 0, len(phrases))
			for _, p := range phrases {
				s, ok := p.(string)
				if !ok {
					return nil, faqerrors.Validationf("changed_phrases", "expected string element, got %T", p)
				}
				out = append(out, s)
			}
			d.ChangedPhrases = out
		default:
			return nil, faqerrors.Validationf("changed_phrases", "expected string list, got %T", raw)
		}
	}
	return d, nil
}
