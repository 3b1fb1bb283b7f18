package impact

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/knowbase/faqprov/pkg/audit"
	"github.com/knowbase/faqprov/pkg/change"
	"github.com/knowbase/faqprov/pkg/faq"
	"github.com/knowbase/faqprov/pkg/provenance"
	"github.com/knowbase/faqprov/pkg/score"
)

// Analyzer walks the provenance graph for a detected change, scores every
// linked question and answer, and applies the verdicts: records are
// upserted, affected links get their validity windows closed, and affected
// FAQ components are marked invalidated. Scoring is deterministic: the same
// change, diff and FAQ text always produce the same scores.
type Analyzer struct {
	cfg     Config
	changes *change.Store
	faqs    *faq.Store
	links   *provenance.Store
	impacts *Store
	audits  *audit.Store
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer. The audit store may be nil, in which
// case mutations go unaudited.
func NewAnalyzer(cfg Config, changes *change.Store, faqs *faq.Store,
	links *provenance.Store, impacts *Store, audits *audit.Store,
	logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		cfg:     cfg,
		changes: changes,
		faqs:    faqs,
		links:   links,
		impacts: impacts,
		audits:  audits,
		logger:  logger,
	}
}

// Result summarizes one analysis pass over a change.
type Result struct {
	ChangeID          int64
	TotalAtRisk       int64
	AffectedQuestions int64
	AffectedAnswers   int64
	Records           []*Record
}

// AnalyzeChange analyzes every FAQ component derived from the changed
// content. Link lookups target the previous digest when one exists (the
// derived FAQs reference the content as it was), falling back to the
// change's own digest for deletions. Re-running the analysis replaces
// earlier verdicts; already-closed links stay closed without a second
// audit entry.
func (a *Analyzer) AnalyzeChange(ctx context.Context, changeID int64, actorName string) (*Result, error) {
	rec, err := a.changes.Get(changeID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("change %d not found", changeID)
	}

	diff, err := a.changes.LatestDiffForChange(changeID)
	if err != nil {
		return nil, err
	}

	deleted := rec.ChangeType != nil && *rec.ChangeType == change.TypeDeletedContent

	target := rec.Checksum
	if rec.PreviousChecksum != nil {
		target = *rec.PreviousChecksum
	}

	qLinks, err := a.links.ListQuestionSourcesByChecksum(target, true)
	if err != nil {
		return nil, err
	}
	aLinks, err := a.links.ListAnswerSourcesByChecksum(target, true)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ChangeID:    changeID,
		TotalAtRisk: int64(len(qLinks) + len(aLinks)),
	}

	for i := range qLinks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		link := &qLinks[i]
		q, err := a.faqs.GetQuestion(link.QuestionID)
		if err != nil {
			return nil, err
		}
		if q == nil {
			a.logger.Warn("question link points at missing question",
				"sourceId", link.ID, "questionId", link.QuestionID)
			continue
		}
		verdict, err := a.analyzeOne(rec, diff, q.Text, q.ID, 0, deleted, actorName)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, verdict)
		if verdict.IsAffected {
			result.AffectedQuestions++
			if err := a.closeQuestionLink(link, rec, deleted, actorName); err != nil {
				return nil, err
			}
			if q.Status == faq.StatusActive {
				if err := a.invalidateQuestion(q, rec, actorName); err != nil {
					return nil, err
				}
			}
		}
	}

	for i := range aLinks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		link := &aLinks[i]
		ans, err := a.faqs.GetAnswer(link.AnswerID)
		if err != nil {
			return nil, err
		}
		if ans == nil {
			a.logger.Warn("answer link points at missing answer",
				"sourceId", link.ID, "answerId", link.AnswerID)
			continue
		}
		verdict, err := a.analyzeOne(rec, diff, ans.Text, 0, ans.ID, deleted, actorName)
		if err != nil {
			return nil, err
		}
		result.Records = append(result.Records, verdict)
		if verdict.IsAffected {
			result.AffectedAnswers++
			if err := a.closeAnswerLink(link, rec, deleted, actorName); err != nil {
				return nil, err
			}
			if ans.Status == faq.StatusActive {
				if err := a.invalidateAnswer(ans, rec, actorName); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := a.updateCounts(rec, result, actorName); err != nil {
		return nil, err
	}

	a.logger.Info("change analyzed",
		"changeId", changeID,
		"atRisk", result.TotalAtRisk,
		"affectedQuestions", result.AffectedQuestions,
		"affectedAnswers", result.AffectedAnswers)
	return result, nil
}

// analyzeOne scores one FAQ component against the change and persists the
// verdict.
func (a *Analyzer) analyzeOne(rec *change.Record, diff *change.Diff, text string,
	questionID, answerID int64, deleted bool, actorName string) (*Record, error) {

	sub, matched, confidence := a.subScores(rec, diff, text, deleted)
	overall, _ := a.cfg.Weights.Combine(sub)

	var reason *string
	if a.cfg.Thresholds.Affects(overall.Float()) {
		r := a.reasonFor(sub, matched, overall.Float(), deleted)
		reason = &r
	}

	params := Params{
		ChangeID:       rec.ID,
		QuestionID:     questionID,
		AnswerID:       answerID,
		Sub:            sub,
		Reason:         reason,
		MatchedChanges: matched,
		Confidence:     &confidence,
	}
	if diff != nil {
		params.DiffID = &diff.ID
	}

	verdict, err := NewRecord(params, a.cfg)
	if err != nil {
		return nil, err
	}
	if err := a.impacts.Upsert(verdict); err != nil {
		return nil, err
	}

	a.auditEntry(Record{}.TableName(),
		fmt.Sprintf("%d:%d:%d", rec.ID, questionID, answerID),
		audit.ActionInsert, actorName, rec.DetectionRunID,
		nil, verdict.Projection())
	return verdict, nil
}

// subScores derives the per-signal scores for one FAQ text. Deleted content
// scores full lexical and phrase impact regardless of text. When the diff
// carries changed phrases they drive all three lexical signals; otherwise a
// single conservative lexical signal is derived from the recorded
// similarity or change percentage.
func (a *Analyzer) subScores(rec *change.Record, diff *change.Diff, text string,
	deleted bool) (SubScores, map[string]any, float64) {

	if deleted {
		return SubScores{
			Lexical: fracPtr(1),
			Phrase:  fracPtr(1),
		}, map[string]any{"content_deleted": true}, 1.0
	}

	var phrases []string
	if diff != nil {
		phrases = diff.ChangedPhrases
	}

	if len(phrases) == 0 {
		var base float64
		basis := "unknown_change_extent"
		switch {
		case rec.SimilarityScore != nil:
			base = 1 - rec.SimilarityScore.Float()
			basis = "similarity_score"
		case diff != nil && diff.ChangePercentage != nil:
			base = diff.ChangePercentage.Float() / 100
			basis = "change_percentage"
		default:
			base = 1
		}
		return SubScores{Lexical: fracPtr(base)},
			map[string]any{"basis": basis}, 0.5
	}

	textTokens := tokenize(text)
	phraseTokens := tokenize(joinPhrases(phrases))
	matched := matchedPhrases(text, phrases)

	sub := SubScores{
		Lexical: fracPtr(jaccard(tokenSet(textTokens), tokenSet(phraseTokens))),
		Keyword: fracPtr(jaccard(keywordSet(textTokens), keywordSet(phraseTokens))),
		Phrase:  fracPtr(float64(len(matched)) / float64(len(phrases))),
	}
	info := map[string]any{
		"changed_phrases_total":   len(phrases),
		"changed_phrases_matched": len(matched),
	}
	if len(matched) > 0 {
		info["matched_phrases"] = matched
	}
	return sub, info, 0.8
}

func (a *Analyzer) reasonFor(sub SubScores, matched map[string]any, overall float64, deleted bool) string {
	if deleted {
		return "source content deleted; derived FAQ can no longer be verified"
	}
	if total, ok := matched["changed_phrases_total"].(int); ok {
		hit, _ := matched["changed_phrases_matched"].(int)
		return fmt.Sprintf("matched %d of %d changed phrases, overall impact %.2f", hit, total, overall)
	}
	return fmt.Sprintf("content modified without phrase evidence, conservative impact %.2f", overall)
}

func (a *Analyzer) closeQuestionLink(link *provenance.QuestionSource, rec *change.Record,
	deleted bool, actorName string) error {
	closure, action := a.closure(rec, deleted)
	closed, err := a.links.CloseQuestionSource(link.ID, closure)
	if err != nil {
		return err
	}
	if !closed {
		// Another writer already closed the window; no second audit entry.
		return nil
	}
	a.auditEntry(provenance.QuestionSource{}.TableName(),
		strconv.FormatInt(link.ID, 10), action, actorName, rec.DetectionRunID,
		link.Projection(), map[string]any{
			"is_valid":                 false,
			"invalidation_reason":      string(closure.Reason),
			"invalidated_by_change_id": rec.ID,
		})
	return nil
}

func (a *Analyzer) closeAnswerLink(link *provenance.AnswerSource, rec *change.Record,
	deleted bool, actorName string) error {
	closure, action := a.closure(rec, deleted)
	closed, err := a.links.CloseAnswerSource(link.ID, closure)
	if err != nil {
		return err
	}
	if !closed {
		return nil
	}
	a.auditEntry(provenance.AnswerSource{}.TableName(),
		strconv.FormatInt(link.ID, 10), action, actorName, rec.DetectionRunID,
		link.Projection(), map[string]any{
			"is_valid":                 false,
			"invalidation_reason":      string(closure.Reason),
			"invalidated_by_change_id": rec.ID,
		})
	return nil
}

func (a *Analyzer) closure(rec *change.Record, deleted bool) (provenance.Closure, audit.Action) {
	reason := provenance.ReasonSelectiveImpact
	action := audit.ActionSelectiveInvalidate
	if deleted {
		reason = provenance.ReasonContentDeleted
		action = audit.ActionInvalidate
	}
	changeID := rec.ID
	return provenance.Closure{Reason: reason, ChangeID: &changeID}, action
}

func (a *Analyzer) invalidateQuestion(q *faq.Question, rec *change.Record, actorName string) error {
	if err := a.faqs.SetQuestionStatus(q.ID, faq.StatusInvalidated, actorName); err != nil {
		return err
	}
	a.auditEntry(faq.Question{}.TableName(),
		strconv.FormatInt(q.ID, 10), audit.ActionUpdate, actorName, rec.DetectionRunID,
		map[string]any{"status": string(q.Status)},
		map[string]any{"status": string(faq.StatusInvalidated)})
	return nil
}

func (a *Analyzer) invalidateAnswer(ans *faq.Answer, rec *change.Record, actorName string) error {
	if err := a.faqs.SetAnswerStatus(ans.ID, faq.StatusInvalidated, actorName); err != nil {
		return err
	}
	a.auditEntry(faq.Answer{}.TableName(),
		strconv.FormatInt(ans.ID, 10), audit.ActionUpdate, actorName, rec.DetectionRunID,
		map[string]any{"status": string(ans.Status)},
		map[string]any{"status": string(faq.StatusInvalidated)})
	return nil
}

func (a *Analyzer) updateCounts(rec *change.Record, result *Result, actorName string) error {
	if err := rec.SetImpactCounts(result.TotalAtRisk,
		result.AffectedQuestions, result.AffectedAnswers); err != nil {
		return err
	}
	if err := a.changes.UpdateImpactCounts(rec.ID, result.TotalAtRisk,
		result.AffectedQuestions, result.AffectedAnswers); err != nil {
		return err
	}
	a.auditEntry(change.Record{}.TableName(),
		strconv.FormatInt(rec.ID, 10), audit.ActionUpdate, actorName, rec.DetectionRunID,
		nil, map[string]any{
			"total_faqs_at_risk":      result.TotalAtRisk,
			"affected_question_count": result.AffectedQuestions,
			"affected_answer_count":   result.AffectedAnswers,
		})
	return nil
}

// auditEntry best-effort appends to the trail; a failed audit write is
// logged, never fatal to the analysis.
func (a *Analyzer) auditEntry(table, recordID string, action audit.Action,
	actorName, runID string, oldValues, newValues map[string]any) {
	if a.audits == nil {
		return
	}
	entry, err := audit.NewEntry(table, recordID, action, actorName)
	if err != nil {
		a.logger.Error("building audit entry failed", "table", table, "error", err)
		return
	}
	entry.OldValues = oldValues
	entry.NewValues = newValues
	if runID != "" {
		entry.DetectionRunID = &runID
	}
	if err := a.audits.Append(entry); err != nil {
		a.logger.Error("audit append failed", "table", table, "error", err)
	}
}

func fracPtr(v float64) *score.Fraction {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	f := score.Fraction(v)
	return &f
}

func joinPhrases(phrases []string) string {
	return strings.Join(phrases, " ")
}
