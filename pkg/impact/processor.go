package impact

import (
	"context"
	"log/slog"
	"time"
)

// RunProcessor drives the analyzer over every change recorded under a
// detection run. It satisfies the run worker's ChangeProcessor interface.
type RunProcessor struct {
	analyzer *Analyzer
	logger   *slog.Logger
}

// NewRunProcessor creates a RunProcessor on top of an analyzer.
func NewRunProcessor(analyzer *Analyzer, logger *slog.Logger) *RunProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunProcessor{analyzer: analyzer, logger: logger}
}

// ProcessRun analyzes every change belonging to the run, in change order.
// A single failing change fails the whole run so the queue's retry
// machinery re-drives it; already-applied verdicts are replaced by the
// upsert on re-analysis.
func (p *RunProcessor) ProcessRun(ctx context.Context, runID, requestedBy string) (int, int, time.Duration, error) {
	start := time.Now()

	records, err := p.analyzer.changes.ListByRun(runID)
	if err != nil {
		return 0, 0, time.Since(start), err
	}

	analyzed := 0
	invalidated := 0
	for i := range records {
		result, err := p.analyzer.AnalyzeChange(ctx, records[i].ID, requestedBy)
		if err != nil {
			return analyzed, invalidated, time.Since(start), err
		}
		analyzed++
		invalidated += int(result.AffectedQuestions + result.AffectedAnswers)
	}

	p.logger.Info("run processed",
		"runID", runID,
		"changes", analyzed,
		"invalidated", invalidated)
	return analyzed, invalidated, time.Since(start), nil
}
