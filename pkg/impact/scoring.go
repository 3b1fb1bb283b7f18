package impact

import (
	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/score"
)

// SubScores carries the per-signal similarity scores feeding an
// analysis. A nil field means the signal was not computed; absent
// signals contribute nothing to the combined score.
type SubScores struct {
	Lexical  *score.Fraction
	Semantic *score.Fraction
	Keyword  *score.Fraction
	Phrase   *score.Fraction
}

// Any reports whether at least one signal is present.
func (s SubScores) Any() bool {
	return s.Lexical != nil || s.Semantic != nil || s.Keyword != nil || s.Phrase != nil
}

// Weights assigns relative importance to the signals. When some
// signals are absent the remaining weights are renormalized, so the
// combined score stays a weighted mean of what was actually computed.
type Weights struct {
	Lexical  float64 `yaml:"lexical"`
	Semantic float64 `yaml:"semantic"`
	Keyword  float64 `yaml:"keyword"`
	Phrase   float64 `yaml:"phrase"`
}

// DefaultWeights returns the stock signal weights.
func DefaultWeights() Weights {
	return Weights{
		Lexical:  0.3,
		Semantic: 0.3,
		Keyword:  0.2,
		Phrase:   0.2,
	}
}

// Validate rejects negative or all-zero weights.
func (w Weights) Validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"lexical", w.Lexical},
		{"semantic", w.Semantic},
		{"keyword", w.Keyword},
		{"phrase", w.Phrase},
	} {
		if c.v < 0 {
			return faqerrors.Validationf(c.name, "weight %v is negative", c.v)
		}
	}
	if w.Lexical+w.Semantic+w.Keyword+w.Phrase <= 0 {
		return faqerrors.Validationf("weights", "at least one weight must be positive")
	}
	return nil
}

// Combine folds the present signals into an overall score using the
// weighted mean of their values, with weights renormalized over the
// signals that are actually set. The second return is false when no
// signal is present, in which case the overall score is zero.
func (w Weights) Combine(sub SubScores) (score.Fraction, bool) {
	var sum, weight float64
	add := func(s *score.Fraction, wt float64) {
		if s == nil || wt <= 0 {
			return
		}
		sum += s.Float() * wt
		weight += wt
	}
	add(sub.Lexical, w.Lexical)
	add(sub.Semantic, w.Semantic)
	add(sub.Keyword, w.Keyword)
	add(sub.Phrase, w.Phrase)
	if weight == 0 {
		return 0, false
	}
	overall := sum / weight
	// Guard against float drift at the top of the range.
	if overall > 1 {
		overall = 1
	}
	return score.Fraction(overall), true
}
