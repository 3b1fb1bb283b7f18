package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tokens := tokenize("The deadline is 2026-03-01, per Section 4.2!")
	assert.Equal(t, []string{"the", "deadline", "is", "2026", "03", "01", "per", "section", "4", "2"}, tokens)

	assert.Empty(t, tokenize(""))
	assert.Empty(t, tokenize("!!! ---"))
}

func TestKeywordSetFiltersShortTokens(t *testing.T) {
	set := keywordSet(tokenize("the eligibility rules for new members"))
	assert.Contains(t, set, "eligibility")
	assert.Contains(t, set, "rules")
	assert.Contains(t, set, "members")
	assert.NotContains(t, set, "the")
	assert.NotContains(t, set, "for")
	assert.NotContains(t, set, "new")
}

func TestJaccard(t *testing.T) {
	a := tokenSet([]string{"alpha", "beta", "gamma"})
	b := tokenSet([]string{"beta", "gamma", "delta"})
	assert.InDelta(t, 0.5, jaccard(a, b), 1e-9)

	assert.Equal(t, 1.0, jaccard(a, a))
	assert.Equal(t, 0.0, jaccard(a, tokenSet(nil)))
	assert.Equal(t, 0.0, jaccard(tokenSet(nil), tokenSet(nil)))
}

func TestMatchedPhrases(t *testing.T) {
	text := "Members must renew their enrollment before the March deadline."

	matched := matchedPhrases(text, []string{"march deadline", "renew their enrollment", "waiting period"})
	assert.Equal(t, []string{"march deadline", "renew their enrollment"}, matched)

	// Blank phrases never match.
	assert.Empty(t, matchedPhrases(text, []string{"", "   "}))
	assert.Empty(t, matchedPhrases(text, nil))
}
