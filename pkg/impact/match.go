package impact

import (
	"strings"
	"unicode"
)

// minKeywordLen separates keywords from filler tokens. Anything shorter is
// too common to carry signal.
const minKeywordLen = 5

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

func keywordSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokens {
		if len(t) >= minKeywordLen {
			set[t] = struct{}{}
		}
	}
	return set
}

// jaccard computes |a ∩ b| / |a ∪ b|. Two empty sets overlap not at all.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// matchedPhrases returns the changed phrases that occur in the text,
// matched case-insensitively as substrings.
func matchedPhrases(text string, phrases []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, p := range phrases {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(trimmed)) {
			matched = append(matched, p)
		}
	}
	return matched
}
