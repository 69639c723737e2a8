package similarity

import (
	"regexp"
	"strings"
)

var wordBoundary = regexp.MustCompile(`\W+`)

// LexicalOverlap computes the Jaccard index |A∩B| / |A∪B| over the unique,
// lowercased tokens of two texts. Tokens are split on non-word-character
// boundaries. The result lies in [0, 1].
//
// When both token sets are empty the quotient is undefined; by convention
// LexicalOverlap returns 0.
func LexicalOverlap(a, b string) float32 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float32(intersection) / float32(union)
}

// tokenSet splits text on non-word characters and returns the set of unique
// lowercased tokens.
func tokenSet(text string) map[string]struct{} {
	tokens := wordBoundary.Split(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}
