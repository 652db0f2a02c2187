package application

import (
	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// maxSuggestionDistance bounds how far a candidate may be from the
// unknown name before a suggestion becomes noise.
const maxSuggestionDistance = 3

// SuggestRater returns the configured rater name closest to an unknown
// rater identifier, for use in diagnostics when an artifact references a
// rater missing from the registry. Comparison is case-insensitive via
// Unicode case folding. The second return value is false when no
// candidate is close enough to be a plausible typo.
func SuggestRater(unknown string, known []string) (string, bool) {
	fold := cases.Fold()
	target := fold.String(unknown)

	best := ""
	bestDistance := maxSuggestionDistance + 1

	for _, candidate := range known {
		distance := levenshtein.ComputeDistance(target, fold.String(candidate))
		if distance < bestDistance {
			best = candidate
			bestDistance = distance
		}
	}

	if best == "" || bestDistance > maxSuggestionDistance || bestDistance >= len(unknown) {
		return "", false
	}
	return best, true
}
