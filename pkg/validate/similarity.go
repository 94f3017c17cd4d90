package validate

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestionThreshold is the minimum similarity for proposing a field name
// correction.
const suggestionThreshold = 0.6

// closestFieldName returns the known field name most similar to the given
// unknown key, if its similarity reaches the suggestion threshold.
func closestFieldName(name string, known []string) (string, bool) {
	best := ""
	bestScore := 0.0
	lower := strings.ToLower(name)

	for _, candidate := range known {
		score := similarity(lower, strings.ToLower(candidate))
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	if bestScore >= suggestionThreshold {
		return best, true
	}
	return "", false
}

// similarity maps Levenshtein distance to [0,1], 1 meaning identical.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
