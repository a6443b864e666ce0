package match

import (
	"strings"

	"collectabase/internal/textutil"
)

// Scoring constants. These are empirically tuned against labeled lookups
// rather than derived; treat them as adjustable parameters.
const (
	// Threshold is the minimum score at which a candidate counts as found.
	// The bar is deliberately low: callers surface the matched title,
	// platform, and score so a human can reject a weak match.
	Threshold = 0.42

	tokenOverlapScale    = 0.90
	substringScore       = 0.85
	querySubsetScore     = 0.92
	candidateSubsetScore = 0.88
	platformBonus        = 0.10
)

// Score rates how well a catalog candidate matches a query title, in layers
// that each capture a different notion of similarity; the best layer wins.
// A flat platform-agreement bonus is added afterwards, so the result may
// exceed 1.0. Compare against Threshold unclamped; clamp only for display.
func Score(queryTitle, queryPlatform, candidateTitle, candidatePlatform string) float64 {
	normQuery := textutil.Normalize(queryTitle)
	normCandidate := textutil.Normalize(candidateTitle)

	var best float64
	switch {
	case normQuery == "" || normCandidate == "":
		best = 0
	case normQuery == normCandidate:
		best = 1.0
	default:
		best = textutil.Similarity(normQuery, normCandidate)

		queryTokens := textutil.Tokens(textutil.CleanTitle(queryTitle, queryPlatform))
		candidateTokens := textutil.Tokens(textutil.CleanTitle(candidateTitle, queryPlatform))
		querySet := toSet(queryTokens)
		candidateSet := toSet(candidateTokens)

		if overlap := tokenOverlap(querySet, candidateSet); overlap > best {
			best = overlap
		}
		if strings.Contains(normQuery, normCandidate) || strings.Contains(normCandidate, normQuery) {
			if substringScore > best {
				best = substringScore
			}
		}
		if len(queryTokens) > 0 && isSubset(querySet, candidateSet) && querySubsetScore > best {
			best = querySubsetScore
		}
		if len(candidateTokens) >= 2 && isSubset(candidateSet, querySet) && candidateSubsetScore > best {
			best = candidateSubsetScore
		}
	}

	if normPlatform := textutil.Normalize(queryPlatform); normPlatform != "" &&
		normPlatform == textutil.Normalize(candidatePlatform) {
		best += platformBonus
	}
	return best
}

// Clamp bounds a score to [0,1] for display purposes.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func toSet(tokens []string) map[string]struct{} {
	if len(tokens) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

func tokenOverlap(query, candidate map[string]struct{}) float64 {
	if len(query) == 0 || len(candidate) == 0 {
		return 0
	}
	shared := 0
	for token := range query {
		if _, ok := candidate[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(query)) * tokenOverlapScale
}

func isSubset(subset, superset map[string]struct{}) bool {
	if len(subset) == 0 {
		return false
	}
	for token := range subset {
		if _, ok := superset[token]; !ok {
			return false
		}
	}
	return true
}
