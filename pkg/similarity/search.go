package similarity

import "sort"

const (
	// defaultThreshold is the minimum combined similarity to keep a candidate
	defaultThreshold = 0.6
	// defaultMaxResults caps the result list
	defaultMaxResults = 5
	// lengthRatioFloor prunes candidates whose length differs too much from
	// the target to plausibly score above any useful threshold
	lengthRatioFloor = 0.2
)

// Match is one scored candidate from a search
type Match struct {
	Value      string  `json:"value"`
	Similarity float64 `json:"similarity"`
}

// FindBestMatches scores candidates against target and returns the ones at or
// above threshold, sorted by similarity descending and truncated to
// maxResults. Empty candidates are skipped silently. The target is normalized
// once; exact normalized equality short-circuits to similarity 1 without
// scoring, and a length-ratio prune skips obviously mismatched pairs.
func FindBestMatches(target string, candidates []string, threshold float64, maxResults int) []Match {
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	normTarget := NormalizeDefault(target)
	if normTarget == "" {
		return nil
	}
	targetLen := len([]rune(normTarget))

	results := make([]Match, 0, maxResults)
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}

		normCandidate := NormalizeDefault(candidate)
		if normCandidate == "" {
			continue
		}

		// Exact short-circuit: identical after normalization
		if normCandidate == normTarget {
			results = append(results, Match{Value: candidate, Similarity: 1.0})
			continue
		}

		// Length-ratio prune
		candLen := len([]rune(normCandidate))
		shorter, longer := candLen, targetLen
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		if longer > 0 && float64(shorter)/float64(longer) < lengthRatioFloor {
			continue
		}

		score := Combined(normTarget, normCandidate, DefaultWeights())
		if score >= threshold {
			results = append(results, Match{Value: candidate, Similarity: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results
}
