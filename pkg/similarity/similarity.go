// Package similarity provides string similarity scoring for reference lookups
package similarity

const (
	// winklerPrefixScale is the standard Winkler prefix scaling factor
	winklerPrefixScale = 0.1
	// winklerBoostThreshold is the minimum Jaro score eligible for the prefix bonus
	winklerBoostThreshold = 0.7
	// winklerMaxPrefix caps the common prefix considered for the bonus
	winklerMaxPrefix = 4
)

// LevenshteinDistance calculates the edit distance between two strings.
// Symmetric, zero iff the strings are equal.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Keep the shorter string on the column axis for O(min) space
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}

	// Two rows for dynamic programming
	row := make([]int, len(rb)+1)
	prevRow := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(rb)]
}

// LevenshteinSimilarity converts edit distance to a 0..1 score.
// Two empty strings are identical, similarity 1.
func LevenshteinSimilarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	distance := LevenshteinDistance(a, b)
	return (float64(maxLen) - float64(distance)) / float64(maxLen)
}

// Jaro calculates the Jaro similarity between two strings
func Jaro(a, b string) float64 {
	if a == b {
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	// Maximum distance for character matching
	matchDist := max(len(ra), len(rb))/2 - 1
	if matchDist < 0 {
		return 0.0
	}

	aMatches := make([]bool, len(ra))
	bMatches := make([]bool, len(rb))

	matches := 0
	transpositions := 0

	// Find matches
	for i := 0; i < len(ra); i++ {
		start := max(0, i-matchDist)
		end := min(len(rb), i+matchDist+1)

		for j := start; j < end; j++ {
			if bMatches[j] || ra[i] != rb[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Count transpositions
	k := 0
	for i := 0; i < len(ra); i++ {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if ra[i] != rb[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2

	return (m/float64(len(ra)) + m/float64(len(rb)) + (m-t)/m) / 3
}

// JaroWinkler boosts the Jaro score by a common-prefix bonus. The bonus only
// applies when the base score is at least winklerBoostThreshold; below that a
// shared prefix is not evidence of a match.
func JaroWinkler(a, b string) float64 {
	jaro := Jaro(a, b)
	if jaro < winklerBoostThreshold {
		return jaro
	}

	ra := []rune(a)
	rb := []rune(b)
	prefixLen := 0
	for i := 0; i < len(ra) && i < len(rb) && i < winklerMaxPrefix; i++ {
		if ra[i] != rb[i] {
			break
		}
		prefixLen++
	}

	return jaro + float64(prefixLen)*winklerPrefixScale*(1.0-jaro)
}

// Weights controls the blend of algorithms in Combined. Weights are
// renormalized to sum to 1 before use.
type Weights struct {
	Levenshtein float64
	Jaro        float64
	JaroWinkler float64
}

// DefaultWeights returns the standard blend
func DefaultWeights() Weights {
	return Weights{
		Levenshtein: 0.4,
		Jaro:        0.3,
		JaroWinkler: 0.3,
	}
}

// Combined calculates the weighted blend of all three similarity scores
func Combined(a, b string, w Weights) float64 {
	total := w.Levenshtein + w.Jaro + w.JaroWinkler
	if total <= 0 {
		w = DefaultWeights()
		total = w.Levenshtein + w.Jaro + w.JaroWinkler
	}

	sum := LevenshteinSimilarity(a, b)*w.Levenshtein +
		Jaro(a, b)*w.Jaro +
		JaroWinkler(a, b)*w.JaroWinkler

	return sum / total
}
