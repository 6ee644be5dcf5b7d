package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	t.Run("should count single-character edits", func(t *testing.T) {
		assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
		assert.Equal(t, 1, LevenshteinDistance("acme", "acne"))
		assert.Equal(t, 0, LevenshteinDistance("same", "same"))
	})

	t.Run("should treat an empty string as all insertions", func(t *testing.T) {
		assert.Equal(t, 5, LevenshteinDistance("", "hello"))
		assert.Equal(t, 5, LevenshteinDistance("hello", ""))
	})

	t.Run("should count runes not bytes", func(t *testing.T) {
		assert.Equal(t, 1, LevenshteinDistance("café", "cafe"))
	})

	t.Run("should be symmetric", func(t *testing.T) {
		assert.Equal(t, LevenshteinDistance("engineering", "enginering"), LevenshteinDistance("enginering", "engineering"))
	})
}

func TestLevenshteinSimilarity(t *testing.T) {
	t.Run("should return 1 for identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, LevenshteinSimilarity("hello", "hello"))
	})

	t.Run("should return 1 when both strings are empty", func(t *testing.T) {
		assert.Equal(t, 1.0, LevenshteinSimilarity("", ""))
	})

	t.Run("should return 0 when one string is empty", func(t *testing.T) {
		assert.Equal(t, 0.0, LevenshteinSimilarity("", "hello"))
	})

	t.Run("should scale distance by the longer string", func(t *testing.T) {
		// distance 1 over length 5
		assert.InDelta(t, 0.8, LevenshteinSimilarity("hello", "hallo"), 0.0001)
	})
}

func TestJaro(t *testing.T) {
	t.Run("should return 1 for identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, Jaro("martha", "martha"))
	})

	t.Run("should return 0 when one string is empty", func(t *testing.T) {
		assert.Equal(t, 0.0, Jaro("", "martha"))
		assert.Equal(t, 0.0, Jaro("martha", ""))
	})

	t.Run("should return 0 with no matching characters", func(t *testing.T) {
		assert.Equal(t, 0.0, Jaro("abc", "xyz"))
	})

	t.Run("should score transpositions below 1", func(t *testing.T) {
		score := Jaro("martha", "marhta")
		assert.InDelta(t, 0.9444, score, 0.001)
	})

	t.Run("should be symmetric", func(t *testing.T) {
		assert.Equal(t, Jaro("dixon", "dicksonx"), Jaro("dicksonx", "dixon"))
	})
}

func TestJaroWinkler(t *testing.T) {
	t.Run("should boost scores for a shared prefix", func(t *testing.T) {
		jaro := Jaro("martha", "marhta")
		jw := JaroWinkler("martha", "marhta")
		assert.Greater(t, jw, jaro)
		assert.InDelta(t, 0.9611, jw, 0.001)
	})

	t.Run("should not boost below the threshold", func(t *testing.T) {
		// Low base similarity disables the prefix bonus
		jaro := Jaro("about", "abcdefghij")
		if jaro < 0.7 {
			assert.Equal(t, jaro, JaroWinkler("about", "abcdefghij"))
		}
	})

	t.Run("should cap the prefix at four characters", func(t *testing.T) {
		// Both pairs share a prefix of at least four; the longer shared
		// prefix must not earn extra boost beyond the base difference.
		jaro := Jaro("prefixes", "prefixed")
		jw := JaroWinkler("prefixes", "prefixed")
		assert.InDelta(t, jaro+4*0.1*(1-jaro), jw, 0.0001)
	})

	t.Run("should return 1 for identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, JaroWinkler("acme", "acme"))
	})

	t.Run("should never exceed 1", func(t *testing.T) {
		assert.LessOrEqual(t, JaroWinkler("aaaaaa", "aaaaab"), 1.0)
	})
}

func TestSoundex(t *testing.T) {
	t.Run("should encode to four characters", func(t *testing.T) {
		assert.Equal(t, "R163", Soundex("Robert"))
		assert.Equal(t, "R163", Soundex("Rupert"))
		assert.Equal(t, "S530", Soundex("Smith"))
		assert.Equal(t, "S530", Soundex("Smyth"))
	})

	t.Run("should return empty for a string with no letters", func(t *testing.T) {
		assert.Equal(t, "", Soundex("123"))
		assert.Equal(t, "", Soundex(""))
	})

	t.Run("should match homophones", func(t *testing.T) {
		assert.True(t, SoundexMatch("Robert", "Rupert"))
		assert.False(t, SoundexMatch("Robert", "Marketing"))
		assert.False(t, SoundexMatch("", ""))
	})
}

func TestCombined(t *testing.T) {
	t.Run("should return 1 for identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, Combined("hello", "hello", DefaultWeights()))
	})

	t.Run("should stay within the unit interval", func(t *testing.T) {
		pairs := [][2]string{
			{"engineering", "enginering"},
			{"", "x"},
			{"abc", "xyz"},
			{"Acme Corp", "ACME Corporation"},
		}
		for _, pair := range pairs {
			score := Combined(pair[0], pair[1], DefaultWeights())
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	})

	t.Run("should renormalize partial weights", func(t *testing.T) {
		// Only the Jaro-Winkler component is weighted, so the combined
		// score equals Jaro-Winkler alone.
		weights := Weights{JaroWinkler: 0.5}
		assert.InDelta(t, JaroWinkler("martha", "marhta"), Combined("martha", "marhta", weights), 0.0001)
	})

	t.Run("should fall back to defaults for zero weights", func(t *testing.T) {
		assert.Equal(t, Combined("abc", "abd", DefaultWeights()), Combined("abc", "abd", Weights{}))
	})

	t.Run("should be symmetric", func(t *testing.T) {
		assert.Equal(t,
			Combined("enginering", "engineering", DefaultWeights()),
			Combined("engineering", "enginering", DefaultWeights()),
		)
	})
}
