package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("should apply the default pipeline", func(t *testing.T) {
		assert.Equal(t, "acme corp", NormalizeDefault("  ACME   Corp  "))
	})

	t.Run("should strip accents", func(t *testing.T) {
		assert.Equal(t, "cafe munoz", NormalizeDefault("Café Muñoz"))
	})

	t.Run("should collapse internal whitespace", func(t *testing.T) {
		assert.Equal(t, "a b c", NormalizeDefault("a\t b\n  c"))
	})

	t.Run("should normalize an all-whitespace string to empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeDefault("   \t\n  "))
	})

	t.Run("should replace punctuation with spaces when stripping", func(t *testing.T) {
		opts := DefaultNormalizeOptions()
		opts.StripNonAlnum = true
		assert.Equal(t, "acme corp", Normalize("Acme-Corp.", opts))
	})

	t.Run("should leave the string alone with no options", func(t *testing.T) {
		assert.Equal(t, "  ACME Corp ", Normalize("  ACME Corp ", NormalizeOptions{}))
	})
}

func TestFindBestMatches(t *testing.T) {
	departments := []string{"Engineering", "Marketing", "Sales", "Support", "Operations"}

	t.Run("should rank an exact normalized match first with similarity 1", func(t *testing.T) {
		matches := FindBestMatches("marketing", departments, 0.6, 5)
		assert.NotEmpty(t, matches)
		assert.Equal(t, "Marketing", matches[0].Value)
		assert.Equal(t, 1.0, matches[0].Similarity)
	})

	t.Run("should find a close misspelling", func(t *testing.T) {
		matches := FindBestMatches("Enginering", departments, 0.6, 5)
		assert.NotEmpty(t, matches)
		assert.Equal(t, "Engineering", matches[0].Value)
		assert.Greater(t, matches[0].Similarity, 0.9)
		assert.Less(t, matches[0].Similarity, 1.0)
	})

	t.Run("should return nothing for an empty target", func(t *testing.T) {
		assert.Empty(t, FindBestMatches("", departments, 0.6, 5))
		assert.Empty(t, FindBestMatches("   ", departments, 0.6, 5))
	})

	t.Run("should skip empty candidates", func(t *testing.T) {
		matches := FindBestMatches("sales", []string{"", "  ", "Sales"}, 0.6, 5)
		assert.Len(t, matches, 1)
		assert.Equal(t, "Sales", matches[0].Value)
	})

	t.Run("should drop candidates below the threshold", func(t *testing.T) {
		matches := FindBestMatches("zzzzzz", departments, 0.6, 5)
		assert.Empty(t, matches)
	})

	t.Run("should truncate to max results", func(t *testing.T) {
		candidates := []string{"test one", "test two", "test three", "test four"}
		matches := FindBestMatches("test", candidates, 0.1, 2)
		assert.LessOrEqual(t, len(matches), 2)
	})

	t.Run("should sort by similarity descending", func(t *testing.T) {
		matches := FindBestMatches("Engineering", []string{"Enginering", "Engineering", "Engineer"}, 0.5, 5)
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
		}
		assert.Equal(t, "Engineering", matches[0].Value)
	})

	t.Run("should apply defaults for zero threshold and max results", func(t *testing.T) {
		matches := FindBestMatches("Marketing", departments, 0, 0)
		assert.NotEmpty(t, matches)
		assert.LessOrEqual(t, len(matches), 5)
	})

	t.Run("should prune extreme length mismatches", func(t *testing.T) {
		matches := FindBestMatches("ab", []string{"abcdefghijklmnopqrstuvwxyz"}, 0.01, 5)
		assert.Empty(t, matches)
	})
}
