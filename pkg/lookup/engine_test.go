package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/aster/pkg/models"
)

func referenceRows() []models.ReferenceRow {
	return []models.ReferenceRow{
		{
			"name":    models.StringCell("Acme Corp"),
			"code":    models.StringCell("ACME"),
			"region":  models.StringCell("West"),
			"headcnt": models.NumberCell(250),
		},
		{
			"name":    models.StringCell("Globex International"),
			"code":    models.StringCell("GLBX"),
			"region":  models.StringCell("East"),
			"headcnt": models.NumberCell(1200),
		},
		{
			"name":    models.StringCell("Initech"),
			"code":    models.StringCell("INTC"),
			"region":  models.StringCell("South"),
			"headcnt": models.NumberCell(80),
		},
	}
}

func baseConfig() models.MatchConfig {
	return models.MatchConfig{
		SourceColumn:   "name",
		TargetColumn:   "code",
		FuzzyThreshold: 0.6,
	}
}

func TestEngineResolve(t *testing.T) {
	engine := NewEngine()

	t.Run("should resolve a verbatim match with confidence 1", func(t *testing.T) {
		result := engine.Resolve("Acme Corp", referenceRows(), baseConfig())

		assert.True(t, result.Matched)
		assert.Equal(t, models.MatchTypeExact, result.MatchType)
		assert.Equal(t, 1.0, result.Confidence)
		assert.Equal(t, "ACME", result.MatchedValue.String())
		assert.Equal(t, "Acme Corp", result.InputValue)
	})

	t.Run("should resolve a case and whitespace variant as normalized", func(t *testing.T) {
		result := engine.Resolve("  ACME   corp ", referenceRows(), baseConfig())

		assert.True(t, result.Matched)
		assert.Equal(t, models.MatchTypeNormalized, result.MatchType)
		assert.Equal(t, 0.95, result.Confidence)
		assert.Equal(t, "ACME", result.MatchedValue.String())
	})

	t.Run("should resolve a misspelling as fuzzy", func(t *testing.T) {
		result := engine.Resolve("Acme Crop", referenceRows(), baseConfig())

		assert.True(t, result.Matched)
		assert.Equal(t, models.MatchTypeFuzzy, result.MatchType)
		assert.Greater(t, result.Confidence, 0.6)
		assert.Less(t, result.Confidence, 1.0)
		assert.Equal(t, "ACME", result.MatchedValue.String())
	})

	t.Run("should return no match when nothing qualifies", func(t *testing.T) {
		result := engine.Resolve("Wayne Enterprises", referenceRows(), baseConfig())

		assert.False(t, result.Matched)
		assert.Equal(t, models.MatchTypeNone, result.MatchType)
		assert.Equal(t, 0.0, result.Confidence)
		assert.Equal(t, "Wayne Enterprises", result.InputValue)
		assert.True(t, result.MatchedValue.IsNull())
	})

	t.Run("should copy derived values from the matched row only", func(t *testing.T) {
		cfg := baseConfig()
		cfg.AlsoGet = []models.DerivedMapping{
			{SourceColumn: "region", TargetFieldName: "region_name"},
			{SourceColumn: "headcnt", TargetFieldName: "headcount"},
		}

		result := engine.Resolve("Globex International", referenceRows(), cfg)

		require.True(t, result.Matched)
		require.Len(t, result.DerivedValues, 2)
		assert.Equal(t, "East", result.DerivedValues["region_name"].String())
		assert.Equal(t, "1200", result.DerivedValues["headcount"].String())
	})

	t.Run("should carry a null cell for a missing derived column", func(t *testing.T) {
		cfg := baseConfig()
		cfg.AlsoGet = []models.DerivedMapping{
			{SourceColumn: "missing", TargetFieldName: "mystery"},
		}

		result := engine.Resolve("Initech", referenceRows(), cfg)

		require.True(t, result.Matched)
		assert.True(t, result.DerivedValues["mystery"].IsNull())
	})

	t.Run("should degrade to no match on a malformed config", func(t *testing.T) {
		result := engine.Resolve("Acme Corp", referenceRows(), models.MatchConfig{TargetColumn: "code"})
		assert.False(t, result.Matched)

		result = engine.Resolve("Acme Corp", referenceRows(), models.MatchConfig{SourceColumn: "name"})
		assert.False(t, result.Matched)
	})

	t.Run("should return no match for an empty dataset", func(t *testing.T) {
		result := engine.Resolve("Acme Corp", nil, baseConfig())
		assert.False(t, result.Matched)
	})

	t.Run("should skip rows missing the source or target column", func(t *testing.T) {
		rows := []models.ReferenceRow{
			{"code": models.StringCell("ORPHAN")},
			{"name": models.StringCell("No Code Inc")},
			{"name": models.StringCell("Acme Corp"), "code": models.StringCell("ACME")},
		}

		result := engine.Resolve("Acme Corp", rows, baseConfig())

		assert.True(t, result.Matched)
		assert.Equal(t, models.MatchTypeExact, result.MatchType)
		assert.Equal(t, "ACME", result.MatchedValue.String())
	})

	t.Run("should let the first row win for duplicate source values", func(t *testing.T) {
		rows := []models.ReferenceRow{
			{"name": models.StringCell("Acme Corp"), "code": models.StringCell("FIRST")},
			{"name": models.StringCell("Acme Corp"), "code": models.StringCell("SECOND")},
		}

		result := engine.Resolve("Acme Crop", rows, baseConfig())

		require.True(t, result.Matched)
		assert.Equal(t, models.MatchTypeFuzzy, result.MatchType)
		assert.Equal(t, "FIRST", result.MatchedValue.String())
	})

	t.Run("should respect a stricter fuzzy threshold", func(t *testing.T) {
		cfg := baseConfig()
		cfg.FuzzyThreshold = 0.99

		result := engine.Resolve("Acme Crop", referenceRows(), cfg)
		assert.False(t, result.Matched)
	})

	t.Run("should apply the default threshold when unset", func(t *testing.T) {
		cfg := baseConfig()
		cfg.FuzzyThreshold = 0

		result := engine.Resolve("Acme Crop", referenceRows(), cfg)
		assert.True(t, result.Matched)
	})

	t.Run("should match numeric source cells by rendered value", func(t *testing.T) {
		rows := []models.ReferenceRow{
			{"name": models.NumberCell(42), "code": models.StringCell("ANSWER")},
		}

		result := engine.Resolve("42", rows, baseConfig())

		require.True(t, result.Matched)
		assert.Equal(t, models.MatchTypeExact, result.MatchType)
		assert.Equal(t, "ANSWER", result.MatchedValue.String())
	})
}
