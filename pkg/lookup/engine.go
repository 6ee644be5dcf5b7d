// Package lookup resolves input values against reference datasets
package lookup

import (
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/similarity"
)

const (
	// normalizedMatchConfidence is the fixed confidence for matches recovered
	// by normalization. Normalization removes case and formatting noise
	// without guessing, so the confidence does not scale with edit distance.
	normalizedMatchConfidence = 0.95

	// defaultFuzzyThreshold applies when the config leaves the threshold unset
	defaultFuzzyThreshold = 0.6
)

// Engine resolves one input value against one dataset under one MatchConfig.
// Pure function of its inputs; never mutates the rows it reads.
type Engine struct{}

// NewEngine creates a lookup engine
func NewEngine() *Engine {
	return &Engine{}
}

// Resolve runs the tiered match: exact, then normalized, then fuzzy, first
// hit wins. A malformed config or a column missing from every row degrades
// to "no match" rather than erroring.
func (e *Engine) Resolve(input string, rows []models.ReferenceRow, cfg models.MatchConfig) models.LookupResult {
	if cfg.SourceColumn == "" || cfg.TargetColumn == "" || len(rows) == 0 {
		return models.NoMatch(input)
	}

	// Exact tier: verbatim equality
	for _, row := range rows {
		value, ok := matchableValue(row, cfg)
		if !ok {
			continue
		}
		if value == input {
			return e.buildResult(input, row, cfg, models.MatchTypeExact, 1.0)
		}
	}

	// Normalized tier: equal after case/accent/whitespace normalization
	normInput := similarity.NormalizeDefault(input)
	if normInput != "" {
		for _, row := range rows {
			value, ok := matchableValue(row, cfg)
			if !ok {
				continue
			}
			if similarity.NormalizeDefault(value) == normInput {
				return e.buildResult(input, row, cfg, models.MatchTypeNormalized, normalizedMatchConfidence)
			}
		}
	}

	// Fuzzy tier: best combined similarity above threshold
	threshold := cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = defaultFuzzyThreshold
	}

	candidates := make([]string, 0, len(rows))
	candidateRows := make(map[string]models.ReferenceRow, len(rows))
	for _, row := range rows {
		value, ok := matchableValue(row, cfg)
		if !ok {
			continue
		}
		candidates = append(candidates, value)
		// First row wins for duplicate values, matching scan order
		if _, exists := candidateRows[value]; !exists {
			candidateRows[value] = row
		}
	}

	best := similarity.FindBestMatches(input, candidates, threshold, 1)
	if len(best) == 0 {
		return models.NoMatch(input)
	}

	row := candidateRows[best[0].Value]
	return e.buildResult(input, row, cfg, models.MatchTypeFuzzy, best[0].Similarity)
}

// matchableValue extracts the row's source value, requiring both configured
// columns to resolve. Rows that cannot satisfy the config are skipped.
func matchableValue(row models.ReferenceRow, cfg models.MatchConfig) (string, bool) {
	source := row.Get(cfg.SourceColumn)
	if source.IsNull() {
		return "", false
	}
	if row.Get(cfg.TargetColumn).IsNull() {
		return "", false
	}
	value := source.String()
	if value == "" {
		return "", false
	}
	return value, true
}

// buildResult assembles a matched result, copying derived values from the
// matched row only.
func (e *Engine) buildResult(input string, row models.ReferenceRow, cfg models.MatchConfig, matchType models.MatchType, confidence float64) models.LookupResult {
	result := models.LookupResult{
		Matched:      true,
		Confidence:   confidence,
		MatchType:    matchType,
		MatchedValue: row.Get(cfg.TargetColumn),
		InputValue:   input,
	}

	if len(cfg.AlsoGet) > 0 {
		result.DerivedValues = make(map[string]models.CellValue, len(cfg.AlsoGet))
		for _, mapping := range cfg.AlsoGet {
			result.DerivedValues[mapping.TargetFieldName] = row.Get(mapping.SourceColumn)
		}
	}

	return result
}
