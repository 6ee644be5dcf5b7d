package models

import "time"

// MatchType classifies how a lookup resolved
type MatchType string

const (
	MatchTypeExact      MatchType = "exact"      // Verbatim equality
	MatchTypeNormalized MatchType = "normalized" // Equal after normalization
	MatchTypeFuzzy      MatchType = "fuzzy"      // Best similarity above threshold
	MatchTypeNone       MatchType = "none"       // No candidate qualified
)

// DerivedMapping copies a column from the matched row into the result
type DerivedMapping struct {
	SourceColumn    string `json:"source_column" validate:"required"`
	TargetFieldName string `json:"target_field_name" validate:"required"`
}

// MatchConfig configures a single lookup invocation. Immutable per call.
type MatchConfig struct {
	SourceColumn   string           `json:"source_column" validate:"required"`
	TargetColumn   string           `json:"target_column" validate:"required"`
	FuzzyThreshold float64          `json:"fuzzy_threshold" validate:"gte=0,lte=1"`
	AlsoGet        []DerivedMapping `json:"also_get,omitempty"`
}

// LookupResult is the outcome of resolving one input value. Produced fresh
// per call, never mutated.
type LookupResult struct {
	Matched       bool                 `json:"matched"`
	Confidence    float64              `json:"confidence"`
	MatchType     MatchType            `json:"match_type"`
	MatchedValue  CellValue            `json:"matched_value"`
	DerivedValues map[string]CellValue `json:"derived_values,omitempty"`
	InputValue    string               `json:"input_value"`
}

// NoMatch builds the inert unmatched result for an input
func NoMatch(input string) LookupResult {
	return LookupResult{
		Matched:    false,
		Confidence: 0,
		MatchType:  MatchTypeNone,
		InputValue: input,
	}
}

// LookupConfig is a saved, named match configuration for a dataset
type LookupConfig struct {
	ID             string     `json:"id" db:"id"`
	TenantID       string     `json:"tenant_id" db:"tenant_id"`
	DatasetID      string     `json:"dataset_id" db:"dataset_id"`
	Name           string     `json:"name" db:"name"`
	SourceColumn   string     `json:"source_column" db:"source_column"`
	TargetColumn   string     `json:"target_column" db:"target_column"`
	FuzzyThreshold float64    `json:"fuzzy_threshold" db:"fuzzy_threshold"`
	AlsoGet        JSONText   `json:"also_get" db:"also_get"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// MatchConfig materializes the saved config for an engine invocation
func (c *LookupConfig) MatchConfig() MatchConfig {
	var alsoGet []DerivedMapping
	_ = c.AlsoGet.Unmarshal(&alsoGet)
	return MatchConfig{
		SourceColumn:   c.SourceColumn,
		TargetColumn:   c.TargetColumn,
		FuzzyThreshold: c.FuzzyThreshold,
		AlsoGet:        alsoGet,
	}
}

// CreateLookupConfigRequest creates a saved lookup config
type CreateLookupConfigRequest struct {
	Name           string           `json:"name" validate:"required"`
	SourceColumn   string           `json:"source_column" validate:"required"`
	TargetColumn   string           `json:"target_column" validate:"required"`
	FuzzyThreshold float64          `json:"fuzzy_threshold" validate:"gte=0,lte=1"`
	AlsoGet        []DerivedMapping `json:"also_get,omitempty"`
}

// UpdateLookupConfigRequest updates a saved lookup config
type UpdateLookupConfigRequest struct {
	Name           *string          `json:"name,omitempty"`
	SourceColumn   *string          `json:"source_column,omitempty"`
	TargetColumn   *string          `json:"target_column,omitempty"`
	FuzzyThreshold *float64         `json:"fuzzy_threshold,omitempty"`
	AlsoGet        []DerivedMapping `json:"also_get,omitempty"`
}
