package models

// ReviewStatus is the disposition of a fuzzy match under review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusAccepted ReviewStatus = "accepted"
	ReviewStatusRejected ReviewStatus = "rejected"
	ReviewStatusManual   ReviewStatus = "manual"
)

// RawMatch is the sole construction input to a review session: one
// low-confidence lookup outcome per affected record field.
type RawMatch struct {
	RowID          string  `json:"row_id" validate:"required"`
	FieldName      string  `json:"field_name" validate:"required"`
	InputValue     string  `json:"input_value"`
	SuggestedValue string  `json:"suggested_value"`
	Confidence     float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// FuzzyMatch is a raw match plus review metadata. Created once when a batch
// is loaded; status transitions are the only mutation afterwards.
type FuzzyMatch struct {
	ID             string       `json:"id"`
	RowID          string       `json:"row_id"`
	FieldName      string       `json:"field_name"`
	InputValue     string       `json:"input_value"`
	SuggestedValue string       `json:"suggested_value"`
	Confidence     float64      `json:"confidence"`
	Status         ReviewStatus `json:"status"`
	ManualValue    *string      `json:"manual_value,omitempty"`
	Selected       bool         `json:"selected"`
}

// ReviewFilter narrows the visible matches. An absent field means no
// constraint on that dimension.
type ReviewFilter struct {
	ConfidenceRange *[2]float64    `json:"confidence_range,omitempty"`
	FieldName       *string        `json:"field_name,omitempty"`
	Statuses        []ReviewStatus `json:"statuses,omitempty"`
	SearchTerm      *string        `json:"search_term,omitempty"`
}

// ConfidenceBucket is one band of the fixed review distribution
type ConfidenceBucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// ReviewStats is derived from session state on demand, never stored
type ReviewStats struct {
	TotalMatches           int                `json:"total_matches"`
	Accepted               int                `json:"accepted"`
	Rejected               int                `json:"rejected"`
	Manual                 int                `json:"manual"`
	Pending                int                `json:"pending"`
	Progress               float64            `json:"progress"` // 0-100
	ConfidenceDistribution []ConfidenceBucket `json:"confidence_distribution"`
}
