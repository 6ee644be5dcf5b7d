package models

import (
	"encoding/json"
	"time"
)

// Dataset is a named, columnar reference dataset owned by a tenant
type Dataset struct {
	ID          string          `json:"id" db:"id"`
	TenantID    string          `json:"tenant_id" db:"tenant_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Columns     json.RawMessage `json:"columns" db:"columns"` // JSON array of column names
	RowCount    int             `json:"row_count" db:"row_count"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ColumnNames decodes the dataset's column set
func (d *Dataset) ColumnNames() []string {
	var cols []string
	if err := json.Unmarshal(d.Columns, &cols); err != nil {
		return nil
	}
	return cols
}

// DatasetMetadata is the store contract's metadata view
type DatasetMetadata struct {
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
}

// DatasetRow is a persisted reference row with its position in the dataset
type DatasetRow struct {
	ID        string          `json:"id" db:"id"`
	DatasetID string          `json:"dataset_id" db:"dataset_id"`
	TenantID  string          `json:"tenant_id" db:"tenant_id"`
	Ordinal   int             `json:"ordinal" db:"ordinal"`
	Data      json.RawMessage `json:"data" db:"data"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Cells decodes the row data into typed cells. Rows with malformed data
// decode as empty, never error at read time (shape is enforced at ingestion).
func (r *DatasetRow) Cells() ReferenceRow {
	var row ReferenceRow
	if err := json.Unmarshal(r.Data, &row); err != nil {
		return ReferenceRow{}
	}
	return row
}

// CreateDatasetRequest is the request to create a dataset
type CreateDatasetRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description *string  `json:"description,omitempty"`
	Columns     []string `json:"columns" validate:"required,min=1,dive,required"`
}

// UpdateDatasetRequest is the request to update a dataset
type UpdateDatasetRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Columns     []string `json:"columns,omitempty"`
}

// ReplaceRowsRequest replaces a dataset's rows wholesale
type ReplaceRowsRequest struct {
	Rows []map[string]any `json:"rows" validate:"required"`
}

// DatasetListResponse is a paginated dataset listing
type DatasetListResponse struct {
	Items      []Dataset `json:"items"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}
