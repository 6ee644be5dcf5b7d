package datasetrow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

// DatasetRowRepository defines the interface for dataset row operations
type DatasetRowRepository interface {
	GetRows(ctx context.Context, tenantID, datasetID string) ([]models.DatasetRow, error)
	ReplaceRows(ctx context.Context, tenantID, datasetID string, rows []map[string]any) (int, error)
}

// Repository implements DatasetRowRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new dataset row repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "dataset_rows"

// GetRows returns a dataset's rows in ordinal order. A dataset with no rows
// (or an unknown dataset) returns an empty slice.
func (r *Repository) GetRows(ctx context.Context, tenantID, datasetID string) ([]models.DatasetRow, error) {
	ctx, span := tracing.StartSpan(ctx, "DatasetRowRepository.GetRows")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "dataset_id", "tenant_id", "ordinal", "data", "created_at")
	sb.From(tableName)
	sb.Where(
		sb.Equal("dataset_id", datasetID),
		sb.Equal("tenant_id", tenantID),
	)
	sb.OrderBy("ordinal ASC")

	query, args := sb.Build()

	var rows []models.DatasetRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to get dataset rows")
		return nil, fmt.Errorf("failed to get dataset rows: %w", err)
	}

	return rows, nil
}

// ReplaceRows swaps a dataset's rows wholesale in one transaction. Cell
// values must be scalars; rows with nested values are rejected before any
// write happens. Returns the new row count.
func (r *Repository) ReplaceRows(ctx context.Context, tenantID, datasetID string, rows []map[string]any) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "DatasetRowRepository.ReplaceRows")
	defer span.End()

	now := time.Now()

	// Validate and encode up front so the transaction never sees bad input
	encoded := make([]json.RawMessage, 0, len(rows))
	for i, raw := range rows {
		cells := make(models.ReferenceRow, len(raw))
		for column, value := range raw {
			cell, err := models.CellFromAny(value)
			if err != nil {
				return 0, fmt.Errorf("row %d column %q: %w", i, column, err)
			}
			cells[column] = cell
		}
		data, err := json.Marshal(cells)
		if err != nil {
			return 0, fmt.Errorf("row %d: failed to encode: %w", i, err)
		}
		encoded = append(encoded, data)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteSb := sqlbuilder.NewDeleteBuilder()
	deleteSb.DeleteFrom(tableName)
	deleteSb.Where(
		deleteSb.Equal("dataset_id", datasetID),
		deleteSb.Equal("tenant_id", tenantID),
	)
	deleteQuery, deleteArgs := deleteSb.Build()

	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to clear dataset rows")
		return 0, fmt.Errorf("failed to clear dataset rows: %w", err)
	}

	if len(encoded) > 0 {
		insertSb := sqlbuilder.NewInsertBuilder()
		insertSb.InsertInto(tableName)
		insertSb.Cols("id", "dataset_id", "tenant_id", "ordinal", "data", "created_at")
		for ordinal, data := range encoded {
			insertSb.Values(uuid.New().String(), datasetID, tenantID, ordinal, []byte(data), now)
		}
		insertQuery, insertArgs := insertSb.Build()

		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("failed to insert dataset rows")
			return 0, fmt.Errorf("failed to insert dataset rows: %w", err)
		}
	}

	updateSb := sqlbuilder.NewUpdateBuilder()
	updateSb.Update("datasets")
	updateSb.Set(
		updateSb.Assign("row_count", len(encoded)),
		updateSb.Assign("updated_at", now),
	)
	updateSb.Where(
		updateSb.Equal("id", datasetID),
		updateSb.Equal("tenant_id", tenantID),
	)
	updateQuery, updateArgs := updateSb.Build()

	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update dataset row count")
		return 0, fmt.Errorf("failed to update dataset row count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit row replacement: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"dataset_id": datasetID,
		"tenant_id":  tenantID,
		"row_count":  len(encoded),
	}).Info("replaced dataset rows")

	return len(encoded), nil
}
