package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

// DatasetRepository defines the interface for dataset operations
type DatasetRepository interface {
	Create(ctx context.Context, tenantID string, req models.CreateDatasetRequest) (*models.Dataset, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.Dataset, error)
	GetMetadata(ctx context.Context, tenantID string, id string) (*models.DatasetMetadata, error)
	List(ctx context.Context, tenantID string, page, pageSize int) ([]models.Dataset, int, error)
	Update(ctx context.Context, tenantID string, id string, req models.UpdateDatasetRequest) (*models.Dataset, error)
	Delete(ctx context.Context, tenantID string, id string) error
}

// Repository implements DatasetRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new dataset repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "datasets"

// Create creates a new dataset
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateDatasetRequest) (*models.Dataset, error) {
	ctx, span := tracing.StartSpan(ctx, "DatasetRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	columns, err := models.MarshalJSONText(req.Columns)
	if err != nil {
		return nil, fmt.Errorf("failed to encode columns: %w", err)
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "tenant_id", "name", "description", "columns", "row_count", "created_at", "updated_at")
	sb.Values(id, tenantID, req.Name, req.Description, columns, 0, now, now)

	query, args := sb.Build()

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create dataset")
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        id,
		"tenant_id": tenantID,
		"name":      req.Name,
	}).Info("created dataset")

	return r.GetByID(ctx, tenantID, id)
}

// GetByID gets a dataset by ID
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.Dataset, error) {
	ctx, span := tracing.StartSpan(ctx, "DatasetRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "tenant_id", "name", "description", "columns", "row_count", "created_at", "updated_at", "deleted_at")
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	var ds models.Dataset
	err := r.db.GetContext(ctx, &ds, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get dataset by ID")
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	return &ds, nil
}

// GetMetadata returns the dataset's column set and row count
func (r *Repository) GetMetadata(ctx context.Context, tenantID string, id string) (*models.DatasetMetadata, error) {
	ctx, span := tracing.StartSpan(ctx, "DatasetRepository.GetMetadata")
	defer span.End()

	ds, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, nil
	}

	return &models.DatasetMetadata{
		Columns:  ds.ColumnNames(),
		RowCount: ds.RowCount,
	}, nil
}

// List lists datasets for a tenant with pagination
func (r *Repository) List(ctx context.Context, tenantID string, page, pageSize int) ([]models.Dataset, int, error) {
	ctx, span := tracing.StartSpan(ctx, "DatasetRepository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	countSb.Where(
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to count datasets")
		return nil, 0, fmt.Errorf("failed to count datasets: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "tenant_id", "name", "description", "columns", "row_count", "created_at", "updated_at", "deleted_at")
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name ASC")
	sb.Limit(pageSize)
	sb.Offset(offset)

	query, args := sb.Build()

	var items []models.Dataset
	err = r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list datasets")
		return nil, 0, fmt.Errorf("failed to list datasets: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a dataset's name, description, or column set
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateDatasetRequest) (*models.Dataset, error) {
	ctx, span := tracing.StartSpan(ctx, "DatasetRepository.Update")
	defer span.End()

	existing, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("updated_at", time.Now()))

	if req.Name != nil {
		sb.Set(sb.Assign("name", *req.Name))
	}
	if req.Description != nil {
		sb.Set(sb.Assign("description", *req.Description))
	}
	if req.Columns != nil {
		columns, err := models.MarshalJSONText(req.Columns)
		if err != nil {
			return nil, fmt.Errorf("failed to encode columns: %w", err)
		}
		sb.Set(sb.Assign("columns", columns))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update dataset")
		return nil, fmt.Errorf("failed to update dataset: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("updated dataset")

	return r.GetByID(ctx, tenantID, id)
}

// Delete soft deletes a dataset
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "DatasetRepository.Delete")
	defer span.End()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(sb.Assign("deleted_at", time.Now()))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete dataset")
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("deleted dataset")

	return nil
}
