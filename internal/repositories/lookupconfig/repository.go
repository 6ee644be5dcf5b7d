package lookupconfig

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

// LookupConfigRepository defines the interface for saved lookup config operations
type LookupConfigRepository interface {
	Create(ctx context.Context, tenantID, datasetID string, req models.CreateLookupConfigRequest) (*models.LookupConfig, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.LookupConfig, error)
	ListByDataset(ctx context.Context, tenantID, datasetID string) ([]models.LookupConfig, error)
	Update(ctx context.Context, tenantID string, id string, req models.UpdateLookupConfigRequest) (*models.LookupConfig, error)
	Delete(ctx context.Context, tenantID string, id string) error
}

// Repository implements LookupConfigRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new lookup config repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "lookup_configs"

// Get loads a config by id, satisfying the lookup service's store contract
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.LookupConfig, error) {
	return r.GetByID(ctx, tenantID, id)
}

// Create creates a saved lookup config for a dataset
func (r *Repository) Create(ctx context.Context, tenantID, datasetID string, req models.CreateLookupConfigRequest) (*models.LookupConfig, error) {
	ctx, span := tracing.StartSpan(ctx, "LookupConfigRepository.Create")
	defer span.End()

	now := time.Now()
	id := uuid.New().String()

	alsoGet, err := models.MarshalJSONText(req.AlsoGet)
	if err != nil {
		return nil, fmt.Errorf("failed to encode derived mappings: %w", err)
	}

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "tenant_id", "dataset_id", "name", "source_column", "target_column", "fuzzy_threshold", "also_get", "created_at", "updated_at")
	sb.Values(id, tenantID, datasetID, req.Name, req.SourceColumn, req.TargetColumn, req.FuzzyThreshold, alsoGet, now, now)

	query, args := sb.Build()

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to create lookup config")
		return nil, fmt.Errorf("failed to create lookup config: %w", err)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":         id,
		"tenant_id":  tenantID,
		"dataset_id": datasetID,
		"name":       req.Name,
	}).Info("created lookup config")

	return r.GetByID(ctx, tenantID, id)
}

// GetByID gets a lookup config by ID
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.LookupConfig, error) {
	ctx, span := tracing.StartSpan(ctx, "LookupConfigRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "tenant_id", "dataset_id", "name", "source_column", "target_column", "fuzzy_threshold", "also_get", "created_at", "updated_at", "deleted_at")
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	var cfg models.LookupConfig
	err := r.db.GetContext(ctx, &cfg, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("failed to get lookup config by ID")
		return nil, fmt.Errorf("failed to get lookup config: %w", err)
	}

	return &cfg, nil
}

// ListByDataset lists the saved configs for a dataset
func (r *Repository) ListByDataset(ctx context.Context, tenantID, datasetID string) ([]models.LookupConfig, error) {
	ctx, span := tracing.StartSpan(ctx, "LookupConfigRepository.ListByDataset")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "tenant_id", "dataset_id", "name", "source_column", "target_column", "fuzzy_threshold", "also_get", "created_at", "updated_at", "deleted_at")
	sb.From(tableName)
	sb.Where(
		sb.Equal("dataset_id", datasetID),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("name ASC")

	query, args := sb.Build()

	var items []models.LookupConfig
	err := r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to list lookup configs")
		return nil, fmt.Errorf("failed to list lookup configs: %w", err)
	}

	return items, nil
}

// Update updates a saved lookup config
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateLookupConfigRequest) (*models.LookupConfig, error) {
	ctx, span := tracing.StartSpan(ctx, "LookupConfigRepository.Update")
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
	if req.SourceColumn != nil {
		sb.Set(sb.Assign("source_column", *req.SourceColumn))
	}
	if req.TargetColumn != nil {
		sb.Set(sb.Assign("target_column", *req.TargetColumn))
	}
	if req.FuzzyThreshold != nil {
		sb.Set(sb.Assign("fuzzy_threshold", *req.FuzzyThreshold))
	}
	if req.AlsoGet != nil {
		alsoGet, err := models.MarshalJSONText(req.AlsoGet)
		if err != nil {
			return nil, fmt.Errorf("failed to encode derived mappings: %w", err)
		}
		sb.Set(sb.Assign("also_get", alsoGet))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("failed to update lookup config")
		return nil, fmt.Errorf("failed to update lookup config: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("updated lookup config")

	return r.GetByID(ctx, tenantID, id)
}

// Delete soft deletes a lookup config
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "LookupConfigRepository.Delete")
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
		r.logger.WithContext(ctx).WithError(err).Error("failed to delete lookup config")
		return fmt.Errorf("failed to delete lookup config: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"rows_affected": rowsAffected,
	}).Info("deleted lookup config")

	return nil
}
