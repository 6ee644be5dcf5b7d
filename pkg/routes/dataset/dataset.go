package dataset

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/aster/internal/repositories/dataset"
	"github.com/Ramsey-B/aster/internal/repositories/datasetrow"
	ctxmiddleware "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/lookup"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

var validate = validator.New()

// Register registers dataset routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.POST("", Create)
	g.GET("/:id", Get)
	g.GET("/:id/metadata", GetMetadata)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
	g.GET("/:id/rows", GetRows)
	g.PUT("/:id/rows", ReplaceRows)
}

// List returns all datasets for the tenant
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.List")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, repo, err := ectoinject.GetContext[*dataset.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, totalCount, err := repo.List(ctx, tenantID, page, pageSize)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list datasets")
	}

	return c.JSON(http.StatusOK, models.DatasetListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Create creates a new dataset
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.Create")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req models.CreateDatasetRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*dataset.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Create(ctx, tenantID, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create dataset")
	}

	return c.JSON(http.StatusCreated, result)
}

// Get returns a single dataset by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.Get")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*dataset.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get dataset")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "dataset not found")
	}

	return c.JSON(http.StatusOK, result)
}

// GetMetadata returns the dataset's column set and row count
func GetMetadata(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.GetMetadata")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*dataset.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	metadata, err := repo.GetMetadata(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get dataset metadata")
	}
	if metadata == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "dataset not found")
	}

	return c.JSON(http.StatusOK, metadata)
}

// Update updates a dataset
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.Update")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	var req models.UpdateDatasetRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*dataset.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Update(ctx, tenantID, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update dataset")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "dataset not found")
	}

	return c.JSON(http.StatusOK, result)
}

// Delete soft deletes a dataset
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*dataset.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete dataset")
	}

	ctx, svc, err := ectoinject.GetContext[*lookup.Service](ctx)
	if err == nil {
		svc.InvalidateRows(ctx, tenantID, id)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetRows returns a dataset's rows in ordinal order
func GetRows(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.GetRows")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, datasets, err := ectoinject.GetContext[*dataset.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	ds, err := datasets.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get dataset")
	}
	if ds == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "dataset not found")
	}

	ctx, rows, err := ectoinject.GetContext[*datasetrow.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := rows.GetRows(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get dataset rows")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"items":     items,
		"row_count": len(items),
	})
}

// ReplaceRows replaces a dataset's rows wholesale
func ReplaceRows(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "dataset_handler.ReplaceRows")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	var req models.ReplaceRowsRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, datasets, err := ectoinject.GetContext[*dataset.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	ds, err := datasets.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get dataset")
	}
	if ds == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "dataset not found")
	}

	ctx, rows, err := ectoinject.GetContext[*datasetrow.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	rowCount, err := rows.ReplaceRows(ctx, tenantID, id, req.Rows)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Cached rows are stale after a replacement
	ctx, svc, err := ectoinject.GetContext[*lookup.Service](ctx)
	if err == nil {
		svc.InvalidateRows(ctx, tenantID, id)
	}

	return c.JSON(http.StatusOK, map[string]any{"row_count": rowCount})
}
