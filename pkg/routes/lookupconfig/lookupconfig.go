package lookupconfig

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/aster/internal/repositories/dataset"
	"github.com/Ramsey-B/aster/internal/repositories/lookupconfig"
	ctxmiddleware "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

var validate = validator.New()

// Register registers saved lookup config routes. Creation and listing hang
// off the owning dataset; id-addressed operations live on their own group.
func Register(datasets *echo.Group, configs *echo.Group) {
	datasets.GET("/:id/configs", ListByDataset)
	datasets.POST("/:id/configs", Create)
	configs.GET("/:id", Get)
	configs.PUT("/:id", Update)
	configs.DELETE("/:id", Delete)
}

// ListByDataset returns the saved configs for a dataset
func ListByDataset(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lookupconfig_handler.ListByDataset")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	datasetID := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*lookupconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	items, err := repo.ListByDataset(ctx, tenantID, datasetID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list lookup configs")
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Create creates a saved lookup config for a dataset
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lookupconfig_handler.Create")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	datasetID := c.Param("id")

	var req models.CreateLookupConfigRequest
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

	ds, err := datasets.GetByID(ctx, tenantID, datasetID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get dataset")
	}
	if ds == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "dataset not found")
	}

	ctx, repo, err := ectoinject.GetContext[*lookupconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Create(ctx, tenantID, datasetID, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create lookup config")
	}

	return c.JSON(http.StatusCreated, result)
}

// Get returns a saved lookup config by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lookupconfig_handler.Get")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*lookupconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get lookup config")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "lookup config not found")
	}

	return c.JSON(http.StatusOK, result)
}

// Update updates a saved lookup config
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lookupconfig_handler.Update")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	var req models.UpdateLookupConfigRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, repo, err := ectoinject.GetContext[*lookupconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	result, err := repo.Update(ctx, tenantID, id, req)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update lookup config")
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "lookup config not found")
	}

	return c.JSON(http.StatusOK, result)
}

// Delete soft deletes a saved lookup config
func Delete(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lookupconfig_handler.Delete")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*lookupconfig.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	if err := repo.Delete(ctx, tenantID, id); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete lookup config")
	}

	return c.NoContent(http.StatusNoContent)
}
