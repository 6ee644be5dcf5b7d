package lookup

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/aster/pkg/context"
	lookupsvc "github.com/Ramsey-B/aster/pkg/lookup"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/review"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

var validate = validator.New()

// Register registers lookup resolution routes
func Register(g *echo.Group) {
	g.POST("", Resolve)
	g.POST("/batch", ResolveBatch)
	g.POST("/config/:id", ResolveWithConfig)
}

// LookupRequest resolves one input against a dataset with an inline config
type LookupRequest struct {
	DatasetID string             `json:"dataset_id" validate:"required"`
	Input     string             `json:"input"`
	Config    models.MatchConfig `json:"config" validate:"required"`
}

// BatchLookupRequest resolves a batch of cells against one dataset. When
// CreateReviewSession is set, fuzzy matches below the review threshold are
// loaded into a new review session.
type BatchLookupRequest struct {
	DatasetID           string                `json:"dataset_id" validate:"required"`
	Items               []lookupsvc.BatchItem `json:"items" validate:"required,min=1,dive"`
	Config              models.MatchConfig    `json:"config" validate:"required"`
	CreateReviewSession bool                  `json:"create_review_session"`
}

// BatchLookupResponse is the batch outcome plus the review session seeded
// from it, when one was requested.
type BatchLookupResponse struct {
	Outcomes         []lookupsvc.BatchOutcome `json:"outcomes"`
	ReviewCandidates []models.RawMatch        `json:"review_candidates"`
	SessionID        *string                  `json:"session_id,omitempty"`
}

// ConfigLookupRequest resolves one input using a saved lookup config
type ConfigLookupRequest struct {
	Input string `json:"input"`
}

// Resolve runs a single lookup with an inline match config
func Resolve(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lookup_handler.Resolve")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*lookupsvc.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get lookup service")
	}

	result, err := svc.Lookup(ctx, tenantID, req.DatasetID, req.Input, req.Config)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to run lookup")
	}

	return c.JSON(http.StatusOK, result)
}

// ResolveBatch runs a batch lookup, optionally seeding a review session
func ResolveBatch(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lookup_handler.ResolveBatch")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req BatchLookupRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*lookupsvc.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get lookup service")
	}

	batch, err := svc.LookupBatch(ctx, tenantID, req.DatasetID, req.Items, req.Config)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to run batch lookup")
	}

	resp := BatchLookupResponse{
		Outcomes:         batch.Outcomes,
		ReviewCandidates: batch.ReviewCandidates,
	}

	if req.CreateReviewSession && len(batch.ReviewCandidates) > 0 {
		ctx, manager, err := ectoinject.GetContext[*review.Manager](ctx)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get review manager")
		}
		_ = ctx
		session := manager.Create(tenantID, batch.ReviewCandidates)
		resp.SessionID = &session.ID
	}

	return c.JSON(http.StatusOK, resp)
}

// ResolveWithConfig runs a single lookup using a saved config
func ResolveWithConfig(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lookup_handler.ResolveWithConfig")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}
	configID := c.Param("id")

	var req ConfigLookupRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx, svc, err := ectoinject.GetContext[*lookupsvc.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get lookup service")
	}

	result, err := svc.LookupWithConfig(ctx, tenantID, configID, req.Input)
	if err != nil {
		return httperror.NewHTTPError(http.StatusNotFound, "lookup config not found")
	}

	return c.JSON(http.StatusOK, result)
}
