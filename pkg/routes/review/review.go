package review

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/Ramsey-B/aster/pkg/context"
	"github.com/Ramsey-B/aster/pkg/models"
	reviewpkg "github.com/Ramsey-B/aster/pkg/review"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

var validate = validator.New()

// Register registers review session routes
func Register(g *echo.Group) {
	g.POST("", CreateSession)
	g.GET("", ListSessions)
	g.GET("/:id", GetSession)
	g.DELETE("/:id", DeleteSession)
	g.GET("/:id/matches", GetMatches)
	g.GET("/:id/stats", GetStats)
	g.POST("/:id/matches/:matchId/accept", AcceptMatch)
	g.POST("/:id/matches/:matchId/reject", RejectMatch)
	g.POST("/:id/matches/:matchId/manual", SetManualValue)
	g.POST("/:id/matches/:matchId/toggle", ToggleSelection)
	g.POST("/:id/selection/all", SelectAll)
	g.POST("/:id/selection/clear", ClearSelection)
	g.POST("/:id/selection/accept", AcceptSelected)
	g.POST("/:id/selection/reject", RejectSelected)
	g.PUT("/:id/filter", UpdateFilter)
	g.POST("/:id/reset", ResetAll)
}

// CreateSessionRequest loads a batch of raw matches into a new session
type CreateSessionRequest struct {
	Matches []models.RawMatch `json:"matches" validate:"required,min=1,dive"`
}

// AcceptRequest optionally overrides the suggested value
type AcceptRequest struct {
	Value *string `json:"value,omitempty"`
}

// ManualValueRequest sets an operator-provided value
type ManualValueRequest struct {
	Value string `json:"value" validate:"required"`
}

// SelectAllRequest optionally narrows selection beyond the current filter
type SelectAllRequest struct {
	Criteria *models.ReviewFilter `json:"criteria,omitempty"`
}

// SessionResponse is the session summary returned by session-level routes
type SessionResponse struct {
	ID        string              `json:"id"`
	CreatedAt string              `json:"created_at"`
	Stats     models.ReviewStats  `json:"stats"`
	Filter    models.ReviewFilter `json:"filter"`
	Selected  []string            `json:"selected"`
	Complete  bool                `json:"complete"`
}

func sessionResponse(s *reviewpkg.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		Stats:     s.Stats(),
		Filter:    s.Filter(),
		Selected:  s.SelectedIDs(),
		Complete:  s.IsComplete(),
	}
}

// getSession resolves the tenant's session or fails the request
func getSession(c echo.Context) (*reviewpkg.Session, error) {
	ctx := c.Request().Context()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return nil, httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	_, manager, err := ectoinject.GetContext[*reviewpkg.Manager](ctx)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get review manager")
	}

	session := manager.Get(tenantID, c.Param("id"))
	if session == nil {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "review session not found")
	}
	return session, nil
}

// CreateSession creates a review session from a batch of raw matches
func CreateSession(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "review_handler.CreateSession")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	_, manager, err := ectoinject.GetContext[*reviewpkg.Manager](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get review manager")
	}

	session := manager.Create(tenantID, req.Matches)
	return c.JSON(http.StatusCreated, sessionResponse(session))
}

// ListSessions lists the tenant's live sessions
func ListSessions(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "review_handler.ListSessions")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	_, manager, err := ectoinject.GetContext[*reviewpkg.Manager](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get review manager")
	}

	sessions := manager.List(tenantID)
	items := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, sessionResponse(session))
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// GetSession returns the session summary
func GetSession(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "review_handler.GetSession")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

// DeleteSession discards a session. Pending work is abandoned.
func DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "review_handler.DeleteSession")
	defer span.End()

	tenantID := ctxmiddleware.GetTenantID(ctx)
	if tenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	_, manager, err := ectoinject.GetContext[*reviewpkg.Manager](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get review manager")
	}

	manager.Delete(tenantID, c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// GetMatches returns the matches visible under the current filter
func GetMatches(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "review_handler.GetMatches")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	matches := session.FilteredMatches()
	return c.JSON(http.StatusOK, map[string]any{
		"items":       matches,
		"total_count": len(matches),
	})
}

// GetStats returns the session's aggregate counts
func GetStats(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "review_handler.GetStats")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, session.Stats())
}

// AcceptMatch accepts one match
func AcceptMatch(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "review_handler.AcceptMatch")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	var req AcceptRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session.Accept(ctx, c.Param("matchId"), req.Value)
	return c.JSON(http.StatusOK, session.Stats())
}

// RejectMatch rejects one match
func RejectMatch(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "review_handler.RejectMatch")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	session.Reject(ctx, c.Param("matchId"))
	return c.JSON(http.StatusOK, session.Stats())
}

// SetManualValue replaces the suggestion with an operator-provided value
func SetManualValue(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "review_handler.SetManualValue")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	var req ManualValueRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session.SetManualValue(ctx, c.Param("matchId"), req.Value)
	return c.JSON(http.StatusOK, session.Stats())
}

// ToggleSelection flips a match's selection
func ToggleSelection(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "review_handler.ToggleSelection")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	session.ToggleSelection(c.Param("matchId"))
	return c.JSON(http.StatusOK, map[string]any{"selected": session.SelectedIDs()})
}

// SelectAll selects the pending matches under the filter or given criteria
func SelectAll(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "review_handler.SelectAll")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	var req SelectAllRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session.SelectAll(req.Criteria)
	return c.JSON(http.StatusOK, map[string]any{"selected": session.SelectedIDs()})
}

// ClearSelection empties the selection set
func ClearSelection(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "review_handler.ClearSelection")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	session.ClearSelection()
	return c.NoContent(http.StatusNoContent)
}

// AcceptSelected accepts every selected pending match
func AcceptSelected(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "review_handler.AcceptSelected")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	var req AcceptRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session.AcceptSelected(ctx, req.Value)
	return c.JSON(http.StatusOK, session.Stats())
}

// RejectSelected rejects every selected pending match
func RejectSelected(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "review_handler.RejectSelected")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	session.RejectSelected(ctx)
	return c.JSON(http.StatusOK, session.Stats())
}

// UpdateFilter merges a partial filter into the session's current filter
func UpdateFilter(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "review_handler.UpdateFilter")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	var patch models.ReviewFilter
	if err := c.Bind(&patch); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if patch.ConfidenceRange != nil {
		low, high := patch.ConfidenceRange[0], patch.ConfidenceRange[1]
		if low < 0 || high > 1 || low > high {
			return httperror.NewHTTPError(http.StatusBadRequest, "confidence_range must be an ordered pair within [0, 1]")
		}
	}

	session.UpdateFilter(patch)
	return c.JSON(http.StatusOK, session.Filter())
}

// ResetAll returns every match to pending
func ResetAll(c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "review_handler.ResetAll")
	defer span.End()

	session, err := getSession(c)
	if err != nil {
		return err
	}

	session.ResetAll()
	return c.JSON(http.StatusOK, session.Stats())
}
