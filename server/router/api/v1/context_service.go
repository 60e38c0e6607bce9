package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/voxsense/voxsense/internal/errcode"
	"github.com/voxsense/voxsense/server/internal/observability"
)

// ownerID parses the :owner route parameter.
func ownerID(c echo.Context) (int32, error) {
	raw := c.Param("owner")
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid owner id")
	}
	return int32(id), nil
}

// GetCombinedContext returns the full four-tier context block.
// GET /api/v1/owners/:owner/context
func (s *APIV1Service) GetCombinedContext(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	rc := observability.NewRequestContext(nil, owner)
	ctx := observability.WithRequestContext(c.Request().Context(), rc)

	result := s.ContextService.CombinedContext(ctx, owner)
	rc.Info("served combined context", slog.Int64(observability.LogFieldDuration, rc.DurationMs()))
	return c.JSON(http.StatusOK, result)
}

// GetTodayContext returns today's raw notes only.
// GET /api/v1/owners/:owner/context/today
func (s *APIV1Service) GetTodayContext(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	rc := observability.NewRequestContext(nil, owner)
	ctx := observability.WithRequestContext(c.Request().Context(), rc)

	result := s.ContextService.TodayContext(ctx, owner)
	return c.JSON(http.StatusOK, result)
}

// GetRelevantContext runs a keyword search over recent notes.
// GET /api/v1/owners/:owner/context/relevant?q=...
func (s *APIV1Service) GetRelevantContext(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
	}
	rc := observability.NewRequestContext(nil, owner)
	ctx := observability.WithRequestContext(c.Request().Context(), rc)

	s.Stats.RecordSearch()
	result, err := s.ContextService.FindRelevant(ctx, query, owner)
	if err != nil {
		rc.Error("relevance search failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": string(errcode.CodeOf(err))})
	}
	return c.JSON(http.StatusOK, result)
}

// GetStaleness reports whether yesterday's daily summary is missing.
// GET /api/v1/owners/:owner/context/staleness
func (s *APIV1Service) GetStaleness(c echo.Context) error {
	owner, err := ownerID(c)
	if err != nil {
		return err
	}
	rc := observability.NewRequestContext(nil, owner)
	ctx := observability.WithRequestContext(c.Request().Context(), rc)

	report, err := s.ContextService.CheckStaleness(ctx, owner)
	if err != nil {
		rc.Error("staleness check failed", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": string(errcode.CodeOf(err))})
	}
	return c.JSON(http.StatusOK, report)
}
