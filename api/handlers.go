package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spektr-org/bizlens/helpers"
	"github.com/spektr-org/bizlens/insights"
	"github.com/spektr-org/bizlens/schema"
)

// HeaderRunID carries the run id of a dashboard response.
const HeaderRunID = "X-Run-Id"

// Output formats of GET /api/views/:name.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatChart = "chart"
)

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listViews(c echo.Context) error {
	return c.JSON(http.StatusOK, schema.Catalog())
}

func (s *Server) runView(c echo.Context) error {
	params := make(map[string]string)
	for k, vs := range c.QueryParams() {
		if k != "format" && len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	format := strings.ToLower(c.QueryParam("format"))
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV && format != FormatChart {
		return s.fail(c, &insights.ValidationError{Field: "format", Message: "must be one of json, csv, chart"})
	}

	res, err := s.svc.Execute(c.Request().Context(), insights.Request{View: c.Param("name"), Params: params})
	if err != nil {
		return s.fail(c, err)
	}

	switch format {
	case FormatCSV:
		c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", res.View+".csv"))
		c.Response().WriteHeader(http.StatusOK)
		return helpers.WriteTableCSV(c.Response(), res.Table)
	case FormatChart:
		if res.Chart == nil {
			return s.fail(c, &insights.ValidationError{Field: "format", Message: fmt.Sprintf("view %s has no chart", res.View)})
		}
		return c.JSON(http.StatusOK, res.Chart)
	default:
		return c.JSON(http.StatusOK, res)
	}
}

func (s *Server) dashboard(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("min_star"))
	minStar, err := strconv.Atoi(raw)
	if err != nil {
		return s.fail(c, &insights.ValidationError{Field: "min_star", Message: fmt.Sprintf("must be an integer, got %q", raw)})
	}

	d, err := s.svc.Dashboard(c.Request().Context(), strings.TrimSpace(c.QueryParam("city")), minStar)
	if err != nil {
		return s.fail(c, err)
	}
	c.Response().Header().Set(HeaderRunID, d.RunID)
	return c.JSON(http.StatusOK, d)
}

// fail writes the status and body for a view error.
func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, insights.ErrValidation):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, insights.ErrNoData):
		return c.JSON(http.StatusNotFound, map[string]string{"message": err.Error()})
	case errors.Is(err, insights.ErrStoreUnavailable):
		s.log.Error().Err(err).Str("path", c.Path()).Msg("store unavailable")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": insights.ErrStoreUnavailable.Error()})
	default:
		s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
