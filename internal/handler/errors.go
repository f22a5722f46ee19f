// Package handler exposes the catalog and schedule over HTTP.  Handlers
// hold their dependencies in a struct and answer JSON, with failures as
// {"error": "..."}.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/schedule-builder/internal/catalog"
	"github.com/iliyamo/schedule-builder/internal/model"
	"github.com/iliyamo/schedule-builder/internal/provider"
	"github.com/iliyamo/schedule-builder/internal/schedule"
)

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		ce *schedule.ConflictError
		le *catalog.LookupError
		ae *provider.AdaptationError
	)
	switch {
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ae):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrInvalidCourseCode):
		return http.StatusBadRequest
	case errors.As(err, &le):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail writes err with the status statusFor picks.  Internal errors are
// not echoed to the client.
func fail(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("handler: %v", err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
