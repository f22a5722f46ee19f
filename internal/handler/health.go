package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports that the process is serving.  It does not touch the
// providers, Redis or the broker.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
