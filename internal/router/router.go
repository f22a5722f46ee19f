// Package router registers the HTTP routes on an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/schedule-builder/internal/handler"
	"github.com/iliyamo/schedule-builder/internal/middleware"
	"github.com/iliyamo/schedule-builder/internal/session"
)

// RegisterRoutes registers routes that need neither a session nor rate
// limiting.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the read-only course routes.  They need no
// session; limit is applied per client.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", limit)
	g.GET("/courses", h.ListCourses)
	g.GET("/courses/:code", h.GetCourse)
	g.GET("/geneds/:tag", h.ListGenEd)
	g.GET("/professors", h.ListProfessors)
	g.GET("/professors/:name", h.GetProfessor)
	g.GET("/search", h.Search)
}

// RegisterSchedule registers the schedule routes.  Session runs before
// the limiter so buckets can be keyed by session.
func RegisterSchedule(e *echo.Echo, h *handler.ScheduleHandler, tokens *session.Tokens, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/schedule", middleware.Session(tokens), limit)
	g.GET("", h.Get)
	g.DELETE("", h.Clear)
	g.POST("/sections", h.AddSection)
	g.DELETE("/sections/:code", h.RemoveSection)
	g.POST("/load", h.Load)
	g.GET("/export.ics", h.Export)
}
