package router

import (
	"github.com/labstack/echo/v4"

	"github.com/casedesk/casedesk/internal/handler"
)

// RegisterCases registers the case CRUD endpoints under /cases.  Every
// route requires a bearer token; the list route additionally sits behind
// the response cache so repeated dashboard loads do not hit the database.
func RegisterCases(e *echo.Echo, h *handler.CaseHandler, auth echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	g := e.Group("/cases", auth)
	g.GET("", h.List, cache)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
