package router

import (
	"github.com/labstack/echo/v4"

	"github.com/casedesk/casedesk/internal/handler"
)

// RegisterDocuments registers the document endpoints under /documents.
// Upload is rate limited like the public auth routes because it accepts
// multi-megabyte bodies.
func RegisterDocuments(e *echo.Echo, h *handler.DocumentHandler, auth echo.MiddlewareFunc, cache echo.MiddlewareFunc, limiter echo.MiddlewareFunc) {
	g := e.Group("/documents", auth)
	g.GET("/case/:caseId", h.ListByCase, cache)
	g.POST("", h.Upload, limiter)
	g.DELETE("/:id", h.Delete)
}
