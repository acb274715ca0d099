package router

import (
	"github.com/labstack/echo/v4"

	"github.com/casedesk/casedesk/internal/handler"
)

// RegisterSpeeches registers the speech endpoints under /speeches.  The
// surface mirrors the note routes.
func RegisterSpeeches(e *echo.Echo, h *handler.SpeechHandler, auth echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	g := e.Group("/speeches", auth)
	g.GET("/case/:caseId", h.ListByCase, cache)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
