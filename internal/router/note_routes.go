package router

import (
	"github.com/labstack/echo/v4"

	"github.com/casedesk/casedesk/internal/handler"
)

// RegisterNotes registers the note endpoints under /notes.  Notes are
// always reached through their parent case, so the per-case list is the
// primary read path and gets the response cache.
func RegisterNotes(e *echo.Echo, h *handler.NoteHandler, auth echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	g := e.Group("/notes", auth)
	g.GET("/case/:caseId", h.ListByCase, cache)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
