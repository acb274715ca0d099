// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/casedesk/casedesk/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the static file
// route that serves stored document bytes.
func RegisterRoutes(e *echo.Echo, uploadDir string) {
	// Load balancers and monitoring probe this endpoint to verify the
	// service is up.
	e.GET("/healthz", handler.Health)

	// Uploaded documents are served back by their generated name.
	e.Static("/uploads", uploadDir)
}

// RegisterAuth registers all authentication-related routes.  The public
// credential endpoints sit behind the rate limiter so password and token
// guessing is throttled; /auth/me and /auth/refresh require a valid
// bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc, limiter echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/signup", a.Signup, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/google", a.GoogleAuth, limiter)

	g.GET("/me", a.Me, auth)
	g.POST("/refresh", a.Refresh, auth)
}
