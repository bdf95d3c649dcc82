// Package router assembles the echo server: global middleware, the error
// handler and every API route.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/golf-tee-booking/internal/config"
	"github.com/iliyamo/golf-tee-booking/internal/handler"
	"github.com/iliyamo/golf-tee-booking/internal/middleware"
)

// New returns an echo instance with the global middleware chain applied:
// recover, request log, security headers, CORS and body limit. Rate
// limiting is attached per route so authenticated routes are keyed by user.
func New(cfg config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "no-referrer",
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: cfg.CORSOrigin != "*",
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	return e
}

// RegisterRoutes registers the unauthenticated operational endpoints.
// ready may be nil.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready)
	}
}

// RegisterUploads serves stored profile pictures from dir. Only the disk
// picture store needs it.
func RegisterUploads(e *echo.Echo, dir string) {
	e.Static("/uploads", dir)
}

// RegisterAuth registers account routes. gate is the JWT middleware and
// limit the rate limiter; limit runs after gate on protected routes.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, gate, limit echo.MiddlewareFunc) {
	e.POST("/api/register", a.Register, limit)
	e.POST("/auth/login", a.Login, limit)
	e.POST("/auth/logout", a.Logout, gate, limit)

	api := e.Group("/api", gate, limit)
	api.GET("/current-user", a.CurrentUser)
	api.POST("/update-profile", p.Update)
}

// RegisterBooking registers tee-time browsing and booking routes. Only the
// tee-time listing goes through the response cache.
func RegisterBooking(e *echo.Echo, t *handler.TeeTimeHandler, b *handler.BookingHandler, gate, limit echo.MiddlewareFunc, cache *middleware.ResponseCache) {
	api := e.Group("/api", gate, limit)
	api.GET("/tee-times/:course/:holes", t.List, cache.Middleware())
	api.POST("/bookings", b.Create)
	api.GET("/bookings/:id", b.Get)
	api.GET("/my-bookings", b.Mine)
}

// RegisterChat registers the booking assistant.
func RegisterChat(e *echo.Echo, ch *handler.ChatHandler, limit echo.MiddlewareFunc) {
	e.POST("/api/chat", ch.Reply, limit)
}
