// Package router builds the echo instance: it installs the global
// middleware chain and maps every route to its handler.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/attendance-api/internal/handler"
	"github.com/deppfellow/attendance-api/internal/middleware"
	"github.com/deppfellow/attendance-api/internal/server"
)

// NewRouter wires middleware and routes. Order matters: the request id
// and the New Relic transaction must exist before the request logger is
// built, and the rate limiter runs before any handler touches the
// database.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	r.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.RateLimit.Limit(),
	)

	registerSystemRoutes(r, h)
	registerStudentRoutes(r, h, middlewares.Readiness.RequireReady())
	registerAttendanceRoutes(r, h, middlewares.Readiness.RequireReady())

	return r
}
