package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/attendance-api/internal/handler"
)

// registerSystemRoutes registers endpoints that stay reachable while the
// database is down.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/api/ping", h.Health.Ping)
	r.GET("/status", h.Health.CheckHealth)
}
