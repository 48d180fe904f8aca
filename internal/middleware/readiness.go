package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/server"
)

// ReadinessMiddleware holds requests back until the database has been
// provisioned. An unready server gets one provisioning attempt per
// request burst.
type ReadinessMiddleware struct {
	server *server.Server
}

func NewReadinessMiddleware(s *server.Server) *ReadinessMiddleware {
	return &ReadinessMiddleware{server: s}
}

// RequireReady answers 503 while the database cannot be provisioned.
func (r *ReadinessMiddleware) RequireReady() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := r.server.EnsureReady(c.Request().Context()); err != nil {
				GetLogger(c).Warn().Err(err).Msg("database not ready")
				return errs.NewServiceUnavailableError("Database is not ready")
			}
			return next(c)
		}
	}
}
