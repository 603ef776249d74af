// Package auth is the downstream half of authentication. Services behind the
// gateway do no cryptography: they trust the propagation headers the gateway
// set after verifying the caller's access token. That trust is only sound
// while service ports are reachable from the gateway alone.
package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
)

// TrustHeaders attaches the forwarded principal to the request context.
// Requests without X-User-Id pass through as anonymous.
func TrustHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := principal.FromHeaders(c.Request().Header)
			if !ok {
				return next(c)
			}

			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("user_id", p.UserID, "role", string(p.Role))
			ctx = principal.IntoContext(logging.IntoContext(ctx, l), p)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
