package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
)

// RequireRole answers 403 when there is no principal or its role is not
// listed. A missing principal here means the gateway did not forward one,
// so it is an authorization failure and not a 401. ADMIN gets no implicit pass.
func RequireRole(roles ...principal.Role) echo.MiddlewareFunc {
	return guard(func(p principal.Principal) bool { return p.HasRole(roles...) })
}

// RequirePrincipal admits any authenticated caller.
func RequirePrincipal() echo.MiddlewareFunc {
	return guard(func(principal.Principal) bool { return true })
}

func guard(allow func(principal.Principal) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			p, ok := principal.FromContext(ctx)
			if !ok || !allow(p) {
				logging.FromContext(ctx).Warn("access_denied", "status", 403, "anonymous", !ok, "path", c.Path())
				return apperr.Forbidden()
			}
			return next(c)
		}
	}
}
