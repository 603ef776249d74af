package middleware

import (
	"crypto/rsa"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/pkg/tokens"
)

// PublicPaths skip the bearer check. Matching is on the exact request path.
var PublicPaths = []string{
	"/api/v1/auth/login",
	"/api/v1/auth/register",
	"/api/v1/auth/refresh",
	"/api/v1/auth/logout",
	"/health/live",
	"/health/ready",
}

var errNotAccessToken = errors.New("bearer is not an access token")

// Edge is the only place a token is verified. It always drops client-sent
// propagation headers, then for protected paths replaces the bearer token
// with headers derived from its verified claims.
func Edge(pub *rsa.PublicKey) echo.MiddlewareFunc {
	public := make(map[string]struct{}, len(PublicPaths))
	for _, p := range PublicPaths {
		public[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			principal.Strip(req.Header)

			if _, ok := public[req.URL.Path]; ok {
				return next(c)
			}

			ctx := req.Context()
			l := logging.FromContext(ctx)

			raw, ok := bearer(req.Header.Get(echo.HeaderAuthorization))
			if !ok {
				l.Warn("edge_rejected", "status", 401, "reason", "missing bearer token")
				return apperr.Unauthenticated()
			}

			claims, err := tokens.Decode(raw, pub)
			if err == nil && claims.TokenType != tokens.TokenTypeAccess {
				err = errNotAccessToken
			}
			if err != nil {
				l.Warn("edge_rejected", "status", 401, "reason", err.Error())
				return apperr.Unauthenticated().Wrap(err)
			}

			p := claims.Principal()
			p.Apply(req.Header)
			req.Header.Del(echo.HeaderAuthorization)

			l = l.With("user_id", p.UserID, "role", string(p.Role))
			ctx = principal.IntoContext(logging.IntoContext(ctx, l), p)
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func bearer(h string) (string, bool) {
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}
