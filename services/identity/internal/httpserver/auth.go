package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/services/identity/internal/service"
	"github.com/Skotchmaster/classroom/services/identity/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.Svc.Register(ctx, service.RegisterInput{
		Firstname:       req.Firstname,
		Lastname:        req.Lastname,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	}); err != nil {
		return mapError(err)
	}

	return c.NoContent(http.StatusCreated)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return authError(err)
	}

	c.SetCookie(CreateCookie(RefreshCookieName, res.RefreshToken, "/", h.Svc.RefreshTTL, h.CookieSecure))
	return c.JSON(http.StatusOK, transport.NewTokenResponse(res.AccessToken, h.Svc.AccessTTL))
}

// Refresh takes the refresh token from the cookie and falls back to the
// request body for clients that cannot hold cookies.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	raw := ""
	if ck, err := c.Cookie(RefreshCookieName); err == nil {
		raw = ck.Value
	}
	if raw == "" {
		var req transport.RefreshRequest
		if err := c.Bind(&req); err == nil {
			raw = req.RefreshToken
		}
	}
	if raw == "" {
		logging.FromContext(ctx).Warn("refresh_failed", "status", 401, "reason", "missing refresh token")
		return mapError(service.ErrInvalidToken)
	}

	res, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		return authError(err)
	}
	return c.JSON(http.StatusOK, transport.NewTokenResponse(res.AccessToken, h.Svc.AccessTTL))
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	raw := ""
	if ck, err := c.Cookie(RefreshCookieName); err == nil {
		raw = ck.Value
	}
	h.Svc.Logout(ctx, raw)

	c.SetCookie(DeleteCookie(RefreshCookieName, "/", h.CookieSecure))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}
