package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/services/identity/internal/service"
	"github.com/Skotchmaster/classroom/services/identity/internal/transport"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func current(c echo.Context) (principal.Principal, error) {
	p, ok := principal.FromContext(c.Request().Context())
	if !ok {
		return principal.Principal{}, apperr.Forbidden()
	}
	return p, nil
}

func (h *UsersHTTP) Me(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Profile(c.Request().Context(), p)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}

func (h *UsersHTTP) GetByID(c echo.Context) error {
	u, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}

func (h *UsersHTTP) UpdateMe(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, err := h.Svc.UpdateProfile(c.Request().Context(), p, req.Firstname, req.Lastname)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}

func (h *UsersHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_change_password")

	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.PasswordChangeRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("change_password_error", "status", 400, "error", err)
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Svc.ChangePassword(ctx, p, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) Deactivate(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Deactivate(c.Request().Context(), p); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) Reactivate(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Reactivate(c.Request().Context(), p); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UsersHTTP) ChangeRole(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.RoleChangeRequest
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u, err := h.Svc.ChangeRole(c.Request().Context(), p, c.Param("id"), req.Role)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}
