package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/pkg/db"
	"github.com/Skotchmaster/classroom/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/classroom/pkg/middleware/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/pkg/validation"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	UsersHandler *UsersHTTP
	DB           *gorm.DB
	Logger       *slog.Logger
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Validator = validation.New()

	e.Use(ecM.Recover())
	e.Use(ecM.RequestID())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(auth.TrustHeaders())

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ready(c.Request().Context(), d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	a := e.Group("/auth")
	a.POST("/register", d.AuthHandler.Register)
	a.POST("/login", d.AuthHandler.Login)
	a.POST("/refresh", d.AuthHandler.Refresh)
	a.POST("/logout", d.AuthHandler.Logout)

	u := e.Group("/users", auth.RequirePrincipal())
	u.GET("/me", d.UsersHandler.Me)
	u.PATCH("/me", d.UsersHandler.UpdateMe)
	u.POST("/me/password", d.UsersHandler.ChangePassword)
	u.POST("/me/deactivate", d.UsersHandler.Deactivate)
	u.POST("/me/reactivate", d.UsersHandler.Reactivate)
	u.GET("/:id", d.UsersHandler.GetByID)
	u.PATCH("/:id/role", d.UsersHandler.ChangeRole, auth.RequireRole(principal.RoleAdmin))
}
