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
	CourseHandler *CourseHTTP
	DB            *gorm.DB
	Logger        *slog.Logger
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

	courses := e.Group("/courses", auth.RequirePrincipal())
	courses.GET("", d.CourseHandler.ListMine)
	courses.GET("/search", d.CourseHandler.Search)
	courses.POST("/join", d.CourseHandler.Join)
	courses.GET("/:id", d.CourseHandler.Get)
	courses.POST("/:id/leave", d.CourseHandler.Leave)

	teacherOnly := auth.RequireRole(principal.RoleTeacher)
	courses.POST("", d.CourseHandler.Create, teacherOnly)
	courses.PATCH("/:id", d.CourseHandler.Update, teacherOnly)
	courses.DELETE("/:id", d.CourseHandler.Delete, teacherOnly)
	courses.DELETE("/:id/members/:memberId", d.CourseHandler.RemoveMember, teacherOnly)
}
