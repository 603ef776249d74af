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
	AssignmentHandler *AssignmentHTTP
	DB                *gorm.DB
	Logger            *slog.Logger
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

	teacherOnly := auth.RequireRole(principal.RoleTeacher)
	studentOnly := auth.RequireRole(principal.RoleStudent)

	h := d.AssignmentHandler
	assignments := e.Group("/assignments", auth.RequirePrincipal())
	assignments.GET("", h.List)
	assignments.GET("/:id", h.Get)
	assignments.POST("", h.Create, teacherOnly)
	assignments.PATCH("/:id", h.Update, teacherOnly)
	assignments.DELETE("/:id", h.Delete, teacherOnly)

	assignments.POST("/:id/submissions", h.Submit, studentOnly)
	assignments.GET("/:id/submissions", h.ListSubmissions, teacherOnly)
	assignments.PATCH("/:id/submissions/:submissionId", h.Grade, teacherOnly)
	assignments.DELETE("/:id/submissions/:submissionId", h.DeleteSubmission)
}
