package httpserver

import (
	"crypto/rsa"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/gateway/internal/middleware"
	"github.com/Skotchmaster/classroom/pkg/apperr"
)

type Deps struct {
	Identity Upstream
	Academic Upstream
	Grading  Upstream

	// ReadyTimeout bounds the upstream checks behind /health/ready.
	ReadyTimeout time.Duration

	PublicKey *rsa.PublicKey
	Logger    *slog.Logger
}

func Register(e *echo.Echo, d *Deps) error {
	e.HTTPErrorHandler = apperr.HTTPErrorHandler

	for _, m := range middleware.Common(d.Logger) {
		e.Use(m)
	}
	e.Use(middleware.Edge(d.PublicKey))

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", ready([]Upstream{d.Identity, d.Academic, d.Grading}, d.ReadyTimeout))

	identityProxy, err := newProxy(d.Identity)
	if err != nil {
		return err
	}
	academicProxy, err := newProxy(d.Academic)
	if err != nil {
		return err
	}
	gradingProxy, err := newProxy(d.Grading)
	if err != nil {
		return err
	}

	api := e.Group(apiPrefix)

	api.POST("/auth/login", identityProxy)
	api.POST("/auth/register", identityProxy)
	api.POST("/auth/refresh", identityProxy)
	api.POST("/auth/logout", identityProxy)

	api.Any("/users", identityProxy)
	api.Any("/users/*", identityProxy)
	api.Any("/courses", academicProxy)
	api.Any("/courses/*", academicProxy)
	api.Any("/assignments", gradingProxy)
	api.Any("/assignments/*", gradingProxy)

	return nil
}
