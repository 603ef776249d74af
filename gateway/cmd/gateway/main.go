package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/gateway/internal/config"
	"github.com/Skotchmaster/classroom/gateway/internal/httpserver"
	"github.com/Skotchmaster/classroom/pkg/keys"
	"github.com/Skotchmaster/classroom/pkg/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", "gateway")

	pub := keys.MustLoadPublic(cfg.Keys)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	if err := httpserver.Register(e, &httpserver.Deps{
		Identity:     upstream("identity", cfg.Identity),
		Academic:     upstream("academic", cfg.Academic),
		Grading:      upstream("grading", cfg.Grading),
		ReadyTimeout: cfg.ReadyTimeout,
		PublicKey:    pub,
		Logger:       logger,
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}

func upstream(name string, u config.Upstream) httpserver.Upstream {
	return httpserver.Upstream{Name: name, URL: u.URL, Timeout: u.Timeout}
}
