package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/classroom/pkg/db"
	"github.com/Skotchmaster/classroom/pkg/events"
	"github.com/Skotchmaster/classroom/pkg/keys"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/services/identity/internal/config"
	"github.com/Skotchmaster/classroom/services/identity/internal/httpserver"
	"github.com/Skotchmaster/classroom/services/identity/internal/models"
	"github.com/Skotchmaster/classroom/services/identity/internal/ratelimit"
	"github.com/Skotchmaster/classroom/services/identity/internal/repo"
	"github.com/Skotchmaster/classroom/services/identity/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	pair := keys.MustLoadPair(cfg.Keys())

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var limiter ratelimit.LoginLimiter = ratelimit.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = ratelimit.New(rdb, ratelimit.Config{
			MaxAttempts: cfg.LoginMaxAttempts,
			Window:      cfg.LoginLockout,
		})
	} else {
		logger.Warn("login rate limiting disabled", "reason", "REDIS_ADDR not set")
	}

	publisher := events.New(cfg.KafkaBrokers)
	defer publisher.Close()

	r := repo.New(gdb)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Repo:       r,
				Keys:       pair,
				Limiter:    limiter,
				Events:     publisher,
				AccessTTL:  cfg.AccessTTL,
				RefreshTTL: cfg.RefreshTTL,
				UserTopic:  cfg.UserTopic,
			},
			CookieSecure: cfg.CookieSecure,
		},
		UsersHandler: &httpserver.UsersHTTP{
			Svc: &service.UserService{Repo: r, Events: publisher, UserTopic: cfg.UserTopic},
		},
		DB:     gdb,
		Logger: logger,
	})

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.ServerPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
