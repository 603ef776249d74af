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

	"github.com/Skotchmaster/classroom/pkg/db"
	"github.com/Skotchmaster/classroom/pkg/events"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/services/academic/internal/config"
	"github.com/Skotchmaster/classroom/services/academic/internal/httpserver"
	"github.com/Skotchmaster/classroom/services/academic/internal/models"
	"github.com/Skotchmaster/classroom/services/academic/internal/repo"
	"github.com/Skotchmaster/classroom/services/academic/internal/search"
	"github.com/Skotchmaster/classroom/services/academic/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Course{}, &models.Member{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	r := repo.New(gdb)

	var index search.Index = search.DBIndex{Repo: r}
	if cfg.ESURL != "" {
		es, err := search.NewClient(initCtx, search.ESConfig{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
		})
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		index = search.NewESIndex(es, cfg.ESIndex)
	} else {
		logger.Warn("course search falls back to the database", "reason", "ES_URL not set")
	}

	publisher := events.New(cfg.KafkaBrokers)
	defer publisher.Close()

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		CourseHandler: &httpserver.CourseHTTP{Svc: &service.CourseService{
			Repo:        r,
			Index:       index,
			Events:      publisher,
			CourseTopic: cfg.CourseTopic,
		}},
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
