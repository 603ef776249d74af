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
	"github.com/Skotchmaster/classroom/services/grading/internal/config"
	"github.com/Skotchmaster/classroom/services/grading/internal/courses"
	"github.com/Skotchmaster/classroom/services/grading/internal/httpserver"
	"github.com/Skotchmaster/classroom/services/grading/internal/models"
	"github.com/Skotchmaster/classroom/services/grading/internal/repo"
	"github.com/Skotchmaster/classroom/services/grading/internal/service"
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
	if err := gdb.AutoMigrate(&models.Assignment{}, &models.Submission{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	publisher := events.New(cfg.KafkaBrokers)
	defer publisher.Close()

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	httpserver.Register(e, &httpserver.Deps{
		AssignmentHandler: &httpserver.AssignmentHTTP{Svc: &service.AssignmentService{
			Repo:            repo.New(gdb),
			Courses:         courses.NewHTTPDirectory(cfg.AcademicURL, cfg.AcademicTimeout),
			Events:          publisher,
			AssignmentTopic: cfg.AssignmentTopic,
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
