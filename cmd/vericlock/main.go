package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/vericlock-systems/vericlock/internal/auth"
	"github.com/vericlock-systems/vericlock/internal/biometric"
	"github.com/vericlock-systems/vericlock/internal/calendar"
	"github.com/vericlock-systems/vericlock/internal/config"
	"github.com/vericlock-systems/vericlock/internal/directory"
	"github.com/vericlock-systems/vericlock/internal/handlers"
	"github.com/vericlock-systems/vericlock/internal/logging"
	"github.com/vericlock-systems/vericlock/internal/middleware"
	"github.com/vericlock-systems/vericlock/internal/models"
	"github.com/vericlock-systems/vericlock/internal/notification"
	"github.com/vericlock-systems/vericlock/internal/ratelimit"
	"github.com/vericlock-systems/vericlock/internal/repository"
	"github.com/vericlock-systems/vericlock/internal/scheduler"
	"github.com/vericlock-systems/vericlock/internal/server"
	"github.com/vericlock-systems/vericlock/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)
	logger.Info("starting vericlock", "port", cfg.Server.Port, "database", cfg.Database.Type)

	location, err := time.LoadLocation(cfg.Facility.Timezone)
	if err != nil {
		log.Fatalf("Invalid facility timezone %q: %v", cfg.Facility.Timezone, err)
	}

	workStart, err := models.ParseDayClock(cfg.Facility.WorkStart)
	if err != nil {
		log.Fatalf("Invalid facility work_start: %v", err)
	}
	lateCutoff, err := models.ParseDayClock(cfg.Facility.LateCutoff)
	if err != nil {
		log.Fatalf("Invalid facility late_cutoff: %v", err)
	}
	closeTime, err := models.ParseDayClock(cfg.Facility.CloseTime)
	if err != nil {
		log.Fatalf("Invalid facility close_time: %v", err)
	}

	// Repository
	var repo repository.Repository
	switch cfg.Database.Type {
	case "postgres":
		connString := cfg.Database.Postgres.DSN()

		logger.Info("running database migrations")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		pg, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		repo = pg
	case "memory":
		repo = repository.NewInMemoryRepository()
	default:
		log.Fatalf("Unknown database type %q", cfg.Database.Type)
	}
	defer repo.Close()

	// Working-day calendar
	rule := calendar.Default()
	if cfg.Facility.CalendarFile != "" {
		rule, err = calendar.LoadFile(cfg.Facility.CalendarFile)
		if err != nil {
			log.Fatalf("Failed to load calendar file: %v", err)
		}
	}

	// Biometric extraction sidecar
	extractor := biometric.NewRemoteExtractor(cfg.Biometric.ExtractorURL, cfg.Biometric.EmbeddingDim, cfg.Biometric.Timeout)
	if err := extractor.EnsureLoaded(context.Background()); err != nil {
		// The model load is retried lazily on first use; a cold sidecar
		// must not keep the whole service down.
		logger.Warn("biometric model not ready at startup", "error", err)
	}

	// External credentials service
	dirClient := directory.New(cfg.Directory.URL, cfg.Directory.Token, cfg.Directory.Timeout)

	// Notification channels
	var notifier *notification.Notifier
	switch cfg.Notifier.Mode {
	case "nats":
		channel, err := notification.NewNATSChannel(cfg.Notifier.URL, "vericlock")
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer channel.Close()
		notifier = notification.NewNotifier(logger.Logger, cfg.Notifier.Timeout, channel)
	case "webhook":
		channel := notification.NewWebhookChannel(cfg.Notifier.URL, cfg.Notifier.Timeout)
		notifier = notification.NewNotifier(logger.Logger, cfg.Notifier.Timeout, channel)
	case "off", "":
	default:
		log.Fatalf("Unknown notifier mode %q", cfg.Notifier.Mode)
	}

	// Verification attempt limiter
	var limiter ratelimit.AttemptLimiter = ratelimit.NoOpLimiter{}
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.NewRedisAttemptLimiter(cfg.RateLimit.RedisURL, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
	}
	defer limiter.Close()

	// Attendance service
	svc := service.New(repo, extractor, dirClient, notifier, limiter, rule, logger.Logger, service.Config{
		MatchThreshold: cfg.Biometric.MatchThreshold,
		WorkStart:      workStart,
		LateCutoff:     lateCutoff,
		FacilityClose:  closeTime,
		CloseMode:      service.CloseMode(cfg.Reconcile.CloseMode),
		Location:       location,
	})

	// Daily reconciliation
	sched := scheduler.New(svc, logger.Logger, scheduler.Config{
		Hour:     cfg.Reconcile.Hour,
		Location: location,
	})
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	if err := sched.Start(schedCtx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// HTTP server
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	handler := handlers.NewHandler(svc, logger)
	router := server.NewRouter(handler, middleware.NewAuthMiddleware(tokens))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("vericlock listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("server stopped")
}
