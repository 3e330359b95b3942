package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expertlane/matchd/api"
	dbfs "github.com/expertlane/matchd/db"
	"github.com/expertlane/matchd/internal/config"
	"github.com/expertlane/matchd/internal/db"
	"github.com/expertlane/matchd/internal/dispatch"
	"github.com/expertlane/matchd/internal/jobs"
	"github.com/expertlane/matchd/internal/repository/sqlite"
	"github.com/expertlane/matchd/pkg/mailer"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)
	mailer.SetLogger(logger)

	logger.Info("starting matchd server", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	// Open database connection and apply migrations
	conn, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(conn, logger)

	// Mailer client for the notification dispatcher
	mailClient, err := mailer.NewDefaultClient(cfg.MailerConfig)
	if err != nil {
		log.Fatalf("Failed to create mailer client: %v", err)
	}

	dispatcher := dispatch.NewDispatcher(repo, repo, repo, repo, mailClient, logger)

	// Background workers deliver lifecycle events from the jobs table
	handlers := map[string]jobs.Handler{
		dispatch.JobTypeNotify: dispatcher.Handler(),
	}
	pool := jobs.NewWorkerPool(repo, handlers, logger, cfg.WorkerCount)
	workerCtx, stopWorkers := context.WithCancel(ctx)
	pool.Start(workerCtx)

	emitter := dispatch.NewQueueEmitter(pool)
	handler := api.SetupRoutes(cfg, version, buildTime, conn, emitter)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	pool.Stop()

	if err := mailClient.Close(); err != nil {
		logger.Error("close mailer", slog.Any("err", err))
	}
	if err := conn.Close(); err != nil {
		logger.Error("close db", slog.Any("err", err))
	}

	logger.Info("server exited")
}
