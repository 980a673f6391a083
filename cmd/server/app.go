package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/LoweKTH/MarketingAgentFactory/internal/config"
	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/contentagent"
	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/logger"
	"github.com/LoweKTH/MarketingAgentFactory/internal/platform/postgres"
	"github.com/LoweKTH/MarketingAgentFactory/internal/service"
	"github.com/LoweKTH/MarketingAgentFactory/internal/task"
)

// application holds the initialized dependencies of the server process.
type application struct {
	config         *config.Config
	logger         *slog.Logger
	db             *sql.DB
	runner         *task.Runner
	engineClient   *contentagent.Client
	contentService service.ContentService
}

// initializeApp loads configuration, sets up logging, connects the database,
// runs migrations and wires the service layer.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"engine_url", cfg.Engine.URL,
		"worker_count", cfg.Worker.Count)

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	taskStore := postgres.NewPostgresTaskStore(db, log)

	engineClient, err := contentagent.NewClient(cfg.Engine, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client: %w", err)
	}

	runner := task.NewRunner(task.RunnerConfig{
		WorkerCount: cfg.Worker.Count,
		QueueSize:   cfg.Worker.QueueSize,
	}, log)

	contentService := service.NewContentService(taskStore, engineClient, runner, cfg.Engine, log)

	return &application{
		config:         cfg,
		logger:         log,
		db:             db,
		runner:         runner,
		engineClient:   engineClient,
		contentService: contentService,
	}, nil
}

// run starts the HTTP server and blocks until shutdown completes.
func (app *application) run() error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case sig := <-shutdownCh:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		app.cleanup()
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		app.cleanup()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.cleanup()
	app.logger.Info("server shutdown completed")
	return nil
}

// cleanup stops the worker pool and closes the database. The runner is
// stopped first so queued generations finish their terminal-state writes
// before the database goes away.
func (app *application) cleanup() {
	if app.runner != nil {
		app.runner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
