package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expensio/expense-docai/internal/assets"
	"github.com/expensio/expense-docai/internal/async"
	"github.com/expensio/expense-docai/internal/common"
	"github.com/expensio/expense-docai/internal/docai"
	"github.com/expensio/expense-docai/internal/export"
	"github.com/expensio/expense-docai/internal/repository"
	"github.com/expensio/expense-docai/internal/server"
	"github.com/expensio/expense-docai/internal/workflow"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database: sqlite DSNs get the local driver, anything else goes through pgx.
	db, pool, dialect, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, pool, logger)

	if pool != nil {
		if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
			logger.Error("database health check failed", "error", err)
			os.Exit(1)
		}
	}
	if err := repository.Migrate(ctx, db); err != nil {
		logger.Error("migrate schema", "error", err)
		os.Exit(1)
	}

	expenses := repository.NewExpenseRepository(db, dialect, logger)
	store := assets.NewStore(cfg.Assets.Dir, logger)

	client := docai.NewClient(docai.Config{
		Endpoint:    cfg.DocAI.Endpoint,
		ProcessorID: cfg.DocAI.ProcessorID,
		Timeout:     cfg.DocAI.Timeout,
	}, docai.StaticTokenSource(cfg.DocAI.AccessToken), logger)

	proc := workflow.NewProcessor(logger, expenses, store, client)
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	)

	exporter := export.NewService(expenses, logger)
	srv := server.New(expenses, store, queue, exporter, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}

// openDatabase picks the backend from the DSN: "sqlite:" prefixed (or plain
// file path) DSNs open the embedded driver, postgres URLs go through pgx.
func openDatabase(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*sql.DB, *pgxpool.Pool, repository.Dialect, error) {
	dsn := cfg.Database.DSN
	if strings.HasPrefix(dsn, "sqlite:") || !strings.Contains(dsn, "://") {
		path := strings.TrimPrefix(dsn, "sqlite:")
		db, err := repository.OpenSQLite(path, logger)
		return db, nil, repository.SQLite, err
	}
	db, pool, err := repository.Open(ctx, cfg.Database, logger)
	return db, pool, repository.Postgres, err
}
