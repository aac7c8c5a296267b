package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lectorncf/lector-ncf/internal/async"
	"github.com/lectorncf/lector-ncf/internal/common"
	"github.com/lectorncf/lector-ncf/internal/export"
	"github.com/lectorncf/lector-ncf/internal/messaging"
	"github.com/lectorncf/lector-ncf/internal/ocr"
	"github.com/lectorncf/lector-ncf/internal/parser"
	"github.com/lectorncf/lector-ncf/internal/pipeline"
	"github.com/lectorncf/lector-ncf/internal/repository"
	"github.com/lectorncf/lector-ncf/internal/server"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) Probe(ctx context.Context) error { return f(ctx) }

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cfg.Logging)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: Postgres when a DSN is configured, the local SQLite store
	// otherwise.
	var repo repository.InvoiceRepository
	var probe probeFunc
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("opening database", "error", err)
			os.Exit(1)
		}
		defer repository.Close(pool, logger)

		if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
			logger.Error("database health check failed", "error", err)
			os.Exit(1)
		}
		repo, err = repository.NewPostgresInvoices(ctx, pool, logger)
		if err != nil {
			logger.Error("preparing invoice store", "error", err)
			os.Exit(1)
		}
		probe = func(ctx context.Context) error { return pool.Ping(ctx) }
	} else {
		var db *sql.DB
		var err error
		repo, db, err = repository.OpenSQLite(ctx, cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Error("opening sqlite store", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		probe = func(ctx context.Context) error { return db.PingContext(ctx) }
	}

	extractor, err := ocr.NewVisionExtractor(ctx, ocr.Config{
		CredentialsFile: cfg.OCR.CredentialsFile,
		CredentialsJSON: cfg.OCR.CredentialsJSON,
		MaxImageSizeMB:  cfg.OCR.MaxImageSizeMB,
	}, logger)
	if err != nil {
		logger.Error("creating ocr client", "error", err)
		os.Exit(1)
	}
	defer func() { _ = extractor.Close() }()

	notifier := messaging.NewNotifier(cfg.Messaging, logger)
	p := parser.New(parser.DefaultConfig(), logger)
	processor := pipeline.NewProcessor(notifier, extractor, p, repo, notifier, logger)

	queue := async.NewQueue(processor, logger,
		async.WithProcessTimeout(cfg.OCR.Timeout+time.Minute),
	)

	exportSvc := export.NewService(repo, cfg.Export, logger)

	router := server.NewRouter(logger, server.RouterDependencies{
		Queue:  queue,
		Sender: notifier,
		Export: exportSvc,
		Health: probe,
	})
	srv := server.New(logger, cfg.Server, router)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
