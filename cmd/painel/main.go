package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"painel/internal/amqp"
	"painel/internal/backend"
	"painel/internal/cache"
	"painel/internal/cli"
	apphttp "painel/internal/http"
	"painel/internal/log"
	"painel/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	source, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Slog()).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	rules := cli.LoadRules(logger, cfg)
	reports := services.NewReportService(source.Reader, rules, cfg.SnapshotTTL, logger)

	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	cacheManager.Register(reports.Cache())

	// Imports run in another process; their notifications drop the snapshot.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, relying on snapshot TTL", log.FieldError, err)
			amqpClient = nil
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, reports, source.Counter, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := source.Close(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	sweep := cfg.SnapshotTTL
	if sweep <= 0 {
		sweep = time.Minute
	}
	cacheManager.StartCleanup(ctx, sweep)

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeImportCompleted(ctx, func(msg *amqp.ImportCompletedMessage) error {
				reports.Invalidate(ctx, "import "+msg.BatchID)
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Import notification consumer stopped", log.FieldError, err)
			}
		}()
		logger.Info("Listening for import notifications", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	if txs, err := reports.Snapshot(ctx); err != nil {
		logger.Warn("Initial ledger load failed, serving anyway", log.FieldError, err)
	} else {
		logger.Info("Ledger loaded", log.FieldRows, len(txs))
	}

	logger.Info("Starting painel server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
