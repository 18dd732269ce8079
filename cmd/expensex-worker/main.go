package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"expensex/internal/amqp"
	"expensex/internal/backend"
	"expensex/internal/cli"
	"expensex/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap("worker")
	logger.Info("Starting export worker")

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	writer, err := backend.NewExpenseWriter(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize expense writer", "error", err, "backend", cfg.SheetsBackend)
		os.Exit(1)
	}
	logger.Info("Expense writer initialized", "backend", cfg.SheetsBackend)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(store, writer, cfg.SyncBatchSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch anything written while the worker was down before consuming.
	if err := exportWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeExpenseSync(gctx, func(msg *amqp.ExpenseSyncMessage) error {
			return exportWorker.HandleSyncMessage(gctx, msg)
		})
	})

	// Periodic scan for expenses whose messages were lost or nacked.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := exportWorker.ProcessPendingExpenses(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
