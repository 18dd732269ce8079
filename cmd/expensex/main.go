package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expensex/internal/amqp"
	"expensex/internal/cli"
	apphttp "expensex/internal/http"
	"expensex/internal/services"
)

func main() {
	logger, cfg := cli.Bootstrap("server")

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	// The broker is optional: without it expenses are still saved and the
	// worker's periodic scan picks them up for export later.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without export messages", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	users := services.NewUserService(store)
	expenses := services.NewExpenseService(store, amqpClient)
	groups := services.NewGroupService(store)

	srv := apphttp.NewServer(":"+cfg.Port, users, expenses, groups, cfg.RequestsPerMinute)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
