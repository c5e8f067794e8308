package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetflow/internal/amqp"
	"budgetflow/internal/backend"
	"budgetflow/internal/config"
	apphttp "budgetflow/internal/http"
	"budgetflow/internal/log"
	"budgetflow/internal/reconcile"
	"budgetflow/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize data backend",
			log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("backend cleanup failed", log.FieldError, err)
		}
	}()

	// Change events feed the export worker; without a broker the API
	// still works, the report artifacts just refresh on the fallback
	// interval instead.
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without change events",
				log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, report artifacts refresh on fallback interval only")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler, err := reconcile.Start(ctx, res.Store, logger)
	if err != nil {
		logger.Error("failed to start reconciler", log.FieldError, err)
		os.Exit(1)
	}
	defer reconciler.Close()

	srv := apphttp.NewServer(":"+cfg.Port,
		services.NewCategoryService(res.Store, publisher, logger),
		services.NewFunderService(res.Store, publisher, logger),
		services.NewExpenseService(res.Store, publisher, logger),
		res.Store,
		reconciler,
		logger,
	)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting budgetflow server",
		"port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
