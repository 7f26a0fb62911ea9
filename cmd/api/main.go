package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/database"
	"stockroom/internal/engine"
	"stockroom/internal/events"
	"stockroom/internal/handler"
	"stockroom/internal/repository"
	"stockroom/internal/router"
	"stockroom/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting stockroom API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	batchRepo := repository.NewBatchRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	notificationRepo := repository.NewNotificationRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	locationRepo := repository.NewLocationRepository(pool, logger)

	// Event publisher
	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("kafka event publishing enabled")
	} else {
		publisher = events.NopPublisher{}
		logger.Info().Msg("event publishing disabled")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Services
	notificationService := service.NewNotificationService(notificationRepo, userRepo, logger)
	inventoryService := service.NewInventoryService(productRepo, batchRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, locationRepo, notificationService, publisher, logger)
	statusService := service.NewStatusService(orderRepo, notificationService, publisher, logger)

	// Status advancement engine
	statusEngine := engine.New(statusService, cfg.Engine.Interval, logger)
	statusEngine.Start(ctx)

	// HTTP handlers and router
	orderHandler := handler.NewOrderHandler(orderService, statusService, logger)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	mux := router.New(orderHandler, inventoryHandler, notificationHandler, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop the engine first so no pass starts mid-shutdown.
		cancel()
		statusEngine.Wait()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
