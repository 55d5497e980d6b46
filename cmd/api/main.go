package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gemkart/internal/broker"
	"gemkart/internal/cache"
	"gemkart/internal/config"
	"gemkart/internal/database"
	"gemkart/internal/handler"
	"gemkart/internal/repository"
	"gemkart/internal/router"
	"gemkart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting gemkart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize the order event publisher
	publisher := broker.NewNopPublisher()
	if cfg.Kafka.Enabled {
		publisher = broker.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publisher enabled")
	} else {
		logger.Info().Msg("order event stream disabled")
	}
	defer publisher.Close()

	// Initialize the tracking cache
	tracking := cache.NewNopTrackingCache()
	if cfg.Redis.Enabled {
		ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
		redisCache, err := cache.NewRedisTrackingCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to redis, tracking cache disabled")
		} else {
			tracking = redisCache
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis tracking cache enabled")
		}
	}
	defer tracking.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize services
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	couponService := service.NewCouponService(couponRepo, cartRepo, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, couponRepo, addressRepo, publisher, tracking, logger)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(cartService, couponService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Initialize router
	mux := router.New(cartHandler, orderHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
