package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"canteen-rush/internal/catalog"
	"canteen-rush/internal/config"
	"canteen-rush/internal/database"
	"canteen-rush/internal/logger"
	"canteen-rush/internal/messaging"
	"canteen-rush/internal/prediction"
	"canteen-rush/internal/queue"
	"canteen-rush/internal/services/notification"
	"canteen-rush/internal/services/order"
	"canteen-rush/internal/token"
)

func main() {
	var (
		mode = flag.String("mode", "order-service", "Service mode (order-service, notification-subscriber)")
		port = flag.Int("port", 0, "HTTP port (overrides HTTP_PORT)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()
	log.Info("service_started", requestID, fmt.Sprintf("Starting %s", *mode))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("graceful_shutdown", requestID, "Received shutdown signal")
		cancel()
	}()

	switch *mode {
	case "order-service":
		err = runOrderService(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log)
	default:
		log.Error("validation_failed", requestID, fmt.Sprintf("Unknown mode: %s", *mode), nil)
		os.Exit(1)
	}
	if err != nil {
		log.Error("service_failed", requestID, fmt.Sprintf("%s failed", *mode), err)
		os.Exit(1)
	}

	log.Info("service_stopped", requestID, "Service stopped gracefully")
}

// runOrderService runs the HTTP order service
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	log.Info("db_connected", requestID, "Connected to PostgreSQL database")

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()
	log.Info("rabbitmq_connected", requestID, "Connected to RabbitMQ")

	store := order.NewPostgresStore(db)
	menu := catalog.NewPostgresCatalog(db)
	allocator := token.NewRandomAllocator(rand.NewSource(time.Now().UnixNano()))
	ranker := queue.NewScanRanker(store)
	estimator := prediction.NewBaselineEstimator()
	publisher := messaging.NewPublisher(conn, log)

	service := order.NewService(store, menu, allocator, ranker, estimator, publisher, log, cfg.Order.StrictCart)
	handler := order.NewHandler(service, menu, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.SetupRoutes(),
	}

	go func() {
		log.Info("service_started", requestID, fmt.Sprintf("Order Service started on port %d", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", requestID, "HTTP server failed", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// runNotificationSubscriber consumes status updates and logs notifications
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	sub := notification.NewSubscriber(conn, log)
	return sub.Run(ctx)
}
