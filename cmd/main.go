/**
 * @description
 * This is the main entry point for the IdeaVault backend. It initializes and
 * wires together all the components of the application: configuration, the
 * database pool, repositories, the Stripe client, the event producer and
 * consumer, the business services, the cron scheduler, and the HTTP router.
 * Finally, it starts the HTTP server and waits for a shutdown signal.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/HGJ777/IdeaVault/internal/api"
	"github.com/HGJ777/IdeaVault/internal/app"
	"github.com/HGJ777/IdeaVault/internal/config"
	"github.com/HGJ777/IdeaVault/internal/store"
	"github.com/HGJ777/IdeaVault/pkg/rabbitmq"
	"github.com/HGJ777/IdeaVault/pkg/stripeclient"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env in local development; in production the platform injects env vars.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, reading configuration from environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish connection to the PostgreSQL database with connection pool configuration
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}

	// Configure connection pool for high-traffic scenarios
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// IMPORTANT: Disable prepared statements to work with PgBouncer transaction pooling
	// Use simple protocol to avoid statement cache errors (SQLSTATE 42P05)
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Database tables are managed via Supabase migrations.

	// Repositories
	ideaRepo := store.NewPostgresIdeaRepository(dbpool)
	messageRepo := store.NewPostgresMessageRepository(dbpool)
	notificationRepo := store.NewPostgresNotificationRepository(dbpool)
	subscriptionRepo := store.NewPostgresSubscriptionRepository(dbpool)

	// Stripe client
	stripe := stripeclient.NewClient(cfg.StripeAPIBaseURL, cfg.StripeSecretKey)

	// Event fanout. The broker is optional: without it billing still works,
	// only the in-app billing notifications are skipped.
	var producer *rabbitmq.EventProducer
	if cfg.RabbitMQURL != "" {
		producer, err = rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("failed to connect event producer to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		logger.Info("event producer connected to RabbitMQ")
	} else {
		logger.Warn("RABBITMQ_URL not set; billing notifications are disabled")
	}

	// Services
	ideaService := app.NewIdeaService(ideaRepo, stripe)
	var publisher app.EventPublisher
	if producer != nil {
		publisher = producer
	}
	billingService := app.NewBillingService(ideaRepo, subscriptionRepo, stripe, publisher, cfg.StripePriceID)
	messagingService := app.NewMessagingService(ideaRepo, messageRepo, notificationRepo)

	// Billing event consumer
	if cfg.RabbitMQURL != "" {
		consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("failed to connect consumer to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		billingEvents := app.NewBillingEventHandler(notificationRepo)
		go func() {
			logger.Info("starting billing events consumer")
			err := consumer.Consume(app.BillingEventsExchange, "billing_notifications", "billing.*", billingEvents.HandleBillingEvent)
			if err != nil {
				logger.Error("billing events consumer stopped", "error", err)
			}
		}()
	}

	// Cron jobs
	jobs := app.NewJobs(
		ideaRepo,
		notificationRepo,
		logger,
		time.Duration(cfg.PendingBillingMaxAgeHours)*time.Hour,
		time.Duration(cfg.NotificationRetentionDays)*24*time.Hour,
	)
	scheduler := app.NewScheduler(jobs, logger, cfg)
	scheduler.Start()
	defer scheduler.Stop()

	// Configure and start the HTTP server
	router := api.NewRouter(cfg, ideaService, billingService, messagingService)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for an OS signal
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
