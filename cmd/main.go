package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abpira/accounts/internal/command"
	"github.com/abpira/accounts/internal/config"
	"github.com/abpira/accounts/internal/handler"
	"github.com/abpira/accounts/internal/monitoring"
	"github.com/abpira/accounts/internal/query"
	"github.com/abpira/accounts/internal/repository"
	"github.com/abpira/accounts/shared/events"
	"github.com/abpira/accounts/shared/middleware"
	redisClient "github.com/abpira/accounts/shared/redis"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
)

const eventStreamMaxLen = 10000

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	reporter := monitoring.New(cfg.SentryDSN, cfg.SentryEnvironment)
	defer reporter.Close()

	// Database connection (write store)
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	// Redis connection (read model + event streaming)
	redis, err := redisClient.NewClient(redisClient.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client, eventStreamMaxLen)
	store := repository.NewPostgresStore(db)
	views := repository.NewCustomerViewRepository(redis.Client, cfg.CacheTTL)

	commandSvc := command.NewAccountCommandService(store, views, publisher)
	querySvc := query.NewAccountQueryService(store, views)

	accountHandler := handler.NewAccountHandler(commandSvc, querySvc, reporter)
	healthHandler := handler.NewHealthHandler(store, redis)

	router := gin.New()
	router.Use(
		middleware.LoggingMiddleware(),
		middleware.Recovery(reporter.CapturePanic),
		middleware.AuditorMiddleware(cfg.Auditor),
	)
	router.NoRoute(middleware.NoRoute())
	healthHandler.RegisterRoutes(router)
	accountHandler.RegisterRoutes(router)

	go func() {
		hostname, _ := os.Hostname()
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "accounts-read-model",
			Consumer: "accounts-" + hostname,
			Stream:   events.AccountEventsStream,
			StartID:  "$",
			Handler:  querySvc.HandleAccountEvent,
			OnError:  reporter.CaptureException,
		})
		if err := subscriber.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Subscriber stopped: %v", err)
		}
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Accounts service starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
