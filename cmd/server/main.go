package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"farebid/internal/app"
	"farebid/internal/config"
	"farebid/internal/handler"
	internalRedis "farebid/internal/redis"
	"farebid/internal/relay"
	"farebid/internal/repository/postgres"
	"farebid/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Background workers run until shutdown.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Wire dependencies.
	server, hub, sweeper := wireServer(db, redisClient, nrApp, cfg)

	go hub.Run(workerCtx)
	go sweeper.Run(workerCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	stopWorkers()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// background workers.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *relay.Hub, *service.SweepService) {
	// Initialize Redis stores.
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)

	// Initialize the persistent store.
	store := postgres.NewStore(db)

	// Event relay.
	hub := relay.NewHub()

	clock := service.SystemClock{}

	// Initialize services.
	subscriptionService := service.NewSubscriptionService(store, hub, clock, service.SubscriptionConfig{
		DailyFee:    cfg.Subscription.DailyFee,
		GraceWindow: cfg.Subscription.GraceWindow,
	})
	availabilityService := service.NewAvailabilityService(store, subscriptionService, locationStore, hub, clock)
	estimator := service.NewFareEstimator(service.FareConfig{
		BaseFare:    cfg.Pricing.BaseFare,
		PerKmRate:   cfg.Pricing.PerKmRate,
		MinimumFare: cfg.Pricing.MinimumFare,
	})
	tripService := service.NewTripService(store, subscriptionService, estimator, locationStore, lockStore, hub, clock, service.TripConfig{
		SearchRadiusKm: cfg.Pricing.SearchRadiusKm,
	})
	bidService := service.NewBidService(store, subscriptionService, locationStore, lockStore, hub, clock, service.BidConfig{
		FloorRatio:   cfg.Bidding.FloorRatio,
		CeilingRatio: cfg.Bidding.CeilingRatio,
	})
	sweepService := service.NewSweepService(store, subscriptionService, availabilityService, lockStore, hub, clock, service.SweepConfig{
		Interval:         cfg.Sweep.Interval,
		ReminderInterval: cfg.Sweep.ReminderInterval,
		ReminderLead:     cfg.Sweep.ReminderLead,
		ReminderMarkTTL:  cfg.Sweep.ReminderMarkTTL,
	})

	// Initialize handlers.
	tripHandler := handler.NewTripHandler(tripService)
	bidHandler := handler.NewBidHandler(bidService)
	driverHandler := handler.NewDriverHandler(availabilityService, store.Drivers(), store.Vehicles())
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	userHandler := handler.NewUserHandler(store.Users())

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		TripHandler:         tripHandler,
		BidHandler:          bidHandler,
		DriverHandler:       driverHandler,
		SubscriptionHandler: subscriptionHandler,
		UserHandler:         userHandler,
		Hub:                 hub,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, hub, sweepService
}
