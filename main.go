package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"enrich-service/internal/common/logging"
	"enrich-service/internal/config"
	"enrich-service/internal/correlation"
	"enrich-service/internal/enrich"
	"enrich-service/internal/handlers"
	"enrich-service/internal/middleware"
	"enrich-service/internal/providers/apollo"
	"enrich-service/internal/providers/millionverifier"
	"enrich-service/internal/providers/prospeo"
	"enrich-service/internal/server"
	"enrich-service/internal/sheets"
	"enrich-service/internal/usage"
)

func main() {
	_ = godotenv.Load()
	logging.InitGlobalLogger()
	defer logging.MustSync()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize usage ledger
	ledger, err := usage.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize usage ledger: %v", err)
	}
	defer ledger.Close()

	// Correlation store plus its periodic payload sweep
	store := correlation.NewStore()
	sweeper := correlation.NewSweeper(store, cfg.SweepInterval, cfg.PayloadMaxAge)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start payload sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Optional result cache
	var cache *enrich.ResultCache
	if cfg.RedisAddress != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
		cache = enrich.NewResultCache(redisClient, cfg.CacheTTL)
		logging.Info("Result cache enabled", logging.String("redis_address", cfg.RedisAddress))
	}

	// Provider clients
	apolloClient := apollo.NewClient(apollo.Config{
		APIKey:            cfg.ApolloAPIKey,
		BaseURL:           cfg.ApolloBaseURL,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 5,
		Burst:             5,
	})

	coordCfg := enrich.CoordinatorConfig{
		CallbackURL: cfg.CallbackURL(),
		WaitTimeout: cfg.PhoneWaitTimeout,
		Cache:       cache,
	}
	if cfg.ProspeoAPIKey != "" {
		coordCfg.Finder = prospeo.NewClient(cfg.ProspeoAPIKey, "")
	}
	if cfg.MillionVerifierAPIKey != "" {
		coordCfg.Verifier = millionverifier.NewClient(cfg.MillionVerifierAPIKey, "")
	}

	coordinator := enrich.NewCoordinator(apolloClient, store, coordCfg)

	// Optional Google Sheets sink
	var sheetWriter handlers.SheetAppender
	if cfg.SheetsCredentialsFile != "" {
		writer, err := sheets.NewWriter(context.Background(), cfg.SheetsCredentialsFile)
		if err != nil {
			log.Fatalf("Failed to initialize sheets writer: %v", err)
		}
		sheetWriter = writer
	}

	// Initialize handlers
	h := handlers.New(coordinator, store, ledger, sheetWriter)

	// Set up routes
	router := mux.NewRouter()

	// Provider callback endpoint
	router.HandleFunc("/webhooks/apollo", h.HandleApolloCallback).Methods("POST")

	// API endpoints
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/enrich", h.HandleEnrich).Methods("POST")
	api.HandleFunc("/usage", h.HandleUsage).Methods("GET")

	// Health check
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Set up HTTP server
	srv := server.New(middleware.LoggingMiddleware(router), cfg.Port)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	logging.Info("Enrichment service started",
		logging.String("port", cfg.Port),
		logging.String("callback_url", cfg.CallbackURL()),
		logging.Duration("phone_wait_timeout", cfg.PhoneWaitTimeout),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logging.Info("Server exited")
}
