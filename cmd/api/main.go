package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicamia/agenda-service/internal/adapters/cache"
	"github.com/clinicamia/agenda-service/internal/adapters/database"
	"github.com/clinicamia/agenda-service/internal/adapters/events"
	"github.com/clinicamia/agenda-service/internal/api/handlers"
	"github.com/clinicamia/agenda-service/internal/api/middleware"
	"github.com/clinicamia/agenda-service/internal/api/routes"
	"github.com/clinicamia/agenda-service/internal/application/services"
	"github.com/clinicamia/agenda-service/internal/domain/providers"
	"github.com/clinicamia/agenda-service/internal/infrastructure/clients/postgres"
	"github.com/clinicamia/agenda-service/internal/infrastructure/clients/redis"
	"github.com/clinicamia/agenda-service/internal/infrastructure/notifications"
	"github.com/clinicamia/agenda-service/internal/infrastructure/observability"
	"github.com/clinicamia/agenda-service/pkg/config"
	"github.com/clinicamia/agenda-service/pkg/secrets"
)

func main() {
	// Pull secrets from Vault into the environment before reading config
	vaultCfg := secrets.LoadVaultConfigFromEnv("")
	if vaultCfg.Enabled {
		vaultCtx, vaultCancel := context.WithTimeout(context.Background(), vaultCfg.Timeout)
		result, err := secrets.ApplyVaultSecrets(vaultCtx, vaultCfg)
		vaultCancel()
		if err != nil {
			log.Printf("Warning: Failed to load Vault secrets: %v", err)
		} else {
			log.Printf("Loaded %d secrets from Vault path %s", result.Loaded, result.Path)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("ENVIRONMENT"))

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	flags := services.NewFeatureFlags()

	// Initialize event bus for real-time updates
	var eventBus providers.EventBus
	if redisClient != nil && flags.PushEventsEnabled() {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled")
	}

	// Initialize adapters
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	followUpAdapter := database.NewFollowUpAdapter(pgClient)
	notificationAdapter := database.NewNotificationAdapter(pgClient)

	clinicLocation, err := time.LoadLocation(cfg.Agenda.Timezone)
	if err != nil {
		log.Printf("Warning: invalid timezone %q, falling back to UTC", cfg.Agenda.Timezone)
		clinicLocation = time.UTC
	}

	// Initialize notification delivery
	var notificationService *services.NotificationService
	if cfg.WhatsApp.Enabled && flags.NoShowNotificationsEnabled() {
		sender, err := notifications.NewWhatsAppCloudSender(&cfg.WhatsApp)
		if err != nil {
			log.Printf("Warning: Failed to initialize WhatsApp sender: %v", err)
		} else {
			notificationService = services.NewNotificationService(sender, notificationAdapter)
			log.Println("WhatsApp notifications enabled")
		}
	}

	// Initialize services
	queueService := services.NewDailyQueueService(
		appointmentAdapter,
		cacheProvider,
		clinicLocation,
		cfg.Agenda.QueueCacheTTL,
		cfg.Agenda.MinDurationMinutes,
		cfg.Agenda.MaxDurationMinutes,
	)
	encounterService := services.NewEncounterService(
		appointmentAdapter,
		queueService,
		eventBus,
		notificationService,
	)
	followUpService := services.NewFollowUpService(
		followUpAdapter,
		appointmentAdapter,
		cfg.Agenda.MaxFollowUpOffset,
		notificationService,
	)

	// Dispatch follow-up reminders in the background while the server runs
	if notificationService != nil {
		go followUpService.RunReminderLoop(ctx, cfg.Agenda.ReminderInterval)
		log.Printf("Follow-up reminder loop started (every %s)", cfg.Agenda.ReminderInterval)
	}

	// Initialize handlers
	encounterHandler := handlers.NewEncounterHandler(encounterService)
	queueHandler := handlers.NewQueueHandler(queueService)
	followUpHandler := handlers.NewFollowUpHandler(followUpService)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		encounterHandler,
		queueHandler,
		followUpHandler,
		sseHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// SSE connections stay open, so only reads are bounded
		IdleTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
