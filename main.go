package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"campus-events/config"
	"campus-events/handlers"
	"campus-events/monitoring"
	"campus-events/security"
	"campus-events/services"
	"campus-events/store"
	"campus-events/utils"

	_ "campus-events/migrations"

	"github.com/labstack/echo/v5"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

func main() {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize services
	pbStore := store.New(app)
	realtime := services.NewPubNubPublisher(pn)
	monitor := monitoring.NewMonitor(cfg.MetricsInterval)
	rosterService := services.NewRosterService(pbStore, redisClient, cfg.CountCacheTTL)
	notifier := services.NewMailNotifier(app)
	registrationService := services.NewRegistrationService(
		pbStore,
		rosterService,
		notifier,
		realtime,
		monitor,
		cfg.RegistrationGracePeriod,
	)

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(app, pbStore, rosterService, cfg.RegistrationGracePeriod)
	registrationHandler := handlers.NewRegistrationHandler(registrationService)
	adminHandler := handlers.NewAdminHandler(app, pbStore, rosterService, realtime)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Create context for background tasks
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background tasks
	if cfg.EnableMetrics {
		go monitor.WatchCounts(ctx, pbStore.CountsByEvent)
		go startOpsServer(ctx, cfg.MetricsPort, redisClient)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	// Register routes
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Public event endpoints
		e.Router.GET("/api/campus/events", eventHandler.List)
		e.Router.GET("/api/campus/events/{eventId}", eventHandler.Get)

		// Registration endpoints
		e.Router.POST("/api/campus/events/{eventId}/register", registrationHandler.Register).
			BindFunc(rateLimiter.RegistrationLimit())
		e.Router.GET("/api/campus/events/{eventId}/registration-status", registrationHandler.Status)

		// Admin endpoints
		admin := e.Router.Group("/api/campus/admin")
		admin.BindFunc(handlers.RequireAdmin())
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.POST("/events", eventHandler.Create)
		admin.PATCH("/events/{eventId}", eventHandler.Update)
		admin.DELETE("/events/{eventId}", eventHandler.Delete)
		admin.GET("/events/{eventId}/participants", adminHandler.Participants)
		admin.GET("/events/{eventId}/participants/export", adminHandler.ExportCSV)
		admin.PATCH("/participants/{participantId}", adminHandler.UpdateParticipant)
		admin.DELETE("/participants/{participantId}", adminHandler.DeleteParticipant)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// startOpsServer runs a small side listener for Prometheus scrapes and
// liveness probes, separate from the public API port.
func startOpsServer(ctx context.Context, port string, redisClient *redis.Client) {
	e := echo.New()

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	server := &http.Server{
		Addr:    ":" + port,
		Handler: e,
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	log.Printf("Metrics listener on :%s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Metrics listener stopped: %v", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
