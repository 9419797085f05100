package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	redisstore "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/geo"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.StdoutHandler(cfg.AppEnv),
		pgLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// Redis is optional: geocode cache and shared rate-limit counters
	var (
		redisClient    *redis.Client
		geoCache       cache.Cache = cache.Noop{}
		limiterStorage fiber.Storage
	)
	if cfg.RedisEnabled() {
		redisClient, err = cache.Connect(cfg)
		if err != nil {
			slog.Error("redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		} else {
			geoCache = cache.NewRedisCache(redisClient, "denuncias:")
			limiterStorage = redisstore.New(redisstore.Config{
				Host:     cfg.RedisHost,
				Port:     cfg.RedisPort,
				Password: cfg.RedisPassword,
				Database: cfg.RedisDB + 1,
				Reset:    false,
			})
		}
	}

	// Evidence blob storage
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		slog.Error("storage init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}

	// Services
	locationService := services.NewLocationService(
		geo.NewNominatimClient(cfg.NominatimURL, cfg.GeoUserAgent, cfg.GeoLanguage, cfg.GeoTimeout),
		geo.NewOverpassClient(cfg.OverpassURL, cfg.GeoUserAgent, cfg.GeoTimeout),
		geoCache,
		services.LocationOptions{
			Bounds: geo.Bounds{
				North: cfg.BoundsNorth,
				South: cfg.BoundsSouth,
				East:  cfg.BoundsEast,
				West:  cfg.BoundsWest,
			},
			RadiusM:  cfg.StationRadiusM,
			Language: cfg.GeoLanguage,
			CacheTTL: cfg.GeoCacheTTL,
		},
	)
	authService := services.NewAuthService(db, cfg)
	reportService := services.NewReportService(db, locationService)
	evidenceService := services.NewEvidenceService(db, store)

	// Handlers
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Health:   handlers.NewHealthHandler(db, redisClient),
		Report:   handlers.NewReportHandler(reportService),
		Evidence: handlers.NewEvidenceHandler(evidenceService, cfg.MaxFileSizeBytes()),
		Location: handlers.NewLocationHandler(locationService),
		User:     handlers.NewUserHandler(authService),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app; multipart bodies carry one evidence file plus form overhead
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.MaxFileSizeBytes()) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	opts := routes.Options{LimiterStorage: limiterStorage}
	if cfg.StorageDriver == "" || cfg.StorageDriver == "local" {
		opts.UploadDir = cfg.UploadDir
	}
	routes.Setup(app, cfg, authService, h, opts)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.Envelope{Success: false, Error: message})
}
