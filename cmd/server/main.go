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

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/authstate"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/config"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/database"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/logging"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/platform"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/routes"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const logRetention = 30 * 24 * time.Hour

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout),
		dbLogHandler,
	)))

	bgCtx, stopBackground := context.WithCancel(context.Background())
	logging.StartCleanup(bgCtx, db, logRetention)

	// Auth state bus: Redis when several instances share sessions
	var bus authstate.Bus = authstate.NewMemoryBus()
	if cfg.RedisAddr != "" {
		rb, err := authstate.NewRedisBus(authstate.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Error("redis unavailable, using in-process auth state", "addr", cfg.RedisAddr, "error", err)
		} else {
			bus = rb
			slog.Info("auth state bus connected", "addr", cfg.RedisAddr)
		}
	}

	p := platform.New(cfg, db, bus, metrics.New())
	if !cfg.FederationEnabled() {
		slog.Info("google sign-in disabled, GOOGLE_CLIENT_ID not set")
	}

	if cfg.SeedDemoAccount {
		if err := p.Identity.EnsureAccount(bgCtx, identity.AccountRequest{
			Email:       "admin@example.com",
			Password:    "Password123!",
			DisplayName: "Demo Admin",
		}); err != nil {
			slog.Error("demo account seed failed", "error", err)
		}
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

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
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

	// Routes
	routes.Setup(app, p)

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

	stopBackground()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := bus.Close(); err != nil {
		slog.Error("auth state bus close error", "error", err)
	}
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
