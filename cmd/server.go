package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/config"
	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/httpx"
	"github.com/Abraxas-365/leadgate/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	// 1. Logger
	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))
	logx.Info("🚀 Starting leadgate API server...")

	// 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		var e *errx.Error
		if errx.As(err, &e) {
			logx.Fatalf("Invalid configuration: %v", e.Details["problems"])
		}
		logx.Fatalf("Failed to load configuration: %v", err)
	}

	// 3. Dependency container
	container := NewContainer(cfg)
	defer container.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	container.StartBackgroundServices(ctx)

	// 4. Fiber app with routes
	app := newApp(container)
	printRouteSummary(cfg.Server.BasePath)

	// 5. Serve until signalled
	startServer(app, cfg.Server)
}

func newApp(c *Container) *fiber.App {
	cfg := c.Config.Server

	app := fiber.New(fiber.Config{
		AppName:               "leadgate",
		DisableStartupMessage: true,
		ErrorHandler:          httpx.ErrorHandler(cfg.Debug),
		BodyLimit:             cfg.BodyLimit,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: cfg.Debug,
	}))

	app.Use(requestid.New(requestid.Config{
		Header:    httpx.RequestIDHeader,
		Generator: uuid.NewString,
	}))

	app.Use(httpx.CORS(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods:  "POST, OPTIONS",
		ExposeHeaders: httpx.RequestIDHeader,
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Use(c.Metrics.Middleware())

	app.Get("/health", healthCheckHandler(c))
	app.Get("/metrics", adaptor.HTTPHandler(c.Metrics.Handler()))

	api := app.Group(cfg.BasePath)
	c.OTPHandlers.RegisterRoutes(api, c.Throttle.Middleware())
	c.LeadHandlers.RegisterRoutes(api)

	app.Use(httpx.NotFound)
	return app
}

// healthCheckHandler reports the state of each configured backing store.
func healthCheckHandler(c *Container) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "leadgate",
			"version": c.Config.Server.AppVersion,
		}

		pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
		defer cancel()

		if c.DB != nil {
			if err := c.DB.PingContext(pingCtx); err != nil {
				health["db"] = "unhealthy"
				health["db_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health["db"] = "healthy"
			}
		}

		if c.Redis != nil {
			if err := c.Redis.Ping(pingCtx).Err(); err != nil {
				health["redis"] = "unhealthy"
				health["redis_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health["redis"] = "healthy"
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return ctx.Status(status).JSON(health)
	}
}

func printRouteSummary(base string) {
	logx.Info("📋 Route Summary:")
	logx.Infof("   ├─ OTP: POST %s/send-otp, POST %s/verify-otp", base, base)
	logx.Infof("   ├─ Lead: POST %s/submit-form", base)
	logx.Info("   ├─ Health: GET /health")
	logx.Info("   └─ Metrics: GET /metrics")
}

// startServer listens on cfg.Port and blocks until SIGINT/SIGTERM.
func startServer(app *fiber.App, cfg config.ServerConfig) {
	addr := fmt.Sprintf(":%d", cfg.Port)

	go func() {
		logx.Info(strings.Repeat("=", 61))
		logx.Infof("🚀 Server listening on %s", addr)
		logx.Infof("💚 Health Check: http://localhost%s/health", addr)
		logx.Info(strings.Repeat("=", 61))

		if err := app.Listen(addr); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app, cfg.ShutdownTimeout)
}

func gracefulShutdown(app *fiber.App, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(timeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
