package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
	"github.com/itaymdigi/coldtherapylanding/internal/handler/middleware"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
)

// bodyLimit covers JSON forms; media bytes go straight to object storage.
const bodyLimit = 1 << 20

// NewApp builds the Fiber app with the global middleware chain. Routes are
// added by SetupRoutes.
func NewApp(cfg *config.Config, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Cold Therapy Studio API",
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		BodyLimit:             bodyLimit,
	})

	app.Use(middleware.RecoveryMiddleware())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.MetricsMiddleware(m))
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))

	return app
}
