package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
	"github.com/itaymdigi/coldtherapylanding/internal/handler/middleware"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
)

type Handlers struct {
	Auth         *AuthHandler
	Password     *PasswordHandler
	User         *UserHandler
	Practice     *PracticeHandler
	Booking      *BookingHandler
	Subscription *SubscriptionHandler
	Payment      *PaymentHandler
	Catalog      *CatalogHandler
	Health       *HealthHandler
}

func SetupRoutes(app *fiber.App, cfg *config.Config, h Handlers, auth middleware.Authenticator, m *metrics.Metrics) {
	requireAuth := middleware.RequireAuth(auth)
	requireAdmin := middleware.RequireAdmin()

	// Health checks (public)
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	// API v1
	api := app.Group("/api/v1")

	// Auth routes (public, rate limited per IP)
	authGroup := api.Group("/auth", middleware.RateLimitMiddleware(cfg.Auth.RateLimit, cfg.Auth.RateWindow))
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/logout", h.Auth.Logout)
	authGroup.Post("/password/forgot", h.Password.Forgot)
	authGroup.Post("/password/reset", h.Password.Reset)

	api.Get("/users/me", requireAuth, h.User.GetMe)

	// Practice routes validate the token themselves; stats answer null
	// instead of 401 for anonymous visitors.
	practice := api.Group("/practice")
	practice.Get("/stats", h.Practice.GetStats)
	practice.Get("/sessions", h.Practice.ListSessions)
	practice.Post("/sessions", h.Practice.AddSession)
	practice.Delete("/sessions/:id", h.Practice.DeleteSession)

	// Public catalogue and booking form
	api.Get("/packages", h.Catalog.ListPackages)
	api.Get("/media", h.Catalog.ListMedia)
	api.Post("/bookings", middleware.OptionalAuth(auth), h.Booking.Create)
	api.Get("/bookings/action", h.Booking.Action)

	// Member routes
	subscriptions := api.Group("/subscriptions", requireAuth)
	subscriptions.Get("/", h.Subscription.ListMine)
	subscriptions.Post("/", h.Subscription.Create)
	subscriptions.Delete("/:id", h.Subscription.Cancel)

	api.Post("/payments/webhook", h.Payment.Webhook)
	api.Post("/payments", requireAuth, h.Payment.Create)

	// Admin routes (require admin role)
	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.Get("/bookings", h.Booking.List)
	admin.Patch("/bookings/:id/status", h.Booking.UpdateStatus)
	admin.Get("/packages", h.Catalog.ListAllPackages)
	admin.Put("/packages", h.Catalog.UpsertPackage)
	admin.Get("/media", h.Catalog.ListAllMedia)
	admin.Post("/media", h.Catalog.CreateUpload)
	admin.Post("/media/:id/publish", h.Catalog.PublishMedia)
	admin.Delete("/media/:id", h.Catalog.DeleteMedia)
}
