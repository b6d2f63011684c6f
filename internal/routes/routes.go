package routes

import (
	"time"

	"github.com/covaid/covaid-backend/internal/apps"
	"github.com/covaid/covaid-backend/internal/config"
	"github.com/covaid/covaid-backend/internal/events"
	"github.com/covaid/covaid-backend/internal/handlers"
	"github.com/covaid/covaid-backend/internal/metrics"
	"github.com/covaid/covaid-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Deps carries everything the router mounts.
type Deps struct {
	AuthHandler   *handlers.AuthHandler
	HealthHandler *handlers.HealthHandler
	Roles         middleware.RoleChecker
	Plugins       []apps.Plugin
	Publisher     events.Publisher

	// LimiterStorage shares rate limit counters across instances; nil keeps them in memory.
	LimiterStorage fiber.Storage
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, deps Deps) {
	// Health and metrics stay outside the rate limiter
	app.Get("/health", deps.HealthHandler.Check)
	app.Get("/metrics", metrics.Handler())

	// General rate limiter: 120 req/min per IP
	app.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           deps.LimiterStorage,
	}))

	// Auth (public), stricter limit: 10 req/min per IP
	user := app.Group("/user")
	user.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "auth:" + c.IP() },
		Storage:           deps.LimiterStorage,
	}))
	user.Post("/register", deps.AuthHandler.Register)
	user.Post("/login", deps.AuthHandler.Login)
	user.Post("/forgotPassword", deps.AuthHandler.ForgotPassword)

	app.Get("/profile/:mobileNumber", middleware.JWTProtected(cfg), deps.AuthHandler.Profile)

	admin := app.Group("/admin", middleware.JWTUnlessAdminToken(cfg), middleware.AdminRequired(cfg, deps.Roles))
	admin.Put("/users/:mobile/disable", deps.AuthHandler.Disable)
	admin.Put("/users/:mobile/enable", deps.AuthHandler.Enable)

	// Supply subsystems, each under /<id> behind the bearer check
	for _, p := range deps.Plugins {
		group := app.Group("/"+p.ID(), middleware.JWTProtected(cfg))
		p.RegisterRoutes(group, db, cfg, deps.Publisher)
	}
}
