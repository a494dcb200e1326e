package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/platform"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(app *fiber.App, p *platform.Platform) {
	app.Use(platform.Inject(p))

	if p.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(p.Metrics.Handler()))
	}

	// Legal pages
	app.Get("/legal/privacy", handlers.PrivacyPolicy)
	app.Get("/legal/terms", handlers.TermsOfService)

	api := app.Group("/api")
	api.Use(middleware.RequestContext(p.Config.RequestTimeout))

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next: func(c *fiber.Ctx) bool {
			// Long-lived streams would otherwise eat the budget on reconnect.
			return c.Path() == "/api/session/stream"
		},
	}))

	api.Get("/health", handlers.Health)

	// Called per keystroke by the strength meter, so it stays off the auth limiter.
	api.Post("/auth/password-strength", handlers.PasswordStrength)

	// Auth, public. Stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", handlers.Login)
	auth.Post("/signup", handlers.Signup)
	auth.Get("/federated/start", handlers.FederatedStart)
	auth.Get("/federated/callback", handlers.FederatedCallback)
	auth.Post("/refresh", handlers.Refresh)
	// Logout checks the signature only, so an expired token can still end its session.
	auth.Post("/logout", handlers.Logout)

	// Session state, token optional
	api.Get("/session", handlers.Session)
	api.Get("/session/stream", handlers.SessionStream)

	api.Get("/content/initial", handlers.InitialContent)

	// Signed-in area
	api.Get("/profile", middleware.JWTProtected(p.Config), handlers.Profile)
	api.Get("/dashboard", session.RequireUser(p.Identity), handlers.Dashboard)
}
