// Package platform wires the identity provider, profile store, dispatcher
// and content fetcher together once per process. Handlers reach it through
// the request context.
package platform

import (
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/auth"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/authstate"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/config"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/content"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/profile"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const localsKey = "platform"

type Platform struct {
	Config   *config.Config
	DB       *gorm.DB
	Bus      authstate.Bus
	Metrics  *metrics.Metrics
	Identity *identity.Local
	Profiles *profile.Synchronizer
	Auth     *auth.Dispatcher
	Content  *content.Fetcher
}

func New(cfg *config.Config, db *gorm.DB, bus authstate.Bus, m *metrics.Metrics) *Platform {
	var federation identity.Federation
	if cfg.FederationEnabled() {
		federation = identity.NewGoogleFederation(identity.GoogleConfig{
			ClientID:          cfg.GoogleClientID,
			ClientSecret:      cfg.GoogleClientSecret,
			RedirectURL:       cfg.GoogleRedirectURL,
			AuthorizedDomains: cfg.AuthorizedDomainList(),
		})
	}

	provider := identity.NewLocal(db, identity.LocalConfig{
		JWTSecret:     cfg.JWTSecret,
		AccessExpiry:  cfg.JWTAccessExpiry,
		RefreshExpiry: cfg.JWTRefreshExpiry,
		SessionExpiry: cfg.JWTSessionExpiry,
	}, bus, federation)

	profiles := profile.NewSynchronizer(profile.NewGormStore(db), m)

	fetcher := content.NewFetcher([]content.Provider{
		{Name: content.SourceGLM, URL: cfg.GLMAPIURL, APIKey: cfg.GLMAPIKey, Model: cfg.GLMModel},
		{Name: content.SourceDeepSeek, URL: cfg.DeepSeekAPIURL, APIKey: cfg.DeepSeekAPIKey, Model: cfg.DeepSeekModel},
	}, cfg.AITimeout, m)

	return &Platform{
		Config:   cfg,
		DB:       db,
		Bus:      bus,
		Metrics:  m,
		Identity: provider,
		Profiles: profiles,
		Auth:     auth.NewDispatcher(provider, profiles, m, validation.Options{StrictPassword: cfg.StrictPasswords()}),
		Content:  fetcher,
	}
}

// Inject makes p available to every later handler.
func Inject(p *Platform) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsKey, p)
		return c.Next()
	}
}

// From returns the injected platform. Reaching it before Inject ran is a
// wiring bug, so it panics rather than returning nil.
func From(c *fiber.Ctx) *Platform {
	p, ok := c.Locals(localsKey).(*Platform)
	if !ok || p == nil {
		panic("platform: accessed before construction")
	}
	return p
}
