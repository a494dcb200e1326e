package platform

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/authstate"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/config"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{
		JWTSecret:        "secret",
		JWTAccessExpiry:  time.Minute,
		JWTRefreshExpiry: time.Hour,
		JWTSessionExpiry: time.Hour,
	}
	p := New(cfg, testutil.NewDB(t), authstate.NewMemoryBus(), nil)

	assert.NotNil(t, p.Identity)
	assert.NotNil(t, p.Profiles)
	assert.NotNil(t, p.Auth)
	assert.NotNil(t, p.Content)
}

func TestFrom(t *testing.T) {
	p := &Platform{}

	t.Run("Injected", func(t *testing.T) {
		app := fiber.New()
		app.Use(Inject(p))
		app.Get("/", func(c *fiber.Ctx) error {
			assert.Same(t, p, From(c))
			return c.SendStatus(fiber.StatusNoContent)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("PanicsBeforeConstruction", func(t *testing.T) {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error {
			assert.PanicsWithValue(t, "platform: accessed before construction", func() { From(c) })
			return c.SendStatus(fiber.StatusNoContent)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})
}
