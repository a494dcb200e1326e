package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/timeout"
)

// RequestContext gives each request a cancellable UserContext, bounded by
// timeout when it is positive, and cancels it once the handler chain returns.
// A handler that fails with context.DeadlineExceeded answers 408.
//
// The parent is the existing UserContext, not the fasthttp RequestCtx: the
// latter reports Done whenever its server is not in Serve (app.Test, after
// Shutdown), and it never signals a client disconnect.
func RequestContext(d time.Duration) fiber.Handler {
	next := func(c *fiber.Ctx) error { return c.Next() }
	if d > 0 {
		return timeout.NewWithContext(next, d)
	}
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithCancel(c.UserContext())
		defer cancel()
		c.SetUserContext(ctx)
		return next(c)
	}
}
