package handlers

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/content"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/platform"
	"github.com/gofiber/fiber/v2"
)

// InitialContent serves the personalized snippet for the configured
// interests and location. A request that runs out of time still gets the
// fallback snippet; a cancelled one is answered without a snippet.
func InitialContent(c *fiber.Ctx) error {
	p := platform.From(c)
	ctx := c.UserContext()

	res := p.Content.Fetch(ctx, content.Request{
		Interests: p.Config.ContentInterests,
		Location:  p.Config.ContentLocation,
	})
	if errors.Is(ctx.Err(), context.Canceled) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "request cancelled")
	}
	return c.JSON(dto.ContentResponse{ContentSnippet: res.Snippet, Fallback: res.Fallback})
}
