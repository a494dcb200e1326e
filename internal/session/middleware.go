package session

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "session_user"

// Resolver maps an access token to its identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*identity.Identity, error)
}

// TokenFrom reads the bearer token, or the token query parameter for clients
// like EventSource that cannot set headers.
func TokenFrom(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	return c.Query("token")
}

// RequireUser rejects requests without a live session and points the client
// back to the sign-in page.
func RequireUser(r Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFrom(c)
		if token == "" {
			return unauthenticated(c)
		}
		user, err := r.Resolve(c.UserContext(), token)
		if err != nil || user == nil {
			return unauthenticated(c)
		}
		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

func UserFrom(c *fiber.Ctx) *identity.Identity {
	user, _ := c.Locals(userLocalsKey).(*identity.Identity)
	return user
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:    true,
		Message:  "Please sign in to continue.",
		Redirect: "/",
	})
}
