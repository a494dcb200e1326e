package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/config"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProtected checks the access token signature and expiry only. Routes that
// must notice a revoked session also resolve the token against the provider.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:    true,
				Message:  "Unauthorized: invalid or expired token",
				Redirect: "/",
			})
		},
	})
}

// SubjectFrom extracts the account id from the JWT claims in context.
func SubjectFrom(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("missing sub claim")
	}
	return sub, nil
}
