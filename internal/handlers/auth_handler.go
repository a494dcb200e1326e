package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/platform"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/session"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/validation"
	"github.com/gofiber/fiber/v2"
)

func Login(c *fiber.Ctx) error {
	p := platform.From(c)
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	out := p.Auth.Login(c.UserContext(), middleware.ClientKey(c), req)
	return writeOutcome(c, out, fiber.StatusOK)
}

func Signup(c *fiber.Ctx) error {
	p := platform.From(c)
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	out := p.Auth.Signup(c.UserContext(), middleware.ClientKey(c), req)
	return writeOutcome(c, out, fiber.StatusCreated)
}

func PasswordStrength(c *fiber.Ctx) error {
	var req dto.PasswordStrengthRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	s := validation.PasswordStrength(req.Password)
	return c.JSON(dto.PasswordStrengthResponse{Score: s.Score, Label: s.Label})
}

// FederatedStart returns the consent URL the client opens in a popup.
func FederatedStart(c *fiber.Ctx) error {
	p := platform.From(c)
	origin := c.Query("origin")
	if origin == "" {
		origin = c.Get(fiber.HeaderOrigin)
	}

	out := p.Auth.FederatedStart(c.UserContext(), middleware.ClientKey(c), origin)
	if !out.Succeeded() {
		return writeOutcome(c, out, fiber.StatusOK)
	}
	return c.JSON(dto.FederatedStartResponse{AuthURL: out.Challenge.AuthURL, State: out.Challenge.State})
}

// FederatedCallback receives the provider redirect, or the client's report
// that the popup closed.
func FederatedCallback(c *fiber.Ctx) error {
	p := platform.From(c)
	cb := identity.FederatedCallback{
		State: c.Query("state"),
		Code:  c.Query("code"),
		Error: c.Query("error"),
	}

	out := p.Auth.FederatedComplete(c.UserContext(), middleware.ClientKey(c), cb)
	return writeOutcome(c, out, fiber.StatusOK)
}

func Refresh(c *fiber.Ctx) error {
	p := platform.From(c)
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}
	if req.RefreshToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Refresh token is required",
		})
	}

	sess, err := p.Auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Session expired. Please sign in again.", Redirect: "/",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	exp := sess.ExpiresAt
	return c.JSON(dto.ActionResponse{
		Success:      true,
		Status:       "success",
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    &exp,
		User:         toUserResponse(sess.Identity),
	})
}

func Logout(c *fiber.Ctx) error {
	p := platform.From(c)
	if err := p.Auth.SignOut(c.UserContext(), session.TokenFrom(c)); err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully", "navigate": "/"})
}
