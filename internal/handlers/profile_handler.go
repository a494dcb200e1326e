package handlers

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/platform"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/profile"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/session"
	"github.com/gofiber/fiber/v2"
)

func Profile(c *fiber.Ctx) error {
	p := platform.From(c)
	userID, err := middleware.SubjectFrom(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	prof, err := p.Profiles.Get(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Profile not found",
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(prof)
}

// Dashboard is the landing page of the signed-in area.
func Dashboard(c *fiber.Ctx) error {
	user := session.UserFrom(c)
	if user == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "dashboard reached without a session")
	}

	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	return c.JSON(dto.DashboardResponse{
		Greeting: fmt.Sprintf("Welcome, %s!", name),
		User:     toUserResponse(user),
	})
}
