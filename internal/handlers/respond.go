package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/auth"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the fiber ErrorHandler. Client errors keep their message;
// server errors are logged and replaced with a generic one.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}

func outcomeStatus(out auth.Outcome, successCode int) int {
	switch out.Status {
	case auth.StatusSuccess:
		return successCode
	case auth.StatusInvalid:
		return fiber.StatusUnprocessableEntity
	case auth.StatusDismissed:
		return fiber.StatusOK
	case auth.StatusPending:
		return fiber.StatusTooManyRequests
	}

	switch out.Code {
	case identity.CodeInvalidCredential, identity.CodeUserNotFound, identity.CodeWrongPassword,
		identity.CodeInvalidToken, identity.CodeInvalidState:
		return fiber.StatusUnauthorized
	case identity.CodeEmailInUse:
		return fiber.StatusConflict
	case identity.CodeUnauthorizedDomain, identity.CodeNotConfigured:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func writeOutcome(c *fiber.Ctx, out auth.Outcome, successCode int) error {
	resp := dto.ActionResponse{
		Success:     out.Succeeded(),
		Status:      string(out.Status),
		Message:     out.Message,
		Navigate:    out.Navigate,
		NextView:    out.NextView,
		FieldErrors: out.FieldErrors,
	}
	if s := out.Session; s != nil {
		resp.AccessToken = s.AccessToken
		resp.RefreshToken = s.RefreshToken
		exp := s.ExpiresAt
		resp.ExpiresAt = &exp
		resp.User = toUserResponse(s.Identity)
	}
	return c.Status(outcomeStatus(out, successCode)).JSON(resp)
}

func toUserResponse(ident *identity.Identity) *dto.UserResponse {
	if ident == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          ident.ID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Phone:       ident.Phone,
		PhotoURL:    ident.PhotoURL,
		Provider:    ident.Provider,
	}
}
