package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/database"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/platform"
	"github.com/gofiber/fiber/v2"
)

func Health(c *fiber.Ctx) error {
	p := platform.From(c)
	dbStatus := "ok"
	if err := database.Ping(p.DB); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
