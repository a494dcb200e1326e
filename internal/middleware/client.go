package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const ClientIDHeader = "X-Client-ID"

const maxClientIDLen = 128

// ClientKey identifies the submitting client for rate limits and the action
// guard. Browsers send a per-tab id; anything else falls back to the IP.
func ClientKey(c *fiber.Ctx) string {
	id := strings.TrimSpace(c.Get(ClientIDHeader))
	if id == "" || len(id) > maxClientIDLen {
		return c.IP()
	}
	return "client:" + id
}
