package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// parseBoolField accepts the usual truthy spellings sent by forms and JSON clients.
func parseBoolField(raw string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && value
}

func parseIntParam(c *fiber.Ctx, name string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return 0, false
	}
	return value, true
}
