package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// maxQueryLength matches the storage layer's query_text column.
const maxQueryLength = 255

type Config struct {
	Logger *zap.Logger
}

// Middleware rejects malformed analyze requests before any collaborator or
// storage call is made.
func Middleware(cfg Config) fiber.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || !strings.HasSuffix(c.Path(), "/topics/analyze") {
			return c.Next()
		}

		var req struct {
			Query string `json:"query"`
		}

		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		query := strings.TrimSpace(req.Query)
		if query == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query is required",
			})
		}

		if len(query) > maxQueryLength {
			cfg.Logger.Warn("Query exceeds maximum length",
				zap.String("ip", c.IP()),
				zap.Int("length", len(query)),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query exceeds maximum length",
			})
		}

		return c.Next()
	}
}
