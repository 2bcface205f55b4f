package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// HeaderName is the header carrying the API key.
const HeaderName = "X-API-Key"

// Config holds the middleware configuration.
type Config struct {
	// ApiKey is the expected key. An empty key disables the check.
	ApiKey string
	// Skip lists path prefixes served without a key.
	Skip []string
}

// New returns a middleware rejecting requests without a valid API key.
// The key is read from the X-API-Key header or a Bearer authorization header.
func New(cfg Config) fiber.Handler {
	expected := []byte(cfg.ApiKey)
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		for _, prefix := range cfg.Skip {
			if strings.HasPrefix(c.Path(), prefix) {
				return c.Next()
			}
		}

		key := c.Get(HeaderName)
		if key == "" {
			if bearer, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); ok {
				key = bearer
			}
		}
		if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}
		return c.Next()
	}
}
