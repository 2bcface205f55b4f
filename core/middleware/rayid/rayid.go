package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// HeaderName is the response header carrying the ray id.
	HeaderName = "X-Ray-ID"
	// LocalsKey is the Fiber locals key read by logger.WithRayID.
	LocalsKey = "ray_id"
)

// New returns a middleware assigning every request a ray id.
// An incoming X-Ray-ID header is kept so callers can correlate retries.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}

// Get returns the ray id of the request, or an empty string.
func Get(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsKey).(string)
	return id
}
