// Package rayid assigns a unique request id to every incoming request.
//
// The id is stored in the Fiber locals under "ray_id" and echoed back in
// the X-Ray-Id response header so client-side traces can be correlated
// with server logs.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalsKey is the Fiber locals key holding the request id.
const LocalsKey = "ray_id"

// HeaderName is the response header carrying the request id.
const HeaderName = "X-Ray-Id"

// New creates the middleware. An incoming X-Ray-Id header is honored so
// ids survive proxy hops; otherwise a fresh UUID is generated.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}
