package auth

import (
	"github.com/gofiber/fiber/v2"
)

const identityLocal = "identity"

// RequireAuth gates a route on a verified caller and stores the identity in locals.
// Authentication runs at most once per request even when the handler is chained twice.
func RequireAuth(authn *Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals(identityLocal).(Identity); ok {
			return c.Next()
		}
		id, err := authn.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Locals(identityLocal, id)
		return c.Next()
	}
}

// IdentityFrom returns the caller stored by RequireAuth.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityLocal).(Identity)
	return id, ok
}
