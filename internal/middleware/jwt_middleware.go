package middleware

import (
	"fmt"
	"log"
	"strings"

	"msgservice/internal/services"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// Authenticate checks a raw Authorization header of the form "Bearer <token>".
func Authenticate(tokens *services.TokenService, rawHeader string) services.Verification {
	if rawHeader == "" {
		return services.Verification{Reason: services.ErrMissingToken}
	}

	parts := strings.SplitN(rawHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return services.Verification{Reason: fmt.Errorf("%w: authorization header format must be 'Bearer <token>'", services.ErrInvalidToken)}
	}

	return tokens.Verify(strings.TrimSpace(parts[1]))
}

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token and stores the caller's identity for later handlers.
func AuthRequired(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v := Authenticate(tokens, c.Get(fiber.HeaderAuthorization))
		if !v.Verified() {
			log.Printf("JWT validation failed for %s %s: %v", c.Method(), c.Path(), v.Reason)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"ok":    false,
				"error": "Authentication error",
			})
		}

		c.Locals(identityKey, v.Identity)
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthRequired, or the zero
// Identity on unprotected routes.
func IdentityFrom(c *fiber.Ctx) services.Identity {
	identity, _ := c.Locals(identityKey).(services.Identity)
	return identity
}
