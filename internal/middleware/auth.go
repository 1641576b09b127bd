package middleware

import (
	"log"
	"strings"

	"gameghor/internal/models"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// TokenValidator resolves a bearer token into an identity.
type TokenValidator interface {
	ValidateToken(token string) (models.Identity, error)
}

// Authenticate resolves the caller's identity from an optional bearer token.
// Requests without an Authorization header continue as anonymous; a present
// but unusable header is rejected.
func Authenticate(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			c.Locals(identityKey, models.Anonymous())
			return c.Next()
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "") {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		identity, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RequireAuth rejects anonymous callers. It must run after Authenticate.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFrom(c).IsAnonymous() {
			return unauthorized(c, "Authorization header is required")
		}
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by Authenticate, or the anonymous
// identity when none was stored.
func IdentityFrom(c *fiber.Ctx) models.Identity {
	if identity, ok := c.Locals(identityKey).(models.Identity); ok {
		return identity
	}
	return models.Anonymous()
}

func unauthorized(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"detail": detail,
	})
}
