package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tipslap/tipslap/internal/auth"
	"github.com/tipslap/tipslap/internal/identity"
)

// Bearer requires a valid access token and stores its subject as the user ID.
func Bearer(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		claims, err := tokens.Parse(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return fiber.NewError(http.StatusUnauthorized, "token expired")
			}
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}
		c.Locals(identity.UserIDLocal, claims.Subject)
		return c.Next()
	}
}
