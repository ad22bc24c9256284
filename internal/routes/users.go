package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tipslap/tipslap/internal/identity"
)

// RegisterUserRoutes wires the profile and search endpoints onto the /users
// group, which must already require a bearer token.
func RegisterUserRoutes(users fiber.Router, h *identity.Handler, idempotency fiber.Handler) {
	users.Post("/", idempotency, h.Create)
	users.Get("/profile", h.GetProfile)
	users.Put("/profile", h.UpdateProfile)
	users.Get("/search", h.Search)
}
