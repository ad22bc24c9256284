package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tipslap/tipslap/internal/auth"
)

// RegisterAuthRoutes wires the code sign-in endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/request-code", rateLimiter, h.RequestCode)
	} else {
		group.Post("/request-code", h.RequestCode)
	}
	group.Post("/verify-code", h.VerifyCode)
}
