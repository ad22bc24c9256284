package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tipslap/tipslap/internal/auth"
	"github.com/tipslap/tipslap/internal/identity"
)

func newBearerApp(tokens *auth.TokenService) *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/me", Bearer(tokens), func(c *fiber.Ctx) error {
		id, _ := c.Locals(identity.UserIDLocal).(string)
		return c.SendString(id)
	})
	return app
}

func TestBearerAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokenService("secret", time.Hour)
	token, err := tokens.Issue(identity.User{ID: "user-1", Phone: "+15551234567"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	app := newBearerApp(tokens)

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || string(body) != "user-1" {
		t.Fatalf("expected user-1, got %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestBearerRejectsMissingAndForgedTokens(t *testing.T) {
	app := newBearerApp(auth.NewTokenService("secret", time.Hour))
	forged, _ := auth.NewTokenService("other", time.Hour).Issue(identity.User{ID: "user-1"})

	for _, header := range []string{"", "Basic abc", "Bearer " + forged} {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.StatusCode)
		}
	}
}

func TestRequestIDEchoesCallerValue(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(RequestIDHeader); got != "req-42" {
		t.Fatalf("expected req-42, got %q", got)
	}
}
