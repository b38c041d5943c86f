package middleware

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestGatewayAuthRejectsAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", GatewayAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestGatewayAuthPopulatesLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", GatewayAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c) + "/" + GetUserEmail(c))
	})

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("X-User-Id", "user-42")
	req.Header.Set("X-User-Email", "user@example.com")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
