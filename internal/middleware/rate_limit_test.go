package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKeysByUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		var id uint
		switch c.Get("X-User") {
		case "a":
			id = 1
		case "b":
			id = 2
		}
		if id != 0 {
			c.Locals("user_id", id)
		}
		return c.Next()
	})
	app.Get("/check", RateLimit("plagiarism", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/check", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, call("a"))
	require.Equal(t, fiber.StatusOK, call("a"))
	require.Equal(t, fiber.StatusTooManyRequests, call("a"))
	require.Equal(t, fiber.StatusOK, call("b"))
}
