package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminApp(secret AdminSecret) *fiber.App {
	app := fiber.New()
	app.Post("/reset", AdminPasswordMiddleware(secret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func doReset(t *testing.T, app *fiber.App, password string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	if password != "" {
		req.Header.Set(AdminPasswordHeader, password)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAdminPasswordMiddleware_Plain(t *testing.T) {
	app := adminApp(AdminSecret{Password: "hunter2"})

	assert.Equal(t, fiber.StatusUnauthorized, doReset(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, doReset(t, app, "hunter3"))
	assert.Equal(t, fiber.StatusOK, doReset(t, app, "hunter2"))
}

func TestAdminPasswordMiddleware_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	app := adminApp(AdminSecret{Password: "ignored", Hash: string(hash)})

	assert.Equal(t, fiber.StatusUnauthorized, doReset(t, app, "ignored"))
	assert.Equal(t, fiber.StatusOK, doReset(t, app, "hunter2"))
}

func TestAdminPasswordMiddleware_UnconfiguredRejectsAll(t *testing.T) {
	app := adminApp(AdminSecret{})

	assert.Equal(t, fiber.StatusUnauthorized, doReset(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, doReset(t, app, "anything"))
}
