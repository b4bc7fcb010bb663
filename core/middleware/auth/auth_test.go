package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"dash-sync/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: key}))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestEmptyKeyDisablesCheck(t *testing.T) {
	app := newApp("")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidKeyPasses(t *testing.T) {
	app := newApp("secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(auth.HeaderName, "secret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMissingKeyRejected(t *testing.T) {
	app := newApp("secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWrongKeyRejected(t *testing.T) {
	app := newApp("secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(auth.HeaderName, "wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
