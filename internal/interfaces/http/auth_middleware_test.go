package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsalud/fiscal-api/pkg/jwt"
)

const testSecret = "secreto-de-prueba"

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Use(AuthMiddleware(testSecret))
	app.Get("/quien", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": GetUserID(c), "clinic_id": GetClinicID(c)})
	})
	return app
}

func TestAuthMiddleware_SinHeader(t *testing.T) {
	app := newProtectedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/quien", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/quien", nil)
	req.Header.Set("Authorization", "Basic abc123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/quien", nil)
	req.Header.Set("Authorization", "Bearer no-es-un-jwt")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FirmaDistinta(t *testing.T) {
	app := newProtectedApp()
	token, err := jwt.Generate("otro-secreto", "user-1", "cli-1", "clinsalud", 15)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/quien", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenValidoExponeLocals(t *testing.T) {
	app := newProtectedApp()
	token, err := jwt.Generate(testSecret, "user-1", "cli-1", "clinsalud", 15)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/quien", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
