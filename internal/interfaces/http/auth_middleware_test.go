package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/servitec-api/internal/application/dto"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	apihttp "github.com/tu-usuario/servitec-api/internal/interfaces/http"
	"github.com/tu-usuario/servitec-api/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

// buildTestApp monta una ruta protegida que hace eco de los claims extraídos,
// y una ruta cerrada por rol.
func buildTestApp() *fiber.App {
	app := fiber.New()
	protected := app.Group("/", apihttp.AuthMiddleware(testSecret))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apihttp.GetUserID(c),
			"role":    apihttp.GetRole(c),
		})
	})
	protected.Get("/solo-admin", apihttp.RequireRole(entity.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.Generate(testSecret, "u-1", role, "servitec-test", 15)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body dto.ErrorResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = json.Unmarshal(raw, &body)
	return resp, body
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinHeaderRechaza(t *testing.T) {
	resp, body := doRequest(t, buildTestApp(), "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildTestApp()
	for _, header := range []string{"Basic abc123", "Bearer", "solo-el-token"} {
		resp, body := doRequest(t, app, "/whoami", header)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q", header)
		assert.Equal(t, "INVALID_TOKEN", body.Code, "header %q", header)
	}
}

func TestAuthMiddleware_TokenVacio(t *testing.T) {
	resp, body := doRequest(t, buildTestApp(), "/whoami", "Bearer  ")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("otro-secreto", "u-1", entity.RoleAdmin, "servitec-test", 15)
	require.NoError(t, err)

	resp, body := doRequest(t, buildTestApp(), "/whoami", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestAuthMiddleware_TokenExpirado(t *testing.T) {
	token, err := jwt.Generate(testSecret, "u-1", entity.RoleAdmin, "servitec-test", -5)
	require.NoError(t, err)

	resp, body := doRequest(t, buildTestApp(), "/whoami", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestAuthMiddleware_TokenValidoPropagaClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tokenForRole(t, entity.RoleBackoffice))

	resp, err := buildTestApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-1", body["user_id"])
	assert.Equal(t, entity.RoleBackoffice, body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_RolPermitidoPasa(t *testing.T) {
	resp, _ := doRequest(t, buildTestApp(), "/solo-admin", "Bearer "+tokenForRole(t, entity.RoleAdmin))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_RolNoPermitido(t *testing.T) {
	app := buildTestApp()
	for _, role := range []string{entity.RoleBackoffice, entity.RoleTechInternal, entity.RoleTechField} {
		resp, body := doRequest(t, app, "/solo-admin", "Bearer "+tokenForRole(t, role))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "rol %s", role)
		assert.Equal(t, "FORBIDDEN", body.Code, "rol %s", role)
	}
}

func TestRequireRole_SinRolEnContexto(t *testing.T) {
	app := fiber.New()
	// RequireRole sin AuthMiddleware adelante: no hay rol en Locals.
	app.Get("/cerrada", apihttp.RequireRole(entity.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, body := doRequest(t, app, "/cerrada", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}
