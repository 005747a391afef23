package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/internal/application/session"
	apphttp "github.com/jdmorgan/trading-portal/internal/interfaces/http"
	pkgjwt "github.com/jdmorgan/trading-portal/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "0000000000000000000000000001"
	testIssuer    = "jdmorgan-test"
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			id, _ := session.FromContext(c.UserContext())
			return c.JSON(fiber.Map{
				"ok":       true,
				"role":     apphttp.GetRole(c),
				"identity": id.UID,
			})
		},
	)
	app.Get("/optional",
		apphttp.OptionalAuth(testJWTSecret),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"uid": apphttp.GetUserID(c), "anon": apphttp.IsAnonymous(c)})
		},
	)
	return app
}

// tokenForRole genera un JWT de sesión con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, time.Hour, pkgjwt.Claims{
		UserID: testUserID,
		Email:  "ana@example.com",
		Role:   role,
	})
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp("admin")
	resp := doRequest(t, app, "/protected", tokenForRole(t, "admin"))

	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin debe poder acceder a ruta restringida a admin")
	body := decode(t, resp)
	assert.Equal(t, true, body["ok"], "la respuesta debe incluir ok:true")
	assert.Equal(t, "admin", body["role"], "el role debe ser admin")
	assert.Equal(t, testUserID, body["identity"], "la identidad viaja en el contexto de usuario")
}

func TestRequireRole_ClienteBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp("admin")
	resp := doRequest(t, app, "/protected", tokenForRole(t, "client"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "client no debe acceder a ruta de admin")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN", "la respuesta de error debe incluir el código FORBIDDEN")
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	app := buildTestApp("admin")
	resp := doRequest(t, app, "/protected", tokenForRole(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "token sin rol debe devolver 401")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware / OptionalAuth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinHeader(t *testing.T) {
	app := buildTestApp("admin")
	resp := doRequest(t, app, "/protected", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "sin Authorization debe devolver 401")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoIncorrecto(t *testing.T) {
	app := buildTestApp("admin")
	resp := doRequest(t, app, "/protected", "Token abc")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FirmaInvalida(t *testing.T) {
	tok, err := pkgjwt.Generate("otra-clave", testIssuer, time.Hour, pkgjwt.Claims{UserID: testUserID, Role: "admin"})
	require.NoError(t, err)
	resp := doRequest(t, buildTestApp("admin"), "/protected", "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "firma con otra clave debe ser rechazada")
}

func TestAuthMiddleware_TokenDeVerificacionNoSirveComoSesion(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, time.Hour, pkgjwt.Claims{
		UserID: testUserID, Role: "admin", Purpose: pkgjwt.PurposeVerifyEmail,
	})
	require.NoError(t, err)
	resp := doRequest(t, buildTestApp("admin"), "/protected", "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "un enlace de verificación no abre sesión")
}

func TestOptionalAuth_SinTokenPasa(t *testing.T) {
	resp := doRequest(t, buildTestApp(), "/optional", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", decode(t, resp)["uid"])
}

func TestOptionalAuth_TokenAnonimo(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, time.Hour, pkgjwt.Claims{UserID: "guest1", Role: "guest", Anonymous: true})
	require.NoError(t, err)
	resp := doRequest(t, buildTestApp(), "/optional", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "guest1", body["uid"])
	assert.Equal(t, true, body["anon"])
}

func TestOptionalAuth_TokenInvalidoRechazado(t *testing.T) {
	resp := doRequest(t, buildTestApp(), "/optional", "Bearer basura")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "un token presente pero inválido no se ignora")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireAdminProfile
// ──────────────────────────────────────────────────────────────────────────────

type stubChecker struct {
	admin bool
	err   error
}

func (s stubChecker) IsAdmin(context.Context, string) (bool, error) { return s.admin, s.err }

func buildAdminApp(checker stubChecker) *fiber.App {
	app := fiber.New()
	app.Get("/admin",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireAdminProfile(checker),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func TestRequireAdminProfile(t *testing.T) {
	cases := []struct {
		name    string
		checker stubChecker
		status  int
	}{
		{"perfil admin", stubChecker{admin: true}, http.StatusOK},
		{"acceso revocado", stubChecker{admin: false}, http.StatusForbidden},
		{"almacén caído", stubChecker{err: errors.New("timeout")}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, buildAdminApp(tc.checker), "/admin", tokenForRole(t, "admin"))
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
