package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/covaid/covaid-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type stubRoles map[string]bool

func (s stubRoles) IsAdmin(_ context.Context, mobile string) bool { return s[mobile] }

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newApp(cfg *config.Config, roles RoleChecker) *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(cfg), func(c *fiber.Ctx) error {
		mobile, err := GetMobile(c)
		if err != nil {
			return err
		}
		return c.SendString(mobile)
	})
	app.Put("/admin", JWTUnlessAdminToken(cfg), AdminRequired(cfg, roles), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestJWTProtected(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newApp(cfg, nil)
	valid := jwt.MapClaims{"sub": "9876543210", "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + signToken(t, valid), fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Hour).Unix()}), fiber.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), fiber.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAdminRequired(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret, AdminToken: "s3cret", AdminMobiles: "111111, 222222"}
	app := newApp(cfg, stubRoles{"333333": true})
	bearer := func(mobile string) string {
		return "Bearer " + signToken(t, jwt.MapClaims{"sub": mobile, "exp": time.Now().Add(time.Hour).Unix()})
	}

	tests := []struct {
		name    string
		headers map[string]string
		status  int
	}{
		{"admin token", map[string]string{"X-Admin-Token": "s3cret"}, fiber.StatusNoContent},
		{"wrong admin token", map[string]string{"X-Admin-Token": "nope"}, fiber.StatusUnauthorized},
		{"configured mobile", map[string]string{"Authorization": bearer("222222")}, fiber.StatusNoContent},
		{"admin role", map[string]string{"Authorization": bearer("333333")}, fiber.StatusNoContent},
		{"ordinary user", map[string]string{"Authorization": bearer("444444")}, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/admin", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
