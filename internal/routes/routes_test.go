package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/covaid/covaid-backend/internal/apps"
	"github.com/covaid/covaid-backend/internal/apps/blood"
	"github.com/covaid/covaid-backend/internal/apps/oxygen"
	"github.com/covaid/covaid-backend/internal/config"
	"github.com/covaid/covaid-backend/internal/events"
	"github.com/covaid/covaid-backend/internal/handlers"
	"github.com/covaid/covaid-backend/internal/routes"
	"github.com/covaid/covaid-backend/internal/services"
	"github.com/covaid/covaid-backend/internal/testutil"
)

const adminToken = "admin-secret"

type RoutesSuite struct {
	suite.Suite
	db    *gorm.DB
	app   *fiber.App
	token string
}

func TestRoutesSuite(t *testing.T) {
	suite.Run(t, new(RoutesSuite))
}

func (s *RoutesSuite) SetupTest() {
	plugins := []apps.Plugin{blood.New(), oxygen.New()}
	var models []interface{}
	for _, p := range plugins {
		models = append(models, p.Models()...)
	}
	s.db = testutil.NewDB(s.T(), models...)

	cfg := &config.Config{
		JWTSecret:       "routes-test-secret",
		JWTAccessExpiry: time.Hour,
		MatchRadiusKm:   500,
		MatchLimit:      3,
		AdminToken:      adminToken,
	}
	authService := services.NewAuthService(s.db, cfg)

	s.app = fiber.New()
	routes.Setup(s.app, cfg, s.db, routes.Deps{
		AuthHandler:   handlers.NewAuthHandler(authService),
		HealthHandler: handlers.NewHealthHandler(s.db, nil),
		Roles:         authService,
		Plugins:       plugins,
		Publisher:     events.NopPublisher{},
	})

	s.register("9000000001", "password123")
	s.token = s.login("9000000001", "password123")
}

func (s *RoutesSuite) do(method, path string, body any, headers map[string]string) (int, []byte) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, out
}

func (s *RoutesSuite) authed(method, path string, body any) (int, []byte) {
	return s.do(method, path, body, map[string]string{"Authorization": "Bearer " + s.token})
}

func (s *RoutesSuite) register(mobile, password string) {
	status, body := s.do(http.MethodPost, "/user/register", map[string]any{
		"name":         "User " + mobile,
		"email":        mobile + "@example.com",
		"mobileNumber": mobile,
		"password":     password,
	}, nil)
	s.Require().Equal(fiber.StatusCreated, status, string(body))
}

func (s *RoutesSuite) login(mobile, password string) string {
	status, body := s.do(http.MethodPost, "/user/login", map[string]string{
		"username": mobile,
		"password": password,
	}, nil)
	s.Require().Equal(fiber.StatusOK, status, string(body))

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	s.Require().NoError(json.Unmarshal(body, &resp))
	s.Equal("bearer", resp.TokenType)
	return resp.AccessToken
}

func bloodEntry(mobile string, receiver bool, bloodType int, lat, lon float64) map[string]any {
	return map[string]any{
		"mobileNumber":  mobile,
		"bloodReceiver": receiver,
		"bloodType":     bloodType,
		"latitude":      lat,
		"longitude":     lon,
	}
}

func (s *RoutesSuite) TestBloodMatchFlow() {
	// Requester is O- and may only receive O-; the nearer A+ donor is skipped.
	for _, entry := range []map[string]any{
		bloodEntry("9000000001", true, int(blood.ONegative), 0, 0),
		bloodEntry("9000000002", false, int(blood.ONegative), 0, 1),
		bloodEntry("9000000003", false, int(blood.APositive), 0, 0.001),
	} {
		status, body := s.authed(http.MethodPost, "/blood/entry", entry)
		s.Require().Equal(fiber.StatusCreated, status, string(body))
		s.JSONEq(`{"message":"Processed"}`, string(body))
	}

	status, body := s.authed(http.MethodPost, "/blood/receive", map[string]any{
		"mobileNumber": "9000000001",
		"message":      "need O- urgently",
		"latitude":     0,
		"longitude":    0,
	})
	s.Require().Equal(fiber.StatusOK, status, string(body))
	s.JSONEq(`{"userNotified":1}`, string(body))

	status, body = s.authed(http.MethodGet, "/blood/donate/9000000002", nil)
	s.Require().Equal(fiber.StatusOK, status)
	var pending []map[string]any
	s.Require().NoError(json.Unmarshal(body, &pending))
	s.Require().Len(pending, 1)
	s.Equal("9000000001", pending[0]["receiver"])
	s.Equal("need O- urgently", pending[0]["message"])
	s.Equal(false, pending[0]["isAccepted"])

	status, _ = s.authed(http.MethodPost, "/blood/accept/9000000002/9000000001", nil)
	s.Require().Equal(fiber.StatusOK, status)

	status, body = s.authed(http.MethodGet, "/blood/receive/9000000001", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Contains(string(body), `"isAccepted":true`)

	status, _ = s.authed(http.MethodPost, "/blood/accept/9000000003/9000000001", nil)
	s.Equal(fiber.StatusNotFound, status)
}

func (s *RoutesSuite) TestListingEndpoints() {
	status, _ := s.authed(http.MethodGet, "/oxygen/9000000009", nil)
	s.Equal(fiber.StatusNotFound, status)

	entry := map[string]any{
		"mobileNumber":   "9000000009",
		"oxygenReceiver": false,
		"fullGear":       true,
		"latitude":       12.97,
		"longitude":      77.59,
	}
	status, _ = s.authed(http.MethodPost, "/oxygen/entry", entry)
	s.Require().Equal(fiber.StatusCreated, status)

	status, _ = s.authed(http.MethodPost, "/oxygen/entry", entry)
	s.Equal(fiber.StatusConflict, status)

	status, body := s.authed(http.MethodGet, "/oxygen/9000000009", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Contains(string(body), `"fullGear":true`)

	delete(entry, "latitude")
	entry["mobileNumber"] = "9000000010"
	status, _ = s.authed(http.MethodPost, "/oxygen/entry", entry)
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *RoutesSuite) TestProtectedRoutesRequireToken() {
	status, _ := s.do(http.MethodGet, "/blood/donate/9000000001", nil, nil)
	s.Equal(fiber.StatusUnauthorized, status)

	status, _ = s.do(http.MethodGet, "/profile/9000000001", nil, map[string]string{"Authorization": "Bearer nope"})
	s.Equal(fiber.StatusUnauthorized, status)
}

func (s *RoutesSuite) TestProfile() {
	status, body := s.authed(http.MethodGet, "/profile/9000000001", nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.Contains(string(body), `"mobileNumber":"9000000001"`)
	s.NotContains(string(body), "password")

	status, _ = s.authed(http.MethodGet, "/profile/9999999999", nil)
	s.Equal(fiber.StatusNotFound, status)
}

func (s *RoutesSuite) TestAdminDisableBlocksLogin() {
	status, _ := s.authed(http.MethodPut, "/admin/users/9000000001/disable", nil)
	s.Equal(fiber.StatusForbidden, status)

	status, _ = s.do(http.MethodPut, "/admin/users/9000000001/disable", nil, map[string]string{"X-Admin-Token": adminToken})
	s.Require().Equal(fiber.StatusOK, status)

	status, _ = s.do(http.MethodPost, "/user/login", map[string]string{"username": "9000000001", "password": "password123"}, nil)
	s.Equal(fiber.StatusUnauthorized, status)

	status, _ = s.do(http.MethodPut, "/admin/users/9000000001/enable", nil, map[string]string{"X-Admin-Token": adminToken})
	s.Require().Equal(fiber.StatusOK, status)
	s.login("9000000001", "password123")
}

func (s *RoutesSuite) TestHealth() {
	status, body := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(fiber.StatusOK, status)
	s.Contains(string(body), `"db":"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	app := fiber.New()
	db := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: "x"}
	authService := services.NewAuthService(db, cfg)
	routes.Setup(app, cfg, db, routes.Deps{
		AuthHandler:   handlers.NewAuthHandler(authService),
		HealthHandler: handlers.NewHealthHandler(db, nil),
		Roles:         authService,
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "covaid_")
}
