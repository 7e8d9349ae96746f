package server

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/api/v1/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"pong": true})
	})
}

func TestHealthAndMetrics(t *testing.T) {
	app := New(Config{}, pingHandler{})

	res, _ := app.Test(httptest.NewRequest("GET", "/health", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if res.Header.Get(RequestIDHeader) == "" {
		t.Fatalf("expected a generated request id")
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res2.StatusCode)
	}
	b, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b), "dashboard_http_request_duration_seconds") {
		t.Fatalf("expected request histogram in metrics output")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	app := New(Config{}, pingHandler{})
	req := httptest.NewRequest("GET", "/api/v1/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")

	res, _ := app.Test(req)
	if got := res.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestNotFound(t *testing.T) {
	app := New(Config{})
	res, _ := app.Test(httptest.NewRequest("GET", "/nope", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestJWTGuard(t *testing.T) {
	const secret = "test-secret"
	app := New(Config{JWTSecret: secret}, pingHandler{})

	// no token
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/ping", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	// wrong key
	bad, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "analyst"}).SignedString([]byte("other"))
	req := httptest.NewRequest("GET", "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	res2, _ := app.Test(req)
	if res2.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for foreign token, got %d", res2.StatusCode)
	}

	// valid token
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "analyst",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req3 := httptest.NewRequest("GET", "/api/v1/ping", nil)
	req3.Header.Set("Authorization", "Bearer "+tok)
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res3.StatusCode)
	}

	// health stays public
	res4, _ := app.Test(httptest.NewRequest("GET", "/health", nil))
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected public /health, got %d", res4.StatusCode)
	}
}
