package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret), func(c *fiber.Ctx) error {
		return c.SendString(Username(c))
	})

	valid, err := GenerateToken(testSecret, "alice", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(testSecret, "alice", -time.Minute)
	require.NoError(t, err)
	otherKey, err := GenerateToken("another-secret-another-secret-xx", "alice", time.Hour)
	require.NoError(t, err)

	noIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{name: "Happy Path", authHeader: "Bearer " + valid, expectedStatus: http.StatusOK, expectedBody: "alice"},
		{name: "Missing Header", expectedStatus: http.StatusUnauthorized},
		{name: "Invalid Format", authHeader: "Basic dXNlcjpwYXNz", expectedStatus: http.StatusUnauthorized},
		{name: "Expired", authHeader: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "Wrong Key", authHeader: "Bearer " + otherKey, expectedStatus: http.StatusUnauthorized},
		{name: "Missing Issuer", authHeader: "Bearer " + noIssuer, expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.expectedBody, string(body))
			}
		})
	}
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	_, err := GenerateToken("", "alice", time.Hour)
	assert.Error(t, err)
}

func TestParseToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "bob", time.Hour)
	require.NoError(t, err)
	sub, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "bob", sub)
}

func TestCheckRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	ctx := context.Background()

	t.Run("Development Bypass", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(ctx, nil, "login", "ip:1", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("Production Enforces Limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:2", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		allowed, _ = CheckRateLimit(ctx, rdb, "login", "ip:2", 2, time.Minute)
		assert.True(t, allowed)
		allowed, _ = CheckRateLimit(ctx, rdb, "login", "ip:2", 2, time.Minute)
		assert.False(t, allowed)
		assert.True(t, mr.TTL("rl:login:ip:2") > 0)
	})

	t.Run("Nil Redis", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		allowed, err := CheckRateLimit(ctx, nil, "login", "ip:3", 1, time.Minute)
		assert.Error(t, err)
		assert.False(t, allowed)
	})
}

func TestRateLimit_Middleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	app := fiber.New()
	app.Post("/login", RateLimit(rdb, 1, time.Minute, "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// Fails open without Redis.
	open := fiber.New()
	open.Post("/login", RateLimit(nil, 1, time.Minute, "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err = open.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestContextMiddlewareAndTracing(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware(), ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}
