// Package middleware provides Fiber middleware shared by the HTTP server.
package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"scribble/internal/models"
	"scribble/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token claims issued by the account endpoints.
const (
	TokenIssuer   = "scribble-api"
	TokenAudience = "scribble-client"
	TokenTTL      = 24 * time.Hour

	// UsernameLocal is the fiber.Ctx local holding the authenticated username.
	UsernameLocal = "username"
)

// GenerateToken signs an HS256 token whose subject is username.
func GenerateToken(secret, username string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    TokenIssuer,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates tokenString and returns its subject.
func ParseToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("invalid subject claim")
	}
	return claims.Subject, nil
}

// AuthRequired rejects requests without a valid bearer token and stores the
// token subject in c.Locals(UsernameLocal).
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid authorization header format"))
		}

		username, err := ParseToken(secret, parts[1])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError(err.Error()))
		}

		c.Locals(UsernameLocal, username)
		ctx := context.WithValue(c.UserContext(), observability.UsernameKey, username)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// Username returns the username set by AuthRequired, or "".
func Username(c *fiber.Ctx) string {
	username, _ := c.Locals(UsernameLocal).(string)
	return username
}
