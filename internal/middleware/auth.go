package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scriptor-pro/ernest-export/internal/auth"
	"github.com/scriptor-pro/ernest-export/pkg/response"
)

// AuthMiddleware handles bearer token authentication. The service listens on
// loopback for a single local client, so auth is optional: with an empty
// secret every request passes through.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// Authenticate validates the token from the Authorization header
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.jwtSecret == "" {
			return c.Next()
		}

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		claims, err := auth.ValidateToken(parts[1], m.jwtSecret)
		if err != nil {
			return response.Unauthorized(c, "Invalid or expired token")
		}

		c.Locals("clientId", claims.ClientID)
		return c.Next()
	}
}
