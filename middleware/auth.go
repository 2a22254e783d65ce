// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// UserContextMiddleware requires "Authorization: Bearer <jwt>" and attaches
// the user id to c.Locals("user_id").
func UserContextMiddleware(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		userID, err := parser.ParseToken(token)
		if err != nil {
			log.Printf("❌ [USER_CTX] rejected token on %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// OptionalUserContext sets c.Locals("user_id") when a valid bearer token is
// present and lets anonymous requests through otherwise.
func OptionalUserContext(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if token != "" && token != c.Get("Authorization") {
			if userID, err := parser.ParseToken(token); err == nil {
				c.Locals("user_id", userID)
			}
		}
		return c.Next()
	}
}
