package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func Auth(jwtSecret string) fiber.Handler {
	secret := []byte(jwtSecret)
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(401).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return c.Status(401).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token claims"})
		}

		userID, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if userID == "" {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token: missing subject"})
		}

		c.Locals("user_id", userID)
		c.Locals("email", email)
		return c.Next()
	}
}

// RoleChecker reports whether a user currently holds the admin role.
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireAdmin gates a route on the admin role. Must run after Auth.
func RequireAdmin(roles RoleChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return c.Status(401).JSON(fiber.Map{"error": "authentication required"})
		}
		isAdmin, err := roles.IsAdmin(c.Context(), userID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "role check failed"})
		}
		if !isAdmin {
			return c.Status(403).JSON(fiber.Map{"error": "admin role required"})
		}
		return c.Next()
	}
}
