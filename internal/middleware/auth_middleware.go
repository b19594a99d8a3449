package middleware

import (
	"strings"

	"go-social-shop/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequireAuth validates the bearer token and sets user info in context.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(c)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("is_staff", claims.IsStaff)
		return c.Next()
	}
}

// OptionalAuth sets user info when a valid token is present and passes
// anonymous requests through untouched. Listing endpoints use it to
// personalize favorite flags.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := claimsFromHeader(c); err == nil {
			c.Locals("user_id", claims.UserID)
			c.Locals("username", claims.Username)
			c.Locals("is_staff", claims.IsStaff)
		}
		return c.Next()
	}
}

// RequireStaff runs after RequireAuth and rejects non-staff users.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isStaff, ok := c.Locals("is_staff").(bool)
		if !ok || !isStaff {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: staff only"})
		}
		return c.Next()
	}
}

func claimsFromHeader(c *fiber.Ctx) (*jwt.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fiber.NewError(401, "Missing authorization token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, fiber.NewError(401, "Invalid authorization format. Use: Bearer <token>")
	}

	claims, err := jwt.ValidateToken(parts[1])
	if err != nil {
		return nil, fiber.NewError(401, "Invalid or expired token")
	}
	return claims, nil
}

// UserID reads the authenticated user's id from context.
func UserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("user_id").(uuid.UUID)
	return id, ok
}

// OptionalUserID returns a pointer when a user is authenticated, nil for
// anonymous requests.
func OptionalUserID(c *fiber.Ctx) *uuid.UUID {
	if id, ok := c.Locals("user_id").(uuid.UUID); ok {
		return &id
	}
	return nil
}

// IsStaff reports whether the authenticated user is staff.
func IsStaff(c *fiber.Ctx) bool {
	isStaff, ok := c.Locals("is_staff").(bool)
	return ok && isStaff
}
