package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"
)

// AdminPasswordHeader carries the shared admin secret.
const AdminPasswordHeader = "admin-password"

// AdminSecret is the configured admin credential. A bcrypt hash takes
// precedence over the plain password. With neither set every request fails.
type AdminSecret struct {
	Password string
	Hash     string
}

// Matches reports whether candidate is the admin secret.
func (s AdminSecret) Matches(candidate string) bool {
	if candidate == "" {
		return false
	}
	if s.Hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.Hash), []byte(candidate)) == nil
	}
	if s.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.Password), []byte(candidate)) == 1
}

// AdminPasswordMiddleware rejects requests without the admin secret header.
// Guesses are not rate limited.
func AdminPasswordMiddleware(secret AdminSecret) fiber.Handler {
	if secret.Password == "" && secret.Hash == "" {
		log.Warn("[Admin] No ADMIN_PASSWORD configured, admin endpoints will reject every request")
	}
	return func(c *fiber.Ctx) error {
		if !secret.Matches(c.Get(AdminPasswordHeader)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}
