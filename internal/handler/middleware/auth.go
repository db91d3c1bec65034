package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
)

const (
	localUser  = "user"
	localToken = "token"
)

// Authenticator resolves a session token to its user. *service.AuthService
// implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// RequireAuth rejects requests without a valid session token and stores the
// user and raw token in Locals for downstream handlers.
func RequireAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := Token(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing session token",
			})
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid or expired session token",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to verify session",
			})
		}

		c.Locals(localUser, user)
		c.Locals(localToken, token)
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets the
// request through either way.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := Token(c); token != "" {
			if user, err := auth.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(localUser, user)
				c.Locals(localToken, token)
			}
		}
		return c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}
		if !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": service.ErrForbidden.Error(),
			})
		}
		return c.Next()
	}
}

// Token reads "Authorization: Bearer <token>" or the X-Session-Token header.
func Token(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(c.Get("X-Session-Token"))
}

func CurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(localUser).(*domain.User)
	return user
}
