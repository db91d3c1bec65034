package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
)

type stubAuth map[string]*domain.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, service.ErrInvalidToken
}

func TestToken(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"bearer", map[string]string{"Authorization": "Bearer abc"}, "abc"},
		{"lowercase scheme", map[string]string{"Authorization": "bearer abc"}, "abc"},
		{"basic is ignored", map[string]string{"Authorization": "Basic abc"}, ""},
		{"session header", map[string]string{"X-Session-Token": "xyz"}, "xyz"},
		{"none", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/", func(c *fiber.Ctx) error {
				got = Token(c)
				return nil
			})

			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if _, err := app.Test(req); err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Token() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireAuthAndAdmin(t *testing.T) {
	auth := stubAuth{
		"member": {ID: uuid.New(), Role: domain.UserRoleMember},
		"admin":  {ID: uuid.New(), Role: domain.UserRoleAdmin},
	}

	app := fiber.New()
	app.Use(RecoveryMiddleware())
	app.Get("/me", RequireAuth(auth), func(c *fiber.Ctx) error {
		return c.JSON(CurrentUser(c))
	})
	app.Get("/admin", RequireAuth(auth), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("boom")
	})

	tests := []struct {
		path   string
		token  string
		status int
	}{
		{"/me", "", fiber.StatusUnauthorized},
		{"/me", "bogus", fiber.StatusUnauthorized},
		{"/me", "member", fiber.StatusOK},
		{"/admin", "member", fiber.StatusForbidden},
		{"/admin", "admin", fiber.StatusNoContent},
		{"/panic", "", fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.token, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	app := fiber.New()
	app.Post("/login", RateLimitMiddleware(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	want := []int{fiber.StatusNoContent, fiber.StatusNoContent, fiber.StatusTooManyRequests}
	for i, code := range want {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		if resp.StatusCode != code {
			t.Fatalf("request %d status = %d, want %d", i+1, resp.StatusCode, code)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	app := fiber.New()
	app.Get("/", RateLimitMiddleware(0, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		if resp.StatusCode != fiber.StatusNoContent {
			t.Fatalf("request %d status = %d", i+1, resp.StatusCode)
		}
	}
}
