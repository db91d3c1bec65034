package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

type PasswordHandler struct {
	authService *service.AuthService
	validator   *validator.Validator
}

func NewPasswordHandler(authService *service.AuthService, validator *validator.Validator) *PasswordHandler {
	return &PasswordHandler{
		authService: authService,
		validator:   validator,
	}
}

// Forgot mails a reset link. The answer is the same whether or not the
// address has an account.
// POST /api/v1/auth/password/forgot
func (h *PasswordHandler) Forgot(c *fiber.Ctx) error {
	var req service.ForgotPasswordRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.authService.RequestPasswordReset(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "if the address is registered, a reset link is on its way",
	})
}

// Reset sets a new password and signs the user out everywhere
// POST /api/v1/auth/password/reset
func (h *PasswordHandler) Reset(c *fiber.Ctx) error {
	var req service.ResetPasswordRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	if err := h.authService.ResetPassword(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "password updated, all sessions have been signed out",
	})
}
