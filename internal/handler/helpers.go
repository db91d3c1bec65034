package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/actionlink"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

// badRequest wraps a body or parameter the handler could not accept.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

// statusFor maps service and repository errors to HTTP status codes.
func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrNotMembership),
		errors.Is(err, service.ErrPackageUnavailable):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, actionlink.ErrInvalidLink):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrAccountLocked):
		return fiber.StatusForbidden
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrLinkUsed),
		errors.Is(err, repository.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrStorageDisabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// respondError writes {"error": msg}. Internal errors are logged and hidden
// from the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("component", "http").Str("path", c.Path()).Msg("request failed")
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-level fallback for errors returned by handlers and
// fiber itself (unknown routes, bad methods, oversized bodies).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return respondError(c, err)
}

// parseBody decodes the JSON body into req and runs the struct validator.
func parseBody(c *fiber.Ctx, v *validator.Validator, req any) error {
	if err := c.BodyParser(req); err != nil {
		return badRequest{errors.New("invalid request body")}
	}
	if err := v.Validate(req); err != nil {
		return badRequest{err}
	}
	return nil
}

func idParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, badRequest{errors.New(name + " must be a valid UUID")}
	}
	return id, nil
}

// clientInfo records the caller's device for the session token. Behind a
// proxy the first X-Forwarded-For hop is the client.
func clientInfo(c *fiber.Ctx) service.ClientInfo {
	ip := c.IP()
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		ip = strings.TrimSpace(first)
	}
	return service.ClientInfo{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		IPAddress: ip,
	}
}
