package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itaymdigi/coldtherapylanding/internal/handler/middleware"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

const defaultSessionPage = 50

type PracticeHandler struct {
	practiceService *service.PracticeService
	validator       *validator.Validator
}

func NewPracticeHandler(practiceService *service.PracticeService, validator *validator.Validator) *PracticeHandler {
	return &PracticeHandler{
		practiceService: practiceService,
		validator:       validator,
	}
}

// GetStats answers 200 with a null body when the caller is anonymous
// GET /api/v1/practice/stats
func (h *PracticeHandler) GetStats(c *fiber.Ctx) error {
	summary, err := h.practiceService.GetStats(c.UserContext(), middleware.Token(c))
	if err != nil {
		return respondError(c, err)
	}
	if summary == nil {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString("null")
	}
	return c.JSON(summary)
}

// ListSessions returns the caller's sessions newest first
// GET /api/v1/practice/sessions?limit=
func (h *PracticeHandler) ListSessions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultSessionPage)
	if limit <= 0 || limit > 500 {
		limit = defaultSessionPage
	}

	sessions, err := h.practiceService.ListSessions(c.UserContext(), middleware.Token(c), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"sessions": sessions})
}

// AddSession records a finished plunge
// POST /api/v1/practice/sessions
func (h *PracticeHandler) AddSession(c *fiber.Ctx) error {
	var req service.AddSessionRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	session, err := h.practiceService.AddSession(c.UserContext(), middleware.Token(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// DeleteSession removes one of the caller's sessions
// DELETE /api/v1/practice/sessions/:id
func (h *PracticeHandler) DeleteSession(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.practiceService.DeleteSession(c.UserContext(), middleware.Token(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
