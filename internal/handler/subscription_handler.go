package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itaymdigi/coldtherapylanding/internal/handler/middleware"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
	validator           *validator.Validator
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService, validator *validator.Validator) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		validator:           validator,
	}
}

// Create opens a pending membership
// POST /api/v1/subscriptions
func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	var req service.CreateSubscriptionRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	sub, err := h.subscriptionService.Create(c.UserContext(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// ListMine GET /api/v1/subscriptions
func (h *SubscriptionHandler) ListMine(c *fiber.Ctx) error {
	subs, err := h.subscriptionService.ListMine(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"subscriptions": subs})
}

// Cancel DELETE /api/v1/subscriptions/:id
func (h *SubscriptionHandler) Cancel(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	sub, err := h.subscriptionService.Cancel(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sub)
}
