package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itaymdigi/coldtherapylanding/internal/handler/middleware"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

const signatureHeader = "X-Signature"

type PaymentHandler struct {
	paymentService *service.PaymentService
	validator      *validator.Validator
}

func NewPaymentHandler(paymentService *service.PaymentService, validator *validator.Validator) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validator:      validator,
	}
}

// Create opens a pending payment for a booking or subscription
// POST /api/v1/payments
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var req service.CreatePaymentRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	payment, err := h.paymentService.Create(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// Webhook receives provider status callbacks signed with the shared secret
// POST /api/v1/payments/webhook
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	// the signature covers the exact bytes received
	body := append([]byte(nil), c.Body()...)

	payment, err := h.paymentService.HandleWebhook(c.UserContext(), body, c.Get(signatureHeader))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}
