package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/handler/middleware"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

type BookingHandler struct {
	bookingService *service.BookingService
	validator      *validator.Validator
}

func NewBookingHandler(bookingService *service.BookingService, validator *validator.Validator) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		validator:      validator,
	}
}

// Create stores a booking request from the landing page form. Signed-in
// members get the booking linked to their account.
// POST /api/v1/bookings
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var req service.CreateBookingRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	var userID *uuid.UUID
	if user := middleware.CurrentUser(c); user != nil {
		userID = &user.ID
	}

	booking, err := h.bookingService.CreateBooking(c.UserContext(), req, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

// Action applies a confirm or cancel link from the booking email
// GET /api/v1/bookings/action?token=
func (h *BookingHandler) Action(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return respondError(c, badRequest{errors.New("token is required")})
	}

	booking, err := h.bookingService.ApplyAction(c.UserContext(), token)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"booking_id": booking.ID,
		"status":     booking.Status,
	})
}

// List is the admin calendar view
// GET /api/v1/admin/bookings?status=&from=&to=&limit=&offset=
func (h *BookingHandler) List(c *fiber.Ctx) error {
	req := service.ListBookingsRequest{
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	var err error
	if req.From, err = timeQuery(c, "from"); err != nil {
		return respondError(c, err)
	}
	if req.To, err = timeQuery(c, "to"); err != nil {
		return respondError(c, err)
	}
	if err := h.validator.Validate(req); err != nil {
		return respondError(c, badRequest{err})
	}

	page, err := h.bookingService.List(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// UpdateStatus moves a booking along its transition table
// PATCH /api/v1/admin/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req service.UpdateBookingStatusRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	booking, err := h.bookingService.UpdateStatus(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}

// timeQuery accepts RFC 3339 timestamps or plain dates.
func timeQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, badRequest{errors.New(name + " must be an RFC 3339 timestamp or YYYY-MM-DD date")}
}
