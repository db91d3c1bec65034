package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/events"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
	"github.com/itaymdigi/coldtherapylanding/pkg/actionlink"
	"github.com/itaymdigi/coldtherapylanding/pkg/email"
)

var (
	ErrPackageUnavailable = errors.New("package is not available")
	ErrLinkUsed           = errors.New("action link was already used")
)

// LinkGuard lets each action link be applied once. Implemented by the Redis
// guard in pkg/blacklist and the in-memory guard.
type LinkGuard interface {
	Consume(ctx context.Context, id string, expiresAt time.Time) (bool, error)
}

type BookingService struct {
	bookings  repository.BookingRepository
	packages  repository.PackageRepository
	links     *actionlink.Signer
	guard     LinkGuard
	mailer    email.Mailer
	publisher events.Publisher
	metrics   *metrics.Metrics
	baseURL   string
	loc       *time.Location
	logger    zerolog.Logger
	now       func() time.Time
	async     runner
}

type CreateBookingRequest struct {
	PackageID    string    `json:"package_id" validate:"required,uuid"`
	FullName     string    `json:"full_name" validate:"required,min=2,max=120"`
	Email        string    `json:"email" validate:"required,email,max=254"`
	Phone        string    `json:"phone" validate:"required,phone"`
	Locale       string    `json:"locale" validate:"omitempty,locale"`
	Participants int       `json:"participants" validate:"required,gte=1,lte=10"`
	PreferredAt  time.Time `json:"preferred_at" validate:"required"`
	Notes        string    `json:"notes" validate:"max=1000"`
}

type ListBookingsRequest struct {
	Status string     `query:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	From   *time.Time `query:"from"`
	To     *time.Time `query:"to"`
	Limit  int        `query:"limit" validate:"gte=0,lte=200"`
	Offset int        `query:"offset" validate:"gte=0"`
}

type BookingPage struct {
	Items []*domain.Booking `json:"items"`
	Total int               `json:"total"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

func NewBookingService(
	bookings repository.BookingRepository,
	packages repository.PackageRepository,
	links *actionlink.Signer,
	guard LinkGuard,
	mailer email.Mailer,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		packages:  packages,
		links:     links,
		guard:     guard,
		mailer:    mailer,
		publisher: publisher,
		metrics:   m,
		baseURL:   strings.TrimRight(cfg.Server.PublicBaseURL, "/"),
		loc:       cfg.Location(),
		logger:    log.With().Str("component", "booking_service").Logger(),
		now:       time.Now,
		async:     goRunner,
	}
}

// CreateBooking stores a pending booking and mails the customer signed
// confirm and cancel links.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest, userID *uuid.UUID) (*domain.Booking, error) {
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%w: package_id", ErrInvalidInput)
	}
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPackageUnavailable
		}
		return nil, err
	}
	if !pkg.Active {
		return nil, ErrPackageUnavailable
	}

	now := s.now()
	if !req.PreferredAt.After(now) {
		return nil, fmt.Errorf("%w: preferred_at must be in the future", ErrInvalidInput)
	}

	locale := domain.Locale(req.Locale)
	if locale == "" {
		locale = domain.LocaleHebrew
	}
	var notes *string
	if n := strings.TrimSpace(req.Notes); n != "" {
		notes = &n
	}

	booking := &domain.Booking{
		ID:           uuid.New(),
		UserID:       userID,
		PackageID:    pkg.ID,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        normalizeEmail(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Locale:       locale,
		Participants: req.Participants,
		PreferredAt:  req.PreferredAt.UTC(),
		Notes:        notes,
		Status:       domain.BookingStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	s.metrics.Bookings.WithLabelValues(string(booking.Status)).Inc()

	confirmURL, err := s.actionURL(booking.ID, actionlink.ActionConfirm)
	if err != nil {
		return nil, err
	}
	cancelURL, err := s.actionURL(booking.ID, actionlink.ActionCancel)
	if err != nil {
		return nil, err
	}

	msg := email.BookingMessage{
		To:           booking.Email,
		Name:         booking.FullName,
		Locale:       string(booking.Locale),
		PackageName:  pkg.Name(booking.Locale),
		When:         booking.PreferredAt.In(s.loc),
		Participants: booking.Participants,
		Status:       string(booking.Status),
		ConfirmURL:   confirmURL,
		CancelURL:    cancelURL,
	}
	background(s.async, ctx, s.logger, "send booking request email", func(ctx context.Context) error {
		return s.mailer.SendBookingRequest(ctx, msg)
	})

	publish(ctx, s.publisher, s.metrics, s.logger, events.SubjectBookingCreated, events.BookingCreated{
		BookingID:    booking.ID,
		PackageName:  pkg.Name(domain.LocaleHebrew),
		FullName:     booking.FullName,
		Email:        booking.Email,
		Phone:        booking.Phone,
		Locale:       string(booking.Locale),
		Participants: booking.Participants,
		PreferredAt:  booking.PreferredAt,
		Notes:        req.Notes,
		OccurredAt:   now,
	})

	s.logger.Info().Str("booking_id", booking.ID.String()).Str("package", pkg.Slug).Msg("booking created")
	return booking, nil
}

func (s *BookingService) actionURL(bookingID uuid.UUID, action actionlink.Action) (string, error) {
	token, _, err := s.links.Sign(bookingID, action)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/api/v1/bookings/action?token=" + url.QueryEscape(token), nil
}

// ApplyAction verifies a mailed link and applies its transition. A link is
// only burned once the transition is known to be allowed.
func (s *BookingService) ApplyAction(ctx context.Context, token string) (*domain.Booking, error) {
	claims, err := s.links.Verify(token)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, claims.BookingID)
	if err != nil {
		return nil, err
	}

	next := domain.BookingStatusConfirmed
	if claims.Action == actionlink.ActionCancel {
		next = domain.BookingStatusCancelled
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("booking %s: %s -> %s: %w", booking.ID, booking.Status, next, domain.ErrInvalidTransition)
	}

	fresh, err := s.guard.Consume(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return nil, ErrLinkUsed
	}

	if err := s.changeStatus(ctx, booking, next); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, req ListBookingsRequest) (*BookingPage, error) {
	filter := domain.BookingFilter{
		Status: domain.BookingStatus(req.Status),
		From:   req.From,
		To:     req.To,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	items, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &BookingPage{Items: items, Total: total}, nil
}

// UpdateStatus is the admin transition, checked against the same table as
// the mailed links.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateBookingStatusRequest) (*domain.Booking, error) {
	next := domain.BookingStatus(req.Status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.changeStatus(ctx, booking, next); err != nil {
		return nil, err
	}
	return booking, nil
}

// ConfirmPaid confirms a pending booking after payment. Already confirmed or
// completed bookings are left alone.
func (s *BookingService) ConfirmPaid(ctx context.Context, id uuid.UUID) error {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil
	}
	return s.changeStatus(ctx, booking, domain.BookingStatusConfirmed)
}

func (s *BookingService) changeStatus(ctx context.Context, booking *domain.Booking, next domain.BookingStatus) error {
	from := booking.Status
	now := s.now()
	if err := booking.Transition(next, now); err != nil {
		return err
	}
	if err := s.bookings.UpdateStatus(ctx, booking); err != nil {
		return err
	}
	s.metrics.Bookings.WithLabelValues(string(next)).Inc()

	packageName := ""
	if pkg, err := s.packages.GetByID(ctx, booking.PackageID); err == nil {
		packageName = pkg.Name(booking.Locale)
	}
	publish(ctx, s.publisher, s.metrics, s.logger, events.SubjectBookingStatusChanged, events.BookingStatusChanged{
		BookingID:    booking.ID,
		From:         string(from),
		To:           string(next),
		PackageName:  packageName,
		FullName:     booking.FullName,
		Email:        booking.Email,
		Locale:       string(booking.Locale),
		Participants: booking.Participants,
		PreferredAt:  booking.PreferredAt,
		OccurredAt:   now,
	})

	s.logger.Info().
		Str("booking_id", booking.ID.String()).
		Str("from", string(from)).
		Str("to", string(next)).
		Msg("booking status changed")
	return nil
}
