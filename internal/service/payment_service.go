package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
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
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

const signaturePrefix = "sha256="

// BookingConfirmer and SubscriptionActivator are the follow-ups of a
// succeeded payment.
type BookingConfirmer interface {
	ConfirmPaid(ctx context.Context, id uuid.UUID) error
}

type SubscriptionActivator interface {
	Activate(ctx context.Context, id uuid.UUID) error
}

type PaymentService struct {
	payments      repository.PaymentRepository
	bookings      repository.BookingRepository
	subscriptions repository.SubscriptionRepository
	packages      repository.PackageRepository
	confirmer     BookingConfirmer
	activator     SubscriptionActivator
	publisher     events.Publisher
	metrics       *metrics.Metrics
	cfg           config.PaymentConfig
	logger        zerolog.Logger
	now           func() time.Time
}

type CreatePaymentRequest struct {
	BookingID      *string `json:"booking_id" validate:"omitempty,uuid"`
	SubscriptionID *string `json:"subscription_id" validate:"omitempty,uuid"`
}

// WebhookEvent is the provider callback body. Either PaymentID or
// ProviderRef identifies the payment.
type WebhookEvent struct {
	PaymentID   string `json:"payment_id"`
	ProviderRef string `json:"provider_ref"`
	Status      string `json:"status"`
}

func NewPaymentService(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	subscriptions repository.SubscriptionRepository,
	packages repository.PackageRepository,
	confirmer BookingConfirmer,
	activator SubscriptionActivator,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg config.PaymentConfig,
) *PaymentService {
	return &PaymentService{
		payments:      payments,
		bookings:      bookings,
		subscriptions: subscriptions,
		packages:      packages,
		confirmer:     confirmer,
		activator:     activator,
		publisher:     publisher,
		metrics:       m,
		cfg:           cfg,
		logger:        log.With().Str("component", "payment_service").Logger(),
		now:           time.Now,
	}
}

// Create opens a pending payment for exactly one booking or subscription
// owned by user. Admins may pay for anything.
func (s *PaymentService) Create(ctx context.Context, user *domain.User, req CreatePaymentRequest) (*domain.Payment, error) {
	hasBooking := req.BookingID != nil && *req.BookingID != ""
	hasSub := req.SubscriptionID != nil && *req.SubscriptionID != ""
	if hasBooking == hasSub {
		return nil, fmt.Errorf("%w: exactly one of booking_id or subscription_id is required", ErrInvalidInput)
	}

	now := s.now()
	payment := &domain.Payment{
		ID:        uuid.New(),
		Currency:  s.cfg.Currency,
		Provider:  s.cfg.Provider,
		Status:    domain.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if hasBooking {
		id, err := uuid.Parse(*req.BookingID)
		if err != nil {
			return nil, fmt.Errorf("%w: booking_id", ErrInvalidInput)
		}
		booking, err := s.bookings.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !user.IsAdmin() && (booking.UserID == nil || *booking.UserID != user.ID) {
			return nil, ErrNotOwner
		}
		if booking.Status == domain.BookingStatusCancelled {
			return nil, fmt.Errorf("%w: booking is cancelled", ErrInvalidInput)
		}
		pkg, err := s.packages.GetByID(ctx, booking.PackageID)
		if err != nil {
			return nil, err
		}
		payment.BookingID = &booking.ID
		payment.AmountMinor = pkg.PriceMinor * int64(booking.Participants)
		payment.Currency = pkg.Currency
	} else {
		id, err := uuid.Parse(*req.SubscriptionID)
		if err != nil {
			return nil, fmt.Errorf("%w: subscription_id", ErrInvalidInput)
		}
		sub, err := s.subscriptions.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !user.IsAdmin() && sub.UserID != user.ID {
			return nil, ErrNotOwner
		}
		pkg, err := s.packages.GetByID(ctx, sub.PackageID)
		if err != nil {
			return nil, err
		}
		payment.SubscriptionID = &sub.ID
		payment.AmountMinor = pkg.PriceMinor
		payment.Currency = pkg.Currency
	}
	if payment.Currency == "" {
		payment.Currency = s.cfg.Currency
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	s.metrics.Payments.WithLabelValues(string(payment.Status)).Inc()
	return payment, nil
}

// HandleWebhook verifies the body signature and applies the reported status.
// Replays of an already applied status are accepted. A replayed success
// fulfils again so a retry can finish a fulfilment that failed earlier.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*domain.Payment, error) {
	if !s.validSignature(body, signature) {
		return nil, ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook body", ErrInvalidInput)
	}
	next := domain.PaymentStatus(event.Status)

	payment, err := s.lookup(ctx, event)
	if err != nil {
		return nil, err
	}
	if payment.Status == next {
		if next == domain.PaymentStatusSucceeded {
			if err := s.fulfil(ctx, payment); err != nil {
				return nil, fmt.Errorf("failed to fulfil payment %s: %w", payment.ID, err)
			}
		}
		return payment, nil
	}

	if err := payment.Transition(next, s.now()); err != nil {
		return nil, err
	}
	if event.ProviderRef != "" && payment.ProviderRef == nil {
		ref := event.ProviderRef
		payment.ProviderRef = &ref
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}
	s.metrics.Payments.WithLabelValues(string(next)).Inc()

	publish(ctx, s.publisher, s.metrics, s.logger, events.SubjectPaymentUpdated, events.PaymentUpdated{
		PaymentID:      payment.ID,
		Status:         string(payment.Status),
		AmountMinor:    payment.AmountMinor,
		Currency:       payment.Currency,
		BookingID:      payment.BookingID,
		SubscriptionID: payment.SubscriptionID,
		OccurredAt:     payment.UpdatedAt,
	})

	if next == domain.PaymentStatusSucceeded {
		if err := s.fulfil(ctx, payment); err != nil {
			return nil, fmt.Errorf("failed to fulfil payment %s: %w", payment.ID, err)
		}
	}

	s.logger.Info().
		Str("payment_id", payment.ID.String()).
		Str("status", string(payment.Status)).
		Msg("payment updated")
	return payment, nil
}

func (s *PaymentService) lookup(ctx context.Context, event WebhookEvent) (*domain.Payment, error) {
	if event.PaymentID != "" {
		id, err := uuid.Parse(event.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("%w: payment_id", ErrInvalidInput)
		}
		return s.payments.GetByID(ctx, id)
	}
	if event.ProviderRef != "" {
		return s.payments.GetByProviderRef(ctx, s.cfg.Provider, event.ProviderRef)
	}
	return nil, fmt.Errorf("%w: payment_id or provider_ref is required", ErrInvalidInput)
}

func (s *PaymentService) fulfil(ctx context.Context, payment *domain.Payment) error {
	switch {
	case payment.BookingID != nil:
		return s.confirmer.ConfirmPaid(ctx, *payment.BookingID)
	case payment.SubscriptionID != nil:
		return s.activator.Activate(ctx, *payment.SubscriptionID)
	}
	return nil
}

func (s *PaymentService) validSignature(body []byte, header string) bool {
	if s.cfg.WebhookSecret == "" || !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// SignPayload returns the X-Signature header value for body.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
