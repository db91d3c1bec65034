package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		ok   bool
	}{
		{name: "pending to confirmed", from: BookingStatusPending, to: BookingStatusConfirmed, ok: true},
		{name: "pending to cancelled", from: BookingStatusPending, to: BookingStatusCancelled, ok: true},
		{name: "pending to completed", from: BookingStatusPending, to: BookingStatusCompleted},
		{name: "confirmed to completed", from: BookingStatusConfirmed, to: BookingStatusCompleted, ok: true},
		{name: "confirmed to cancelled", from: BookingStatusConfirmed, to: BookingStatusCancelled, ok: true},
		{name: "cancelled is terminal", from: BookingStatusCancelled, to: BookingStatusConfirmed},
		{name: "completed is terminal", from: BookingStatusCompleted, to: BookingStatusCancelled},
		{name: "no self transition", from: BookingStatusPending, to: BookingStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{ID: uuid.New(), Status: tt.from}
			now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

			err := b.Transition(tt.to, now)
			if tt.ok {
				if err != nil {
					t.Fatalf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
				}
				if b.Status != tt.to || !b.UpdatedAt.Equal(now) {
					t.Fatalf("booking = %+v, want status %s updated at %v", b, tt.to, now)
				}
				return
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("Transition(%s -> %s) error = %v, want ErrInvalidTransition", tt.from, tt.to, err)
			}
			if b.Status != tt.from {
				t.Fatalf("status changed to %s on rejected transition", b.Status)
			}
		})
	}
}

func TestSubscriptionActivate(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := &Subscription{ID: uuid.New(), Status: SubscriptionStatusPending}

	if err := s.Activate(now, 30); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if s.Status != SubscriptionStatusActive {
		t.Fatalf("status = %s, want active", s.Status)
	}
	if want := now.AddDate(0, 0, 30); !s.EndsAt.Equal(want) {
		t.Fatalf("EndsAt = %v, want %v", s.EndsAt, want)
	}

	if err := s.Activate(now, 30); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Activate() error = %v, want ErrInvalidTransition", err)
	}
}

func TestPaymentTransitions(t *testing.T) {
	p := &Payment{ID: uuid.New(), Status: PaymentStatusPending}
	now := time.Now()

	if err := p.Transition(PaymentStatusRefunded, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending -> refunded error = %v, want ErrInvalidTransition", err)
	}
	if err := p.Transition(PaymentStatusSucceeded, now); err != nil {
		t.Fatalf("pending -> succeeded error = %v", err)
	}
	if err := p.Transition(PaymentStatusRefunded, now); err != nil {
		t.Fatalf("succeeded -> refunded error = %v", err)
	}
}

func TestSessionTokenExpired(t *testing.T) {
	exp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := &SessionToken{ExpiresAt: exp}

	if tok.Expired(exp.Add(-time.Second)) {
		t.Fatalf("token expired one second before expiry")
	}
	if !tok.Expired(exp) {
		t.Fatalf("token not expired at expiry instant")
	}
}
