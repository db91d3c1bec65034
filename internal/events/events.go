// Package events defines the studio's domain events and their transports.
package events

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	SubjectBookingCreated       = "studio.booking.created"
	SubjectBookingStatusChanged = "studio.booking.status_changed"
	SubjectPaymentUpdated       = "studio.payment.updated"
)

// StreamSubjects is the subject filter of the JetStream stream.
var StreamSubjects = []string{"studio.>"}

type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, subject, durable string, fn func(ctx context.Context, data []byte) error) (io.Closer, error)
}

// Bus is satisfied by *bus.Bus and *Local.
type Bus interface {
	Publisher
	Subscriber
}

type BookingCreated struct {
	BookingID    uuid.UUID `json:"booking_id"`
	PackageName  string    `json:"package_name"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Locale       string    `json:"locale"`
	Participants int       `json:"participants"`
	PreferredAt  time.Time `json:"preferred_at"`
	Notes        string    `json:"notes,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type BookingStatusChanged struct {
	BookingID    uuid.UUID `json:"booking_id"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	PackageName  string    `json:"package_name"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Locale       string    `json:"locale"`
	Participants int       `json:"participants"`
	PreferredAt  time.Time `json:"preferred_at"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type PaymentUpdated struct {
	PaymentID      uuid.UUID  `json:"payment_id"`
	Status         string     `json:"status"`
	AmountMinor    int64      `json:"amount_minor"`
	Currency       string     `json:"currency"`
	BookingID      *uuid.UUID `json:"booking_id,omitempty"`
	SubscriptionID *uuid.UUID `json:"subscription_id,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
