package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusSucceeded, PaymentStatusFailed},
	PaymentStatusSucceeded: {PaymentStatusRefunded},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return slices.Contains(paymentTransitions[s], next)
}

// Payment references exactly one of BookingID or SubscriptionID.
// Amounts are in minor units (agorot for ILS).
type Payment struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	BookingID      *uuid.UUID    `json:"booking_id,omitempty" db:"booking_id"`
	SubscriptionID *uuid.UUID    `json:"subscription_id,omitempty" db:"subscription_id"`
	AmountMinor    int64         `json:"amount_minor" db:"amount_minor"`
	Currency       string        `json:"currency" db:"currency"`
	Provider       string        `json:"provider" db:"provider"`
	ProviderRef    *string       `json:"provider_ref,omitempty" db:"provider_ref"`
	Status         PaymentStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

func (p *Payment) Transition(next PaymentStatus, now time.Time) error {
	if !p.Status.CanTransitionTo(next) {
		return fmt.Errorf("payment %s: %s -> %s: %w", p.ID, p.Status, next, ErrInvalidTransition)
	}
	p.Status = next
	p.UpdatedAt = now
	return nil
}
