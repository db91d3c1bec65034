package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusPending: {SubscriptionStatusActive, SubscriptionStatusCancelled},
	SubscriptionStatusActive:  {SubscriptionStatusExpired, SubscriptionStatusCancelled},
}

func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	return slices.Contains(subscriptionTransitions[s], next)
}

type Subscription struct {
	ID        uuid.UUID          `json:"id" db:"id"`
	UserID    uuid.UUID          `json:"user_id" db:"user_id"`
	PackageID uuid.UUID          `json:"package_id" db:"package_id"`
	Status    SubscriptionStatus `json:"status" db:"status"`
	StartsAt  *time.Time         `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt    *time.Time         `json:"ends_at,omitempty" db:"ends_at"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" db:"updated_at"`
}

func (s *Subscription) Transition(next SubscriptionStatus, now time.Time) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("subscription %s: %s -> %s: %w", s.ID, s.Status, next, ErrInvalidTransition)
	}
	s.Status = next
	s.UpdatedAt = now
	return nil
}

// Activate starts the membership window at now for the given number of days.
func (s *Subscription) Activate(now time.Time, days int) error {
	if err := s.Transition(SubscriptionStatusActive, now); err != nil {
		return err
	}
	start := now
	end := now.AddDate(0, 0, days)
	s.StartsAt = &start
	s.EndsAt = &end
	return nil
}
