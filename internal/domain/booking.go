package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	return slices.Contains(bookingTransitions[s], next)
}

type Booking struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	UserID       *uuid.UUID    `json:"user_id,omitempty" db:"user_id"`
	PackageID    uuid.UUID     `json:"package_id" db:"package_id"`
	FullName     string        `json:"full_name" db:"full_name"`
	Email        string        `json:"email" db:"email"`
	Phone        string        `json:"phone" db:"phone"`
	Locale       Locale        `json:"locale" db:"locale"`
	Participants int           `json:"participants" db:"participants"`
	PreferredAt  time.Time     `json:"preferred_at" db:"preferred_at"`
	Notes        *string       `json:"notes,omitempty" db:"notes"`
	Status       BookingStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Transition moves the booking to next if the transition table allows it.
func (b *Booking) Transition(next BookingStatus, now time.Time) error {
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("booking %s: %s -> %s: %w", b.ID, b.Status, next, ErrInvalidTransition)
	}
	b.Status = next
	b.UpdatedAt = now
	return nil
}

// BookingFilter narrows admin booking listings. Zero values mean "any".
type BookingFilter struct {
	Status BookingStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
