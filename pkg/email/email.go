// Package email renders the studio's bilingual transactional mail and sends
// it through Resend.
package email

import (
	"context"
	"time"
)

type Mailer interface {
	// SendBookingRequest tells the customer the request was received and
	// carries the confirm/cancel links.
	SendBookingRequest(ctx context.Context, msg BookingMessage) error
	// SendBookingStatus announces a confirmed or cancelled booking.
	SendBookingStatus(ctx context.Context, msg BookingMessage) error
	SendStaffNotice(ctx context.Context, msg StaffNotice) error
	SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error
}

type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// BookingMessage is rendered in Locale ("he" or "en"). When should already be
// in the studio time zone.
type BookingMessage struct {
	To           string
	Name         string
	Locale       string
	PackageName  string
	When         time.Time
	Participants int
	Status       string
	ConfirmURL   string
	CancelURL    string
}

type StaffNotice struct {
	To      string
	Booking BookingMessage
	Email   string
	Phone   string
	Notes   string
}

type PasswordResetMessage struct {
	To        string
	Name      string
	Locale    string
	ResetURL  string
	ExpiresIn time.Duration
}
