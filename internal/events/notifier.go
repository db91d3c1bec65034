package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itaymdigi/coldtherapylanding/pkg/email"
)

// Notifier turns booking events into staff and customer emails.
type Notifier struct {
	mailer     email.Mailer
	staffEmail string
	loc        *time.Location
	logger     zerolog.Logger
}

func NewNotifier(mailer email.Mailer, staffEmail string, loc *time.Location) *Notifier {
	return &Notifier{
		mailer:     mailer,
		staffEmail: staffEmail,
		loc:        loc,
		logger:     log.With().Str("component", "notifier").Logger(),
	}
}

// Start subscribes the notifier. Subscriptions end when ctx is cancelled or
// the returned closers are closed.
func (n *Notifier) Start(ctx context.Context, sub Subscriber) ([]io.Closer, error) {
	routes := []struct {
		subject string
		durable string
		fn      func(context.Context, []byte) error
	}{
		{subject: SubjectBookingCreated, durable: "notifier-booking-created", fn: n.HandleBookingCreated},
		{subject: SubjectBookingStatusChanged, durable: "notifier-booking-status", fn: n.HandleBookingStatusChanged},
	}

	closers := make([]io.Closer, 0, len(routes))
	for _, r := range routes {
		c, err := sub.Subscribe(ctx, r.subject, r.durable, r.fn)
		if err != nil {
			for _, opened := range closers {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("failed to subscribe notifier to %s: %w", r.subject, err)
		}
		closers = append(closers, c)
	}
	return closers, nil
}

func (n *Notifier) HandleBookingCreated(ctx context.Context, data []byte) error {
	if n.staffEmail == "" {
		return nil
	}

	var ev BookingCreated
	if err := json.Unmarshal(data, &ev); err != nil {
		// a malformed payload will never succeed, so it is dropped
		n.logger.Error().Err(err).Msg("decode booking created event")
		return nil
	}

	return n.mailer.SendStaffNotice(ctx, email.StaffNotice{
		To: n.staffEmail,
		Booking: email.BookingMessage{
			Name:         ev.FullName,
			Locale:       ev.Locale,
			PackageName:  ev.PackageName,
			When:         ev.PreferredAt.In(n.loc),
			Participants: ev.Participants,
			Status:       "pending",
		},
		Email: ev.Email,
		Phone: ev.Phone,
		Notes: ev.Notes,
	})
}

func (n *Notifier) HandleBookingStatusChanged(ctx context.Context, data []byte) error {
	var ev BookingStatusChanged
	if err := json.Unmarshal(data, &ev); err != nil {
		n.logger.Error().Err(err).Msg("decode booking status event")
		return nil
	}

	switch ev.To {
	case "confirmed", "cancelled":
	default:
		return nil
	}

	return n.mailer.SendBookingStatus(ctx, email.BookingMessage{
		To:           ev.Email,
		Name:         ev.FullName,
		Locale:       ev.Locale,
		PackageName:  ev.PackageName,
		When:         ev.PreferredAt.In(n.loc),
		Participants: ev.Participants,
		Status:       ev.To,
	})
}
