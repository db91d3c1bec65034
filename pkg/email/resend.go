package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ResendMailer implements Mailer using Resend
type ResendMailer struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

func NewResendMailer(cfg Config) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend API key is required")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("from email is required")
	}

	return &ResendMailer{
		client: resend.NewClient(cfg.APIKey),
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		logger: log.With().Str("component", "mailer").Logger(),
	}, nil
}

func (m *ResendMailer) SendBookingRequest(ctx context.Context, msg BookingMessage) error {
	subject, body, err := BookingRequestEmail(msg)
	if err != nil {
		return err
	}
	return m.send(ctx, "booking_request", msg.To, subject, body)
}

func (m *ResendMailer) SendBookingStatus(ctx context.Context, msg BookingMessage) error {
	subject, body, err := BookingStatusEmail(msg)
	if err != nil {
		return err
	}
	return m.send(ctx, "booking_status", msg.To, subject, body)
}

func (m *ResendMailer) SendStaffNotice(ctx context.Context, n StaffNotice) error {
	subject, body, err := StaffNoticeEmail(n)
	if err != nil {
		return err
	}
	return m.send(ctx, "staff_notice", n.To, subject, body)
}

func (m *ResendMailer) SendPasswordReset(ctx context.Context, msg PasswordResetMessage) error {
	subject, body, err := PasswordResetEmail(msg)
	if err != nil {
		return err
	}
	return m.send(ctx, "password_reset", msg.To, subject, body)
}

func (m *ResendMailer) send(ctx context.Context, kind, to, subject, html string) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		m.logger.Error().Err(err).Str("kind", kind).Str("to", to).Msg("send email")
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	m.logger.Info().Str("kind", kind).Str("to", to).Str("id", sent.Id).Msg("email sent")
	return nil
}

// LogMailer writes messages to the log instead of sending them. It is used
// when EMAIL_ENABLED=false.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer() *LogMailer {
	return &LogMailer{logger: log.With().Str("component", "mailer").Logger()}
}

func (m *LogMailer) SendBookingRequest(_ context.Context, msg BookingMessage) error {
	m.logger.Info().Str("to", msg.To).Str("confirm_url", msg.ConfirmURL).Str("cancel_url", msg.CancelURL).Msg("booking request email (not sent)")
	return nil
}

func (m *LogMailer) SendBookingStatus(_ context.Context, msg BookingMessage) error {
	m.logger.Info().Str("to", msg.To).Str("status", msg.Status).Msg("booking status email (not sent)")
	return nil
}

func (m *LogMailer) SendStaffNotice(_ context.Context, n StaffNotice) error {
	m.logger.Info().Str("to", n.To).Str("customer", n.Email).Msg("staff notice email (not sent)")
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, msg PasswordResetMessage) error {
	m.logger.Info().Str("to", msg.To).Str("reset_url", msg.ResetURL).Msg("password reset email (not sent)")
	return nil
}
