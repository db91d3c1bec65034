package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/itaymdigi/coldtherapylanding/internal/events"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired session token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrNotOwner           = errors.New("resource belongs to another user")
	ErrForbidden          = errors.New("admin role required")
	ErrInvalidInput       = errors.New("invalid input")
)

// mailTimeout bounds background sends that outlive the request.
const mailTimeout = 15 * time.Second

type runner func(func())

func goRunner(fn func()) { go fn() }

// background runs fn detached from the request's cancellation.
func background(run runner, ctx context.Context, logger zerolog.Logger, what string, fn func(context.Context) error) {
	detached := context.WithoutCancel(ctx)
	run(func() {
		ctx, cancel := context.WithTimeout(detached, mailTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Error().Err(err).Msg(what)
		}
	})
}

// publish never fails the caller; a lost event is logged and counted.
func publish(ctx context.Context, pub events.Publisher, m *metrics.Metrics, logger zerolog.Logger, subject string, v any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, subject, v); err != nil {
		logger.Error().Err(err).Str("subject", subject).Msg("publish event")
		m.Events.WithLabelValues(subject, "error").Inc()
		return
	}
	m.Events.WithLabelValues(subject, "ok").Inc()
}

// generateSecureToken returns length random bytes as hex.
func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
