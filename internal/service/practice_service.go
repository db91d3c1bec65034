package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
	"github.com/itaymdigi/coldtherapylanding/internal/stats"
)

// TokenValidator resolves an opaque session token. *AuthService implements it.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.SessionToken, error)
}

// maxSessionDuration is two hours; anything longer is a timer left running.
const maxSessionDuration = 2 * 60 * 60

type PracticeService struct {
	tokens   TokenValidator
	practice repository.PracticeRepository
	users    repository.UserRepository
	metrics  *metrics.Metrics
	loc      *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

type AddSessionRequest struct {
	Duration    int          `json:"duration" validate:"required,gt=0,lte=7200"`
	Temperature *float64     `json:"temperature" validate:"omitempty,gte=-5,lte=30"`
	Notes       *string      `json:"notes" validate:"omitempty,max=1000"`
	Mood        *domain.Mood `json:"mood" validate:"omitempty,oneof=calm energized focused tired stressed"`
	PauseCount  int          `json:"pause_count" validate:"gte=0,lte=100"`
	CompletedAt *time.Time   `json:"completed_at"`
}

func NewPracticeService(
	tokens TokenValidator,
	practice repository.PracticeRepository,
	users repository.UserRepository,
	m *metrics.Metrics,
	loc *time.Location,
) *PracticeService {
	return &PracticeService{
		tokens:   tokens,
		practice: practice,
		users:    users,
		metrics:  m,
		loc:      loc,
		logger:   log.With().Str("component", "practice_service").Logger(),
		now:      time.Now,
	}
}

// AddSession records a completed session for the token's owner. The
// personal-best flag is decided by the repository under the owner's lock.
func (s *PracticeService) AddSession(ctx context.Context, token string, req AddSessionRequest) (*domain.PracticeSession, error) {
	record, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if req.Duration <= 0 || req.Duration > maxSessionDuration {
		return nil, fmt.Errorf("%w: duration must be between 1 and %d seconds", ErrInvalidInput, maxSessionDuration)
	}
	if req.PauseCount < 0 {
		return nil, fmt.Errorf("%w: pause_count cannot be negative", ErrInvalidInput)
	}

	now := s.now()
	completedAt := now
	if req.CompletedAt != nil {
		if req.CompletedAt.After(now) {
			return nil, fmt.Errorf("%w: completed_at is in the future", ErrInvalidInput)
		}
		completedAt = *req.CompletedAt
	}

	session := &domain.PracticeSession{
		ID:          uuid.New(),
		UserID:      record.UserID,
		Duration:    req.Duration,
		Temperature: req.Temperature,
		Notes:       req.Notes,
		Mood:        req.Mood,
		PauseCount:  req.PauseCount,
		CompletedAt: completedAt,
	}
	if err := s.practice.Record(ctx, session); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.metrics.PracticeSessions.WithLabelValues("add").Inc()
	s.logger.Debug().
		Str("user_id", record.UserID.String()).
		Int("duration", session.Duration).
		Bool("personal_best", session.PersonalBest).
		Msg("practice session recorded")
	return session, nil
}

// DeleteSession removes one of the caller's sessions and decrements the
// owner's counters.
func (s *PracticeService) DeleteSession(ctx context.Context, token string, id uuid.UUID) error {
	record, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	session, err := s.practice.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session.UserID != record.UserID {
		return ErrNotOwner
	}

	if err := s.practice.Remove(ctx, session); err != nil {
		return err
	}
	s.metrics.PracticeSessions.WithLabelValues("delete").Inc()
	return nil
}

// ListSessions returns the caller's sessions newest first.
func (s *PracticeService) ListSessions(ctx context.Context, token string, limit int) ([]*domain.PracticeSession, error) {
	record, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.practice.ListByUser(ctx, record.UserID, limit)
}

// GetStats returns nil with no error when the token is missing, unknown or
// expired, so anonymous visitors get an empty dashboard instead of a failure.
func (s *PracticeService) GetStats(ctx context.Context, token string) (*stats.Summary, error) {
	record, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, nil
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	sessions, err := s.practice.ListByUser(ctx, user.ID, 0)
	if err != nil {
		return nil, err
	}

	return stats.Summarize(user, sessions, s.now(), s.loc), nil
}
