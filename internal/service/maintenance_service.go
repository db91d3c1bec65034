package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

type MaintenanceService struct {
	subscriptions repository.SubscriptionRepository
	tokens        repository.SessionTokenRepository
	users         repository.UserRepository
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	now           func() time.Time
}

type SweepResult struct {
	ExpiredSubscriptions int64 `json:"expired_subscriptions"`
	DeletedTokens        int64 `json:"deleted_tokens"`
}

func NewMaintenanceService(
	subscriptions repository.SubscriptionRepository,
	tokens repository.SessionTokenRepository,
	users repository.UserRepository,
	m *metrics.Metrics,
) *MaintenanceService {
	return &MaintenanceService{
		subscriptions: subscriptions,
		tokens:        tokens,
		users:         users,
		metrics:       m,
		logger:        log.With().Str("component", "maintenance").Logger(),
		now:           time.Now,
	}
}

// Sweep expires ended subscriptions and drops expired session tokens.
func (s *MaintenanceService) Sweep(ctx context.Context) (*SweepResult, error) {
	now := s.now()

	expired, err := s.subscriptions.ExpireEnded(ctx, now)
	if err != nil {
		return nil, err
	}
	deleted, err := s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	s.metrics.SweepRemoved.WithLabelValues("subscriptions").Add(float64(expired))
	s.metrics.SweepRemoved.WithLabelValues("tokens").Add(float64(deleted))

	result := &SweepResult{ExpiredSubscriptions: expired, DeletedTokens: deleted}
	if expired > 0 || deleted > 0 {
		s.logger.Info().
			Int64("expired_subscriptions", expired).
			Int64("deleted_tokens", deleted).
			Msg("sweep finished")
	}
	return result, nil
}

// Run sweeps every interval until ctx is done.
func (s *MaintenanceService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

func (s *MaintenanceService) RepairCounters(ctx context.Context) (int64, error) {
	n, err := s.users.RepairCounters(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("users", n).Msg("counters repaired")
	return n, nil
}
