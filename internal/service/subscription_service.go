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
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

var ErrNotMembership = errors.New("package is not an active membership")

type SubscriptionService struct {
	subscriptions repository.SubscriptionRepository
	packages      repository.PackageRepository
	logger        zerolog.Logger
	now           func() time.Time
}

type CreateSubscriptionRequest struct {
	PackageID string `json:"package_id" validate:"required,uuid"`
}

func NewSubscriptionService(subscriptions repository.SubscriptionRepository, packages repository.PackageRepository) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		packages:      packages,
		logger:        log.With().Str("component", "subscription_service").Logger(),
		now:           time.Now,
	}
}

// Create opens a pending subscription. It becomes active once paid.
func (s *SubscriptionService) Create(ctx context.Context, userID uuid.UUID, req CreateSubscriptionRequest) (*domain.Subscription, error) {
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		return nil, fmt.Errorf("%w: package_id", ErrInvalidInput)
	}
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotMembership
		}
		return nil, err
	}
	if !pkg.Active || pkg.Kind != domain.PackageKindMembership {
		return nil, ErrNotMembership
	}

	now := s.now()
	sub := &domain.Subscription{
		ID:        uuid.New(),
		UserID:    userID,
		PackageID: pkg.ID,
		Status:    domain.SubscriptionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info().Str("subscription_id", sub.ID.String()).Str("user_id", userID.String()).Msg("subscription created")
	return sub, nil
}

func (s *SubscriptionService) ListMine(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	return s.subscriptions.ListByUser(ctx, userID)
}

func (s *SubscriptionService) Cancel(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Subscription, error) {
	sub, err := s.subscriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.UserID != user.ID && !user.IsAdmin() {
		return nil, ErrNotOwner
	}
	if err := sub.Transition(domain.SubscriptionStatusCancelled, s.now()); err != nil {
		return nil, err
	}
	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Activate starts the membership window after a successful payment. An
// already active subscription is left as is.
func (s *SubscriptionService) Activate(ctx context.Context, id uuid.UUID) error {
	sub, err := s.subscriptions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status == domain.SubscriptionStatusActive {
		return nil
	}
	pkg, err := s.packages.GetByID(ctx, sub.PackageID)
	if err != nil {
		return err
	}
	if err := sub.Activate(s.now(), pkg.DurationDays); err != nil {
		return err
	}
	if err := s.subscriptions.Update(ctx, sub); err != nil {
		return err
	}

	s.logger.Info().
		Str("subscription_id", sub.ID.String()).
		Time("ends_at", *sub.EndsAt).
		Msg("subscription activated")
	return nil
}

func (s *SubscriptionService) ExpireEnded(ctx context.Context) (int64, error) {
	return s.subscriptions.ExpireEnded(ctx, s.now())
}
