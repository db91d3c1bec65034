package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Subscription, error)
	Update(ctx context.Context, sub *domain.Subscription) error
	// ExpireEnded moves active subscriptions whose window closed before now to expired.
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
}
