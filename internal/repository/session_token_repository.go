package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

type SessionTokenRepository interface {
	Create(ctx context.Context, token *domain.SessionToken) error
	// GetByHash returns the token even when expired; callers decide validity.
	GetByHash(ctx context.Context, tokenHash string) (*domain.SessionToken, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
