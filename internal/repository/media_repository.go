package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

type MediaRepository interface {
	Create(ctx context.Context, item *domain.MediaItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MediaItem, error)
	List(ctx context.Context, publishedOnly bool) ([]*domain.MediaItem, error)
	Update(ctx context.Context, item *domain.MediaItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
