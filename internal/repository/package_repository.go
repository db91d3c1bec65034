package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

type PackageRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*domain.Package, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Package, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Package, error)
	// Upsert inserts or updates by slug; pkg.ID is set to the stored row's ID.
	Upsert(ctx context.Context, pkg *domain.Package) error
}
