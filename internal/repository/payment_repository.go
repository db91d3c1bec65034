package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByProviderRef(ctx context.Context, provider, ref string) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
}
