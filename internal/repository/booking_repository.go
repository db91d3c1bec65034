package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, booking *domain.Booking) error
	// List returns the page ordered by preferred_at and the total match count.
	List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error)
}
