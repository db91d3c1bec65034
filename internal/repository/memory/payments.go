package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

type paymentRepository struct {
	s *Store
}

func (r *paymentRepository) Create(_ context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.refTaken(payment) {
		return fmt.Errorf("payment reference: %w", repository.ErrDuplicate)
	}
	r.s.payments[payment.ID] = *payment
	return nil
}

func (r *paymentRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment not found: %w", repository.ErrNotFound)
	}
	return &p, nil
}

func (r *paymentRepository) GetByProviderRef(_ context.Context, provider, ref string) (*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.payments {
		if p.Provider == provider && p.ProviderRef != nil && *p.ProviderRef == ref {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("payment not found: %w", repository.ErrNotFound)
}

func (r *paymentRepository) Update(_ context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.payments[payment.ID]
	if !ok {
		return fmt.Errorf("payment not found: %w", repository.ErrNotFound)
	}
	if r.refTaken(payment) {
		return fmt.Errorf("payment reference: %w", repository.ErrDuplicate)
	}
	stored.Status = payment.Status
	stored.ProviderRef = payment.ProviderRef
	stored.UpdatedAt = payment.UpdatedAt
	r.s.payments[payment.ID] = stored
	return nil
}

// refTaken mirrors the (provider, provider_ref) unique index. Caller holds the lock.
func (r *paymentRepository) refTaken(payment *domain.Payment) bool {
	if payment.ProviderRef == nil {
		return false
	}
	for id, p := range r.s.payments {
		if id != payment.ID && p.Provider == payment.Provider &&
			p.ProviderRef != nil && *p.ProviderRef == *payment.ProviderRef {
			return true
		}
	}
	return false
}
