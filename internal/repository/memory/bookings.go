package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

type bookingRepository struct {
	s *Store
}

func (r *bookingRepository) Create(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *bookingRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking not found: %w", repository.ErrNotFound)
	}
	return &b, nil
}

func (r *bookingRepository) UpdateStatus(_ context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[booking.ID]
	if !ok {
		return fmt.Errorf("booking not found: %w", repository.ErrNotFound)
	}
	b.Status = booking.Status
	b.UpdatedAt = booking.UpdatedAt
	r.s.bookings[booking.ID] = b
	return nil
}

func (r *bookingRepository) List(_ context.Context, filter domain.BookingFilter) ([]*domain.Booking, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []*domain.Booking{}
	for _, b := range r.s.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.From != nil && b.PreferredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !b.PreferredAt.Before(*filter.To) {
			continue
		}
		matched = append(matched, &b)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PreferredAt.Before(matched[j].PreferredAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	start := min(filter.Offset, total)
	end := min(start+limit, total)
	return matched[start:end], total, nil
}

type subscriptionRepository struct {
	s *Store
}

func (r *subscriptionRepository) Create(_ context.Context, sub *domain.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.subscriptions[sub.ID] = *sub
	return nil
}

func (r *subscriptionRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sub, ok := r.s.subscriptions[id]
	if !ok {
		return nil, fmt.Errorf("subscription not found: %w", repository.ErrNotFound)
	}
	return &sub, nil
}

func (r *subscriptionRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	subs := []*domain.Subscription{}
	for _, sub := range r.s.subscriptions {
		if sub.UserID == userID {
			subs = append(subs, &sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
	return subs, nil
}

func (r *subscriptionRepository) Update(_ context.Context, sub *domain.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subscriptions[sub.ID]; !ok {
		return fmt.Errorf("subscription not found: %w", repository.ErrNotFound)
	}
	r.s.subscriptions[sub.ID] = *sub
	return nil
}

func (r *subscriptionRepository) ExpireEnded(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, sub := range r.s.subscriptions {
		if sub.Status != domain.SubscriptionStatusActive || sub.EndsAt == nil || sub.EndsAt.After(now) {
			continue
		}
		sub.Status = domain.SubscriptionStatusExpired
		sub.UpdatedAt = now
		r.s.subscriptions[id] = sub
		n++
	}
	return n, nil
}
