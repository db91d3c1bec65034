// Package memory implements the repository interfaces on top of maps guarded
// by a single mutex. It backs DB_IN_MEMORY=true and the service tests.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
)

type Store struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]domain.User
	tokens        map[string]domain.SessionToken
	practice      map[uuid.UUID]domain.PracticeSession
	bookings      map[uuid.UUID]domain.Booking
	subscriptions map[uuid.UUID]domain.Subscription
	payments      map[uuid.UUID]domain.Payment
	packages      map[uuid.UUID]domain.Package
	media         map[uuid.UUID]domain.MediaItem
	consumed      map[string]time.Time
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]domain.User),
		tokens:        make(map[string]domain.SessionToken),
		practice:      make(map[uuid.UUID]domain.PracticeSession),
		bookings:      make(map[uuid.UUID]domain.Booking),
		subscriptions: make(map[uuid.UUID]domain.Subscription),
		payments:      make(map[uuid.UUID]domain.Payment),
		packages:      make(map[uuid.UUID]domain.Package),
		media:         make(map[uuid.UUID]domain.MediaItem),
		consumed:      make(map[string]time.Time),
		now:           time.Now,
	}
}

// SetClock overrides the time source used for expiry checks.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() repository.UserRepository                 { return &userRepository{s} }
func (s *Store) SessionTokens() repository.SessionTokenRepository { return &sessionTokenRepository{s} }
func (s *Store) Practice() repository.PracticeRepository          { return &practiceRepository{s} }
func (s *Store) Bookings() repository.BookingRepository           { return &bookingRepository{s} }
func (s *Store) Subscriptions() repository.SubscriptionRepository { return &subscriptionRepository{s} }
func (s *Store) Payments() repository.PaymentRepository           { return &paymentRepository{s} }
func (s *Store) Packages() repository.PackageRepository           { return &packageRepository{s} }
func (s *Store) Media() repository.MediaRepository                { return &mediaRepository{s} }
