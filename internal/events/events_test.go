package events

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/pkg/email"
)

type recordingMailer struct {
	mu       sync.Mutex
	staff    []email.StaffNotice
	statuses []email.BookingMessage
}

func (m *recordingMailer) SendBookingRequest(context.Context, email.BookingMessage) error { return nil }

func (m *recordingMailer) SendBookingStatus(_ context.Context, msg email.BookingMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, msg)
	return nil
}

func (m *recordingMailer) SendStaffNotice(_ context.Context, n email.StaffNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staff = append(m.staff, n)
	return nil
}

func (m *recordingMailer) SendPasswordReset(context.Context, email.PasswordResetMessage) error {
	return nil
}

func TestNotifierOverLocalBus(t *testing.T) {
	ctx := context.Background()
	loc, _ := time.LoadLocation("Asia/Jerusalem")
	mailer := &recordingMailer{}
	bus := NewLocal()

	closers, err := NewNotifier(mailer, "staff@studio.example", loc).Start(ctx, bus)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	when := time.Date(2025, 7, 3, 15, 0, 0, 0, time.UTC)
	_ = bus.Publish(ctx, SubjectBookingCreated, BookingCreated{
		BookingID: uuid.New(), FullName: "Dana", Email: "dana@example.com", Phone: "0501234567",
		Participants: 2, PreferredAt: when,
	})
	_ = bus.Publish(ctx, SubjectBookingStatusChanged, BookingStatusChanged{
		BookingID: uuid.New(), From: "pending", To: "confirmed", Email: "dana@example.com", PreferredAt: when,
	})
	_ = bus.Publish(ctx, SubjectBookingStatusChanged, BookingStatusChanged{
		BookingID: uuid.New(), From: "confirmed", To: "completed", Email: "dana@example.com",
	})
	bus.Wait()

	if len(mailer.staff) != 1 || mailer.staff[0].To != "staff@studio.example" || mailer.staff[0].Phone != "0501234567" {
		t.Fatalf("staff notices = %+v", mailer.staff)
	}
	if got := mailer.staff[0].Booking.When.Hour(); got != 18 {
		t.Fatalf("staff notice hour = %d want 18 (studio time)", got)
	}
	if len(mailer.statuses) != 1 || mailer.statuses[0].Status != "confirmed" {
		t.Fatalf("status emails = %+v, want one confirmed", mailer.statuses)
	}
}

func TestLocalUnsubscribe(t *testing.T) {
	ctx := context.Background()
	bus := NewLocal()
	var calls int
	var mu sync.Mutex
	c, _ := bus.Subscribe(ctx, "s", "d", func(context.Context, []byte) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	_ = bus.Publish(ctx, "s", 1)
	bus.Wait()
	_ = c.Close()
	_ = bus.Publish(ctx, "s", 2)
	bus.Wait()

	if calls != 1 {
		t.Fatalf("handler calls = %d want 1", calls)
	}
}

func TestNotifierSkipsWithoutStaffAddress(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, "", time.UTC)
	if err := n.HandleBookingCreated(context.Background(), []byte(`{"full_name":"x"}`)); err != nil {
		t.Fatalf("HandleBookingCreated() error = %v", err)
	}
	if len(mailer.staff) != 0 {
		t.Fatalf("staff notice sent without staff address")
	}
}
