package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/itaymdigi/coldtherapylanding/internal/domain"
)

func webhookBody(t *testing.T, event WebhookEvent) []byte {
	t.Helper()
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal webhook: %v", err)
	}
	return body
}

func strPtr(s string) *string { return &s }

func TestCreatePaymentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.registerAndLogin(t, "owner@example.com")
	other, _ := env.registerAndLogin(t, "other@example.com")
	membership := env.seedPackage(t, "monthly", domain.PackageKindMembership, 40000, 30)

	sub, err := env.subscriptions.Create(ctx, owner.ID, CreateSubscriptionRequest{PackageID: membership.ID.String()})
	if err != nil {
		t.Fatalf("Create subscription error = %v", err)
	}

	tests := []struct {
		name    string
		user    *domain.User
		req     CreatePaymentRequest
		wantErr error
	}{
		{"neither target", owner, CreatePaymentRequest{}, ErrInvalidInput},
		{"both targets", owner, CreatePaymentRequest{BookingID: strPtr(sub.ID.String()), SubscriptionID: strPtr(sub.ID.String())}, ErrInvalidInput},
		{"foreign subscription", other, CreatePaymentRequest{SubscriptionID: strPtr(sub.ID.String())}, ErrNotOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.payments.Create(ctx, tt.user, tt.req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWebhookActivatesSubscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.registerAndLogin(t, "member@example.com")
	membership := env.seedPackage(t, "monthly", domain.PackageKindMembership, 40000, 30)

	sub, err := env.subscriptions.Create(ctx, owner.ID, CreateSubscriptionRequest{PackageID: membership.ID.String()})
	if err != nil {
		t.Fatalf("Create subscription error = %v", err)
	}
	payment, err := env.payments.Create(ctx, owner, CreatePaymentRequest{SubscriptionID: strPtr(sub.ID.String())})
	if err != nil {
		t.Fatalf("Create payment error = %v", err)
	}
	if payment.AmountMinor != 40000 || payment.Status != domain.PaymentStatusPending {
		t.Fatalf("payment = %+v", payment)
	}

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	env.subscriptions.now = func() time.Time { return now }

	body := webhookBody(t, WebhookEvent{PaymentID: payment.ID.String(), ProviderRef: "ch_1", Status: "succeeded"})
	updated, err := env.payments.HandleWebhook(ctx, body, SignPayload(testWebhookSecret, body))
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if updated.Status != domain.PaymentStatusSucceeded || updated.ProviderRef == nil || *updated.ProviderRef != "ch_1" {
		t.Fatalf("payment after webhook = %+v", updated)
	}

	stored, err := env.store.Subscriptions().GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != domain.SubscriptionStatusActive {
		t.Fatalf("subscription Status = %s, want active", stored.Status)
	}
	if !stored.EndsAt.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("EndsAt = %v, want %v", stored.EndsAt, now.AddDate(0, 0, 30))
	}

	// provider retries are accepted
	if _, err := env.payments.HandleWebhook(ctx, body, SignPayload(testWebhookSecret, body)); err != nil {
		t.Fatalf("replayed webhook error = %v", err)
	}
}

func TestWebhookConfirmsBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.registerAndLogin(t, "guest@example.com")
	pkg := env.seedPackage(t, "dip", domain.PackageKindSingle, 12000, 0)
	booking := env.createBooking(t, pkg, &owner.ID, 2)

	payment, err := env.payments.Create(ctx, owner, CreatePaymentRequest{BookingID: strPtr(booking.ID.String())})
	if err != nil {
		t.Fatalf("Create payment error = %v", err)
	}
	if payment.AmountMinor != 24000 {
		t.Fatalf("AmountMinor = %d, want 24000", payment.AmountMinor)
	}

	body := webhookBody(t, WebhookEvent{PaymentID: payment.ID.String(), Status: "succeeded"})
	if _, err := env.payments.HandleWebhook(ctx, body, SignPayload(testWebhookSecret, body)); err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}

	stored, _ := env.store.Bookings().GetByID(ctx, booking.ID)
	if stored.Status != domain.BookingStatusConfirmed {
		t.Fatalf("booking Status = %s, want confirmed", stored.Status)
	}
}

func TestWebhookSignature(t *testing.T) {
	env := newTestEnv(t)
	body := []byte(`{"payment_id":"x","status":"succeeded"}`)

	tests := []struct {
		name      string
		signature string
	}{
		{"missing", ""},
		{"no prefix", "deadbeef"},
		{"not hex", "sha256=zz"},
		{"wrong secret", SignPayload("other", body)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.payments.HandleWebhook(context.Background(), body, tt.signature); !errors.Is(err, ErrInvalidSignature) {
				t.Fatalf("HandleWebhook() error = %v, want ErrInvalidSignature", err)
			}
		})
	}

	env.payments.cfg.WebhookSecret = ""
	if _, err := env.payments.HandleWebhook(context.Background(), body, SignPayload("", body)); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("unset secret accepted a webhook: %v", err)
	}
}

func TestWebhookRejectsUndefinedTransition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.registerAndLogin(t, "r@example.com")
	membership := env.seedPackage(t, "monthly", domain.PackageKindMembership, 100, 30)
	sub, _ := env.subscriptions.Create(ctx, owner.ID, CreateSubscriptionRequest{PackageID: membership.ID.String()})
	payment, err := env.payments.Create(ctx, owner, CreatePaymentRequest{SubscriptionID: strPtr(sub.ID.String())})
	if err != nil {
		t.Fatalf("Create payment error = %v", err)
	}

	body := webhookBody(t, WebhookEvent{PaymentID: payment.ID.String(), Status: "refunded"})
	if _, err := env.payments.HandleWebhook(ctx, body, SignPayload(testWebhookSecret, body)); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("pending -> refunded error = %v, want ErrInvalidTransition", err)
	}
}

type flakyActivator struct {
	next  SubscriptionActivator
	fails int
	calls int
}

func (a *flakyActivator) Activate(ctx context.Context, id uuid.UUID) error {
	a.calls++
	if a.calls <= a.fails {
		return errors.New("transient db error")
	}
	return a.next.Activate(ctx, id)
}

func TestWebhookRetryFinishesFailedActivation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.registerAndLogin(t, "retry@example.com")
	membership := env.seedPackage(t, "monthly", domain.PackageKindMembership, 40000, 30)

	sub, err := env.subscriptions.Create(ctx, owner.ID, CreateSubscriptionRequest{PackageID: membership.ID.String()})
	if err != nil {
		t.Fatalf("Create subscription error = %v", err)
	}
	payment, err := env.payments.Create(ctx, owner, CreatePaymentRequest{SubscriptionID: strPtr(sub.ID.String())})
	if err != nil {
		t.Fatalf("Create payment error = %v", err)
	}

	activator := &flakyActivator{next: env.subscriptions, fails: 1}
	env.payments.activator = activator

	body := webhookBody(t, WebhookEvent{PaymentID: payment.ID.String(), Status: "succeeded"})
	if _, err := env.payments.HandleWebhook(ctx, body, SignPayload(testWebhookSecret, body)); err == nil {
		t.Fatalf("first webhook error = nil, want activation failure")
	}

	stored, err := env.store.Payments().GetByID(ctx, payment.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != domain.PaymentStatusSucceeded {
		t.Fatalf("payment Status = %s, want succeeded", stored.Status)
	}

	if _, err := env.payments.HandleWebhook(ctx, body, SignPayload(testWebhookSecret, body)); err != nil {
		t.Fatalf("retried webhook error = %v", err)
	}
	if activator.calls != 2 {
		t.Fatalf("Activate calls = %d, want 2", activator.calls)
	}

	got, err := env.store.Subscriptions().GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != domain.SubscriptionStatusActive {
		t.Fatalf("subscription Status = %s, want active", got.Status)
	}
}
