package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sethvargo/go-envconfig"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/events"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
	"github.com/itaymdigi/coldtherapylanding/internal/repository/memory"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/actionlink"
	"github.com/itaymdigi/coldtherapylanding/pkg/email"
	"github.com/itaymdigi/coldtherapylanding/pkg/hash"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

const testSecret = "whsec_handler"

type testServer struct {
	app     *fiber.App
	store   *memory.Store
	catalog *service.CatalogService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg, err := config.LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"PAYMENT_WEBHOOK_SECRET": testSecret,
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	store := memory.NewStore()
	m := metrics.New()
	mailer := email.NewLogMailer()
	bus := events.NewLocal()
	v := validator.NewValidator()
	links := actionlink.NewSigner(cfg.Links.Secret, cfg.Links.TTL, cfg.Links.Issuer)

	auth := service.NewAuthService(store.Users(), store.SessionTokens(),
		hash.NewHasher(hash.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}),
		mailer, m, cfg)
	bookings := service.NewBookingService(store.Bookings(), store.Packages(), links, store.LinkGuard(), mailer, bus, m, cfg)
	subscriptions := service.NewSubscriptionService(store.Subscriptions(), store.Packages())
	payments := service.NewPaymentService(store.Payments(), store.Bookings(), store.Subscriptions(), store.Packages(),
		bookings, subscriptions, bus, m, cfg.Payments)
	catalog := service.NewCatalogService(store.Packages(), cfg.Payments.Currency)
	media := service.NewMediaService(store.Media(), nil, cfg.Storage)

	app := NewApp(cfg, m)
	SetupRoutes(app, cfg, Handlers{
		Auth:         NewAuthHandler(auth, v),
		Password:     NewPasswordHandler(auth, v),
		User:         NewUserHandler(),
		Practice:     NewPracticeHandler(service.NewPracticeService(auth, store.Practice(), store.Users(), m, cfg.Location()), v),
		Booking:      NewBookingHandler(bookings, v),
		Subscription: NewSubscriptionHandler(subscriptions, v),
		Payment:      NewPaymentHandler(payments, v),
		Catalog:      NewCatalogHandler(catalog, media, v),
		Health: NewHealthHandler("studio-api", map[string]Check{
			"database": func(context.Context) error { return nil },
		}),
	}, auth, m)

	return &testServer{app: app, store: store, catalog: catalog}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (s *testServer) login(t *testing.T, addr string) string {
	t.Helper()
	resp, body := s.do(t, "POST", "/api/v1/auth/register", "", map[string]any{
		"email": addr, "password": "correct horse", "full_name": "Test Member",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register status = %d: %s", resp.StatusCode, body)
	}
	resp, body = s.do(t, "POST", "/api/v1/auth/login", "", map[string]any{
		"email": addr, "password": "correct horse",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login status = %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return out.Token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		resp, body := s.do(t, "GET", path, "", nil)
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("GET %s status = %d: %s", path, resp.StatusCode, body)
		}
	}

	resp, body := s.do(t, "GET", "/api/v1/nowhere", "", nil)
	if resp.StatusCode != fiber.StatusNotFound || !bytes.Contains(body, []byte(`"error"`)) {
		t.Fatalf("unknown route = %d %s", resp.StatusCode, body)
	}
}

func TestStatsNullWithoutToken(t *testing.T) {
	s := newTestServer(t)

	for _, token := range []string{"", "expired-or-unknown"} {
		resp, body := s.do(t, "GET", "/api/v1/practice/stats", token, nil)
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if string(bytes.TrimSpace(body)) != "null" {
			t.Fatalf("body = %s, want null", body)
		}
	}
}

func TestPracticeFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "plunger@example.com")

	resp, body := s.do(t, "POST", "/api/v1/practice/sessions", "bogus", map[string]any{"duration": 60})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("add with bad token = %d: %s", resp.StatusCode, body)
	}

	resp, body = s.do(t, "POST", "/api/v1/practice/sessions", token, map[string]any{"duration": 9000})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("add too long = %d: %s", resp.StatusCode, body)
	}

	resp, body = s.do(t, "POST", "/api/v1/practice/sessions", token, map[string]any{"duration": 180, "mood": "calm"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("add = %d: %s", resp.StatusCode, body)
	}
	var session domain.PracticeSession
	if err := json.Unmarshal(body, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !session.PersonalBest {
		t.Fatalf("first session is not a personal best")
	}

	resp, body = s.do(t, "GET", "/api/v1/practice/stats", token, nil)
	if resp.StatusCode != fiber.StatusOK || !bytes.Contains(body, []byte(`"total_sessions":1`)) {
		t.Fatalf("stats = %d %s", resp.StatusCode, body)
	}

	other := s.login(t, "other@example.com")
	resp, _ = s.do(t, "DELETE", "/api/v1/practice/sessions/"+session.ID.String(), other, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("delete foreign session = %d, want 403", resp.StatusCode)
	}
	resp, _ = s.do(t, "DELETE", "/api/v1/practice/sessions/not-a-uuid", token, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("delete malformed id = %d, want 400", resp.StatusCode)
	}
	resp, _ = s.do(t, "DELETE", "/api/v1/practice/sessions/"+session.ID.String(), token, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete = %d, want 204", resp.StatusCode)
	}
}

func TestAuthErrors(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "dup@example.com")

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"duplicate email", "/api/v1/auth/register", map[string]any{"email": "DUP@example.com", "password": "12345678", "full_name": "Dup"}, fiber.StatusConflict},
		{"short password", "/api/v1/auth/register", map[string]any{"email": "n@example.com", "password": "1", "full_name": "N"}, fiber.StatusBadRequest},
		{"malformed json", "/api/v1/auth/login", []byte("{"), fiber.StatusBadRequest},
		{"wrong password", "/api/v1/auth/login", map[string]any{"email": "dup@example.com", "password": "nope"}, fiber.StatusUnauthorized},
		{"forgot unknown", "/api/v1/auth/password/forgot", map[string]any{"email": "ghost@example.com"}, fiber.StatusAccepted},
		{"reset bogus", "/api/v1/auth/password/reset", map[string]any{"token": "x", "password": "12345678"}, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, "POST", tt.path, "", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
		})
	}

	resp, _ := s.do(t, "GET", "/api/v1/users/me", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("me without token = %d, want 401", resp.StatusCode)
	}
}

func TestAdminRoutesRequireRole(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "member@example.com")

	resp, _ := s.do(t, "GET", "/api/v1/admin/bookings", token, nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("member on admin route = %d, want 403", resp.StatusCode)
	}

	ctx := context.Background()
	user, err := s.store.Users().GetByEmail(ctx, "member@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	user.Role = domain.UserRoleAdmin
	if err := s.store.Users().Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	resp, body := s.do(t, "GET", "/api/v1/admin/bookings?status=pending&from=2026-01-01", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin bookings = %d: %s", resp.StatusCode, body)
	}
	resp, _ = s.do(t, "GET", "/api/v1/admin/bookings?from=yesterday", token, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad from = %d, want 400", resp.StatusCode)
	}
	resp, _ = s.do(t, "POST", "/api/v1/admin/media", token, map[string]any{
		"kind": "photo", "content_type": "image/png", "file_name": "a.png",
	})
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("upload without storage = %d, want 503", resp.StatusCode)
	}
}

func TestBookingEndpoints(t *testing.T) {
	s := newTestServer(t)
	pkg, err := s.catalog.Upsert(context.Background(), service.UpsertPackageRequest{
		Slug: "dip", NameHe: "טבילה", Kind: "single", PriceMinor: 15000,
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	resp, body := s.do(t, "GET", "/api/v1/packages", "", nil)
	if resp.StatusCode != fiber.StatusOK || !bytes.Contains(body, []byte(`"slug":"dip"`)) {
		t.Fatalf("packages = %d %s", resp.StatusCode, body)
	}

	form := map[string]any{
		"package_id":   pkg.ID.String(),
		"full_name":    "Dana Levi",
		"email":        "dana@example.com",
		"phone":        "050-1234567",
		"participants": 2,
		"preferred_at": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	}
	resp, body = s.do(t, "POST", "/api/v1/bookings", "", form)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create booking = %d: %s", resp.StatusCode, body)
	}

	form["participants"] = 11
	resp, _ = s.do(t, "POST", "/api/v1/bookings", "", form)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("too many participants = %d, want 400", resp.StatusCode)
	}

	resp, _ = s.do(t, "GET", "/api/v1/bookings/action", "", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("action without token = %d, want 400", resp.StatusCode)
	}
	resp, _ = s.do(t, "GET", "/api/v1/bookings/action?token=forged", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("forged action link = %d, want 401", resp.StatusCode)
	}
}

func TestPaymentWebhookSignature(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"payment_id":"00000000-0000-4000-8000-000000000000","status":"succeeded"}`)

	resp, _ := s.do(t, "POST", "/api/v1/payments/webhook", "", body, "X-Signature", "sha256=00")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad signature = %d, want 401", resp.StatusCode)
	}

	resp, _ = s.do(t, "POST", "/api/v1/payments/webhook", "", body, "X-Signature", service.SignPayload(testSecret, body))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("signed webhook for unknown payment = %d, want 404", resp.StatusCode)
	}

	resp, _ = s.do(t, "POST", "/api/v1/payments", "", map[string]any{})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("create payment without token = %d, want 401", resp.StatusCode)
	}
}
