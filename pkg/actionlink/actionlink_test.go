package actionlink

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestSignVerify(t *testing.T) {
	s := NewSigner("secret", time.Hour, "studio")
	id := uuid.New()

	token, signed, err := s.Sign(id, ActionConfirm)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.BookingID != id || claims.Action != ActionConfirm || claims.ID != signed.ID {
		t.Fatalf("Verify() = %+v, want booking %s confirm jti %s", claims, id, signed.ID)
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSigner("secret", time.Hour, "studio")
	s.now = func() time.Time { return now }
	valid, _, _ := s.Sign(uuid.New(), ActionCancel)

	expired := NewSigner("secret", time.Hour, "studio")
	expired.now = func() time.Time { return now.Add(-2 * time.Hour) }
	stale, _, _ := expired.Sign(uuid.New(), ActionCancel)

	otherKey, _, _ := NewSigner("other", time.Hour, "studio").Sign(uuid.New(), ActionCancel)
	otherIssuer, _, _ := NewSigner("secret", time.Hour, "elsewhere").Sign(uuid.New(), ActionCancel)

	bogus := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "studio",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			ID:        "x",
		},
		BookingID: uuid.New(),
		Action:    "refund",
	})
	unknownAction, _ := bogus.SignedString([]byte("secret"))

	tests := []struct {
		name  string
		token string
		ok    bool
	}{
		{name: "valid", token: valid, ok: true},
		{name: "expired", token: stale},
		{name: "wrong key", token: otherKey},
		{name: "wrong issuer", token: otherIssuer},
		{name: "unknown action", token: unknownAction},
		{name: "garbage", token: "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			if tt.ok {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidLink) {
				t.Fatalf("Verify() error = %v, want ErrInvalidLink", err)
			}
		})
	}
}
