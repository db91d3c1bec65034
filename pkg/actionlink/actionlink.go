// Package actionlink signs the confirm/cancel links mailed with a booking.
// A link is an HS256 JWT bound to one booking and one action.
package actionlink

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Action string

const (
	ActionConfirm Action = "confirm"
	ActionCancel  Action = "cancel"
)

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidLink          = errors.New("invalid action link")
)

type Claims struct {
	jwt.RegisteredClaims
	BookingID uuid.UUID `json:"booking_id"`
	Action    Action    `json:"action"`
}

type Signer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration, issuer string) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// Sign returns a token carrying a fresh jti so each link can be consumed once.
func (s *Signer) Sign(bookingID uuid.UUID, action Action) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   bookingID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		BookingID: bookingID,
		Action:    action,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign action link: %w", err)
	}
	return token, claims, nil
}

func (s *Signer) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLink, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.BookingID == uuid.Nil {
		return nil, ErrInvalidLink
	}
	switch claims.Action {
	case ActionConfirm, ActionCancel:
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidLink, claims.Action)
	}

	return claims, nil
}
