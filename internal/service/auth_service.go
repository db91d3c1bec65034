package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
	"github.com/itaymdigi/coldtherapylanding/internal/domain"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
	"github.com/itaymdigi/coldtherapylanding/pkg/email"
	"github.com/itaymdigi/coldtherapylanding/pkg/hash"
)

// sessionTokenBytes is the entropy of an opaque login token.
const sessionTokenBytes = 32

type AuthService struct {
	users   repository.UserRepository
	tokens  repository.SessionTokenRepository
	hasher  *hash.Hasher
	mailer  email.Mailer
	metrics *metrics.Metrics
	cfg     *config.Config
	logger  zerolog.Logger
	now     func() time.Time
	async   runner
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Locale   string `json:"locale" validate:"omitempty,locale"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ClientInfo is recorded on the session token for the user's device list.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.SessionTokenRepository,
	hasher *hash.Hasher,
	mailer email.Mailer,
	m *metrics.Metrics,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		hasher:  hasher,
		mailer:  mailer,
		metrics: m,
		cfg:     cfg,
		logger:  log.With().Str("component", "auth_service").Logger(),
		now:     time.Now,
		async:   goRunner,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	addr := normalizeEmail(req.Email)
	if _, err := s.users.GetByEmail(ctx, addr); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	locale := domain.Locale(req.Locale)
	if locale == "" {
		locale = domain.LocaleHebrew
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        addr,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(req.FullName),
		Phone:        strings.TrimSpace(req.Phone),
		Locale:       locale,
		Role:         domain.UserRoleMember,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.Logins.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.Status == domain.UserStatusLocked {
		if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
			s.metrics.Logins.WithLabelValues("locked").Inc()
			return nil, ErrAccountLocked
		}
		// lock period is over
		if err := s.users.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, err
		}
		user.Status = domain.UserStatusActive
		user.FailedLogins = 0
		user.LockedUntil = nil
	}

	valid, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		if err := s.handleFailedLogin(ctx, user); err != nil {
			return nil, err
		}
		s.metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	if user.FailedLogins > 0 {
		if err := s.users.ResetFailedLogins(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		if rehashed, err := s.hasher.Hash(req.Password); err == nil {
			user.PasswordHash = rehashed
			if err := s.users.Update(ctx, user); err != nil {
				s.logger.Warn().Err(err).Msg("store rehashed password")
			}
		}
	}

	raw, err := generateSecureToken(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	token := &domain.SessionToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		ExpiresAt: now.Add(s.cfg.Auth.SessionTTL),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Msg("update last login")
	}

	s.metrics.Logins.WithLabelValues("ok").Inc()
	return &LoginResponse{Token: raw, ExpiresAt: token.ExpiresAt, User: user}, nil
}

// handleFailedLogin locks the account once the threshold is reached
func (s *AuthService) handleFailedLogin(ctx context.Context, user *domain.User) error {
	if err := s.users.IncrementFailedLogins(ctx, user.ID); err != nil {
		return err
	}

	updated, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	if updated.FailedLogins >= s.cfg.Auth.MaxFailedLogins {
		lockUntil := s.now().Add(s.cfg.Auth.LockDuration)
		updated.Status = domain.UserStatusLocked
		updated.LockedUntil = &lockUntil
		if err := s.users.Update(ctx, updated); err != nil {
			return err
		}
		s.logger.Warn().Str("user_id", user.ID.String()).Time("locked_until", lockUntil).Msg("account locked")
	}

	return nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := s.tokens.DeleteByHash(ctx, hashToken(token)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

// ValidateToken checks the stored token's expiry. It never extends it.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.SessionToken, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	record, err := s.tokens.GetByHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if record.Expired(s.now()) {
		return nil, ErrInvalidToken
	}
	return record, nil
}

// Authenticate resolves a token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	record, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset stores a reset token and mails it. Unknown addresses
// succeed silently so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	expiresAt := s.now().Add(s.cfg.Auth.ResetTokenTTL)
	user.PasswordResetToken = &token
	user.PasswordResetTokenExpiresAt = &expiresAt
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	msg := email.PasswordResetMessage{
		To:        user.Email,
		Name:      user.FullName,
		Locale:    string(user.Locale),
		ResetURL:  fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.Server.PublicBaseURL, "/"), token),
		ExpiresIn: s.cfg.Auth.ResetTokenTTL,
	}
	background(s.async, ctx, s.logger, "send password reset email", func(ctx context.Context) error {
		return s.mailer.SendPasswordReset(ctx, msg)
	})
	return nil
}

// ResetPassword sets the new password and revokes every session token.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := s.users.GetByPasswordResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if user.PasswordResetTokenExpiresAt == nil || !s.now().Before(*user.PasswordResetTokenExpiresAt) {
		return ErrInvalidResetToken
	}

	_, err = s.setPassword(ctx, user, req.Password)
	return err
}

// SetPassword is the administrative reset used by studioctl. It returns the
// number of revoked session tokens.
func (s *AuthService) SetPassword(ctx context.Context, emailAddr, password string) (int64, error) {
	if len(password) < 8 {
		return 0, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	user, err := s.users.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return s.setPassword(ctx, user, password)
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) (int64, error) {
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = passwordHash
	user.PasswordResetToken = nil
	user.PasswordResetTokenExpiresAt = nil
	user.Status = domain.UserStatusActive
	user.FailedLogins = 0
	user.LockedUntil = nil
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return 0, err
	}

	revoked, err := s.tokens.DeleteByUserID(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke session tokens: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID.String()).Int64("revoked", revoked).Msg("password reset")
	return revoked, nil
}

// hashToken creates a SHA-256 hash of the token
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
