package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusLocked UserStatus = "locked"
)

type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

type Locale string

const (
	LocaleHebrew  Locale = "he"
	LocaleEnglish Locale = "en"
)

// User owns practice sessions and session tokens. TotalSessions and
// TotalDuration are maintained incrementally by the practice repository.
type User struct {
	ID                          uuid.UUID  `json:"id" db:"id"`
	Email                       string     `json:"email" db:"email"`
	PasswordHash                string     `json:"-" db:"password_hash"`
	FullName                    string     `json:"full_name" db:"full_name"`
	Phone                       string     `json:"phone,omitempty" db:"phone"`
	Locale                      Locale     `json:"locale" db:"locale"`
	Role                        UserRole   `json:"role" db:"role"`
	Status                      UserStatus `json:"status" db:"status"`
	TotalSessions               int        `json:"total_sessions" db:"total_sessions"`
	TotalDuration               int        `json:"total_duration" db:"total_duration"`
	FailedLogins                int        `json:"-" db:"failed_logins"`
	LockedUntil                 *time.Time `json:"-" db:"locked_until"`
	PasswordResetToken          *string    `json:"-" db:"password_reset_token"`
	PasswordResetTokenExpiresAt *time.Time `json:"-" db:"password_reset_token_expires_at"`
	CreatedAt                   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt                 *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
