package domain

import "time"

// User represents an account known to the auth provider
type User struct {
	ID            uint
	Phone         string
	Email         string
	Role          string
	IsActive      bool
	PhoneVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Session is the access/refresh token pair issued after a successful verification.
// It is owned by the provider and only ever changed through provider calls.
type Session struct {
	ID           string
	UserID       uint
	Role         string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token expiry
	CreatedAt    time.Time
	User         *User
}

// Expired reports whether the access token has lapsed at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// AuthResult represents the provider's answer to a successful code exchange
type AuthResult struct {
	User    *User
	Session *Session
}

// OTPRequest represents a code issued by the provider
type OTPRequest struct {
	Phone     string
	Code      string
	ExpiresAt time.Time
	Attempts  int
}

// PendingVerification is the UI-side record of an outstanding code.
// ExpiresAt is always RequestedAt plus the verification window.
type PendingVerification struct {
	Phone       string
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the window has passed at now
func (p *PendingVerification) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// StoredSession is the provider-side session record
type StoredSession struct {
	ID        string
	UserID    uint
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Profile is the per-user account profile shown on the dashboard
type Profile struct {
	UserID    uint
	FullName  string
	Company   string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chat is a conversation record owned by a single user
type Chat struct {
	ID        string
	UserID    uint
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
