package domain

import (
	"context"
	"net/http"
	"time"
)

// CookieJar is the request-scoped cookie capability handed to the provider.
// Reads see the request cookies plus anything written during the request;
// writes are mirrored onto the outgoing response by the owner of the jar.
type CookieJar interface {
	Cookies() []*http.Cookie
	Cookie(name string) (*http.Cookie, bool)
	SetCookie(cookie *http.Cookie)
}

// AuthProvider is the auth surface consumed by the web layer.
// Every failure is reported as a *ProviderError.
type AuthProvider interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, code string, jar CookieJar) (*AuthResult, error)
	GetSession(ctx context.Context, jar CookieJar) (*Session, error)
	GetUser(ctx context.Context, jar CookieJar) (*User, error)
	RefreshSession(ctx context.Context, jar CookieJar) (*Session, error)
	SignOut(ctx context.Context, jar CookieJar) error
}

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, user *User) error
	ActivatePhone(ctx context.Context, userID uint) error
}

// SessionRepository defines provider-side session storage
type SessionRepository interface {
	Create(ctx context.Context, session *StoredSession) error
	FindByID(ctx context.Context, sessionID string) (*StoredSession, error)
	Extend(ctx context.Context, sessionID string, expiresAt time.Time) error
	Delete(ctx context.Context, sessionID string) error
}

// ProfileRepository defines profile data access operations
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
}

// ChatRepository defines chat record data access operations
type ChatRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]*Chat, error)
	FindByID(ctx context.Context, id string) (*Chat, error)
	Create(ctx context.Context, chat *Chat) error
	Delete(ctx context.Context, id string) error
}

// OTPService issues and checks provider-side codes
type OTPService interface {
	Generate(ctx context.Context, phone string) (*OTPRequest, error)
	Verify(ctx context.Context, phone, code string) (bool, error)
	CanResend(ctx context.Context, phone string) (bool, int64, error)
}

// AuthService is the provider-side session authority
type AuthService interface {
	VerifyPhone(ctx context.Context, phone, code string) (*AuthResult, error)
	Authenticate(ctx context.Context, accessToken string) (*Session, error)
	ResolveUser(ctx context.Context, token string) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, token string) error
}

// TokenService defines token operations
type TokenService interface {
	GenerateAccessToken(userID uint, role string, sessionID string) (string, time.Time, error)
	GenerateRefreshToken(userID uint, role string, sessionID string) (string, time.Time, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

// CodeHasher hashes one-time codes before they are stored
type CodeHasher interface {
	Hash(code string) (string, error)
	Verify(hash, code string) bool
}

// NotificationService defines notification operations
type NotificationService interface {
	SendSMS(to, message string) error
}

// PolicyService defines record authorization policy operations
type PolicyService interface {
	AddPolicy(role, resource, action string) error
	RemovePolicy(role, resource, action string) error
	CheckPermission(role, resource, action string) (bool, error)
	GetPolicies() [][]string
}

// ProfileService manages the account profile shown on the dashboard
type ProfileService interface {
	Get(ctx context.Context, actor Principal, ownerID uint) (*Profile, error)
	Update(ctx context.Context, actor Principal, profile *Profile) (*Profile, error)
}

// ChatService manages a user's chat records
type ChatService interface {
	List(ctx context.Context, actor Principal) ([]*Chat, error)
	Create(ctx context.Context, actor Principal, title string) (*Chat, error)
	Delete(ctx context.Context, actor Principal, chatID string) error
}

// Principal identifies the caller of a record operation
type Principal struct {
	UserID uint
	Role   string
}

// Token types carried in the "typ" claim
const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	SessionID string `json:"session_id,omitempty"`
	Type      string `json:"typ"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	HasPolicy(params ...interface{}) (bool, error)
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
