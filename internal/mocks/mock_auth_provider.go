package mocks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/you/consultsite/domain"
)

// MockAuthProvider implements domain.AuthProvider interface for testing.
// Call counters are safe for concurrent use.
type MockAuthProvider struct {
	SendOTPFunc        func(ctx context.Context, phone string) error
	VerifyOTPFunc      func(ctx context.Context, phone, code string, jar domain.CookieJar) (*domain.AuthResult, error)
	GetSessionFunc     func(ctx context.Context, jar domain.CookieJar) (*domain.Session, error)
	GetUserFunc        func(ctx context.Context, jar domain.CookieJar) (*domain.User, error)
	RefreshSessionFunc func(ctx context.Context, jar domain.CookieJar) (*domain.Session, error)
	SignOutFunc        func(ctx context.Context, jar domain.CookieJar) error

	SendOTPCalls        atomic.Int32
	VerifyOTPCalls      atomic.Int32
	GetSessionCalls     atomic.Int32
	GetUserCalls        atomic.Int32
	RefreshSessionCalls atomic.Int32
	SignOutCalls        atomic.Int32
}

// NewMockAuthProvider creates a new MockAuthProvider with default behaviors
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{}
}

// SendOTP requests a code for phone
func (m *MockAuthProvider) SendOTP(ctx context.Context, phone string) error {
	m.SendOTPCalls.Add(1)
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, phone)
	}
	// Default behavior: code sent
	return nil
}

// VerifyOTP exchanges a code for a session
func (m *MockAuthProvider) VerifyOTP(ctx context.Context, phone, code string, jar domain.CookieJar) (*domain.AuthResult, error) {
	m.VerifyOTPCalls.Add(1)
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, phone, code, jar)
	}
	// Default behavior: accept "123456"
	if code != "123456" {
		return nil, &domain.ProviderError{Op: "verify_otp", Kind: domain.ProviderInvalidCode, Message: "invalid otp code"}
	}
	user := &domain.User{ID: 1, Phone: phone, Role: "user", IsActive: true, PhoneVerified: true}
	return &domain.AuthResult{
		User: user,
		Session: &domain.Session{
			ID:           "mock_session_id",
			UserID:       user.ID,
			Role:         user.Role,
			AccessToken:  "mock_access_token",
			RefreshToken: "mock_refresh_token",
			ExpiresAt:    time.Now().Add(15 * time.Minute),
			User:         user,
		},
	}, nil
}

// GetSession returns the current session
func (m *MockAuthProvider) GetSession(ctx context.Context, jar domain.CookieJar) (*domain.Session, error) {
	m.GetSessionCalls.Add(1)
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, jar)
	}
	// Default behavior: no session
	return nil, nil
}

// GetUser returns the current user
func (m *MockAuthProvider) GetUser(ctx context.Context, jar domain.CookieJar) (*domain.User, error) {
	m.GetUserCalls.Add(1)
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, jar)
	}
	// Default behavior: no user
	return nil, nil
}

// RefreshSession refreshes the session from the refresh token
func (m *MockAuthProvider) RefreshSession(ctx context.Context, jar domain.CookieJar) (*domain.Session, error) {
	m.RefreshSessionCalls.Add(1)
	if m.RefreshSessionFunc != nil {
		return m.RefreshSessionFunc(ctx, jar)
	}
	// Default behavior: nothing to refresh
	return nil, &domain.ProviderError{Op: "refresh_session", Kind: domain.ProviderUnauthorized, Message: "no refresh token present"}
}

// SignOut ends the session
func (m *MockAuthProvider) SignOut(ctx context.Context, jar domain.CookieJar) error {
	m.SignOutCalls.Add(1)
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, jar)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthProvider = (*MockAuthProvider)(nil)
