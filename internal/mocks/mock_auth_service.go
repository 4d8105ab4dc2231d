package mocks

import (
	"context"

	"github.com/you/consultsite/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	VerifyPhoneFunc  func(ctx context.Context, phone, code string) (*domain.AuthResult, error)
	AuthenticateFunc func(ctx context.Context, accessToken string) (*domain.Session, error)
	ResolveUserFunc  func(ctx context.Context, token string) (*domain.User, error)
	RefreshFunc      func(ctx context.Context, refreshToken string) (*domain.Session, error)
	LogoutFunc       func(ctx context.Context, token string) error
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

// VerifyPhone exchanges a code for a session
func (m *MockAuthService) VerifyPhone(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
	if m.VerifyPhoneFunc != nil {
		return m.VerifyPhoneFunc(ctx, phone, code)
	}
	// Default behavior: invalid code
	return nil, domain.ErrOTPInvalid
}

// Authenticate resolves an access token to a session
func (m *MockAuthService) Authenticate(ctx context.Context, accessToken string) (*domain.Session, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, accessToken)
	}
	// Default behavior: token rejected
	return nil, domain.ErrTokenInvalid
}

// ResolveUser resolves either token type to its user
func (m *MockAuthService) ResolveUser(ctx context.Context, token string) (*domain.User, error) {
	if m.ResolveUserFunc != nil {
		return m.ResolveUserFunc(ctx, token)
	}
	// Default behavior: token rejected
	return nil, domain.ErrTokenInvalid
}

// Refresh rotates the session tokens
func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	// Default behavior: token rejected
	return nil, domain.ErrTokenInvalid
}

// Logout ends the session behind token
func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
