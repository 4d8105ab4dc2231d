package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/you/consultsite/domain"
)

// MockTokenService implements domain.TokenService. Tokens it issues
// validate back to the claims they were issued with; any other non-empty
// token validates to a fixed user 1 session.
type MockTokenService struct {
	GenerateAccessTokenFunc  func(userID uint, role string, sessionID string) (string, time.Time, error)
	GenerateRefreshTokenFunc func(userID uint, role string, sessionID string) (string, time.Time, error)
	ValidateAccessTokenFunc  func(token string) (*domain.TokenClaims, error)
	ValidateRefreshTokenFunc func(token string) (*domain.TokenClaims, error)

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	mu     sync.Mutex
	seq    int
	issued map[string]*domain.TokenClaims
}

func NewMockTokenService() *MockTokenService {
	return &MockTokenService{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		issued:     make(map[string]*domain.TokenClaims),
	}
}

func (m *MockTokenService) GenerateAccessToken(userID uint, role string, sessionID string) (string, time.Time, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID, role, sessionID)
	}
	return m.issue(domain.AccessTokenType, userID, role, sessionID, m.AccessTTL)
}

func (m *MockTokenService) GenerateRefreshToken(userID uint, role string, sessionID string) (string, time.Time, error) {
	if m.GenerateRefreshTokenFunc != nil {
		return m.GenerateRefreshTokenFunc(userID, role, sessionID)
	}
	return m.issue(domain.RefreshTokenType, userID, role, sessionID, m.RefreshTTL)
}

func (m *MockTokenService) issue(typ string, userID uint, role, sessionID string, ttl time.Duration) (string, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	now := time.Now()
	exp := now.Add(ttl)
	token := fmt.Sprintf("%s_token_user_%d_%s_%d", typ, userID, sessionID, m.seq)
	m.issued[token] = &domain.TokenClaims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		Type:      typ,
		IssuedAt:  now.Unix(),
		ExpiresAt: exp.Unix(),
	}
	return token, exp, nil
}

func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	return m.validate(token, domain.AccessTokenType, m.AccessTTL)
}

func (m *MockTokenService) ValidateRefreshToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateRefreshTokenFunc != nil {
		return m.ValidateRefreshTokenFunc(token)
	}
	return m.validate(token, domain.RefreshTokenType, m.RefreshTTL)
}

func (m *MockTokenService) validate(token, typ string, ttl time.Duration) (*domain.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	m.mu.Lock()
	claims, ok := m.issued[token]
	m.mu.Unlock()
	if ok {
		if claims.Type != typ {
			return nil, domain.ErrTokenInvalid
		}
		c := *claims
		return &c, nil
	}

	now := time.Now()
	return &domain.TokenClaims{
		UserID:    1,
		Role:      "user",
		SessionID: "mock_session_id",
		Type:      typ,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}, nil
}

var _ domain.TokenService = (*MockTokenService)(nil)
