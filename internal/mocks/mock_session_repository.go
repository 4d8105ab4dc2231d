package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/consultsite/domain"
)

// MockSessionRepository is an in-memory domain.SessionRepository with the
// same expiry rules as the Redis one: an expired session reads as missing.
type MockSessionRepository struct {
	CreateFunc   func(ctx context.Context, session *domain.StoredSession) error
	FindByIDFunc func(ctx context.Context, sessionID string) (*domain.StoredSession, error)
	ExtendFunc   func(ctx context.Context, sessionID string, expiresAt time.Time) error
	DeleteFunc   func(ctx context.Context, sessionID string) error

	mu       sync.Mutex
	sessions map[string]domain.StoredSession
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]domain.StoredSession)}
}

// Len returns how many sessions are stored, expired ones included
func (m *MockSessionRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.StoredSession) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = *session
	return nil
}

func (m *MockSessionRepository) FindByID(ctx context.Context, sessionID string) (*domain.StoredSession, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *MockSessionRepository) Extend(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if m.ExtendFunc != nil {
		return m.ExtendFunc(ctx, sessionID, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = expiresAt
	m.sessions[sessionID] = s
	return nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, sessionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

var _ domain.SessionRepository = (*MockSessionRepository)(nil)
