package mocks

import (
	"context"

	"github.com/you/consultsite/domain"
)

// MockProfileRepository implements domain.ProfileRepository interface for testing
type MockProfileRepository struct {
	FindByUserIDFunc func(ctx context.Context, userID uint) (*domain.Profile, error)
	UpsertFunc       func(ctx context.Context, profile *domain.Profile) error
}

// NewMockProfileRepository creates a new MockProfileRepository with default behaviors
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{}
}

// FindByUserID finds the profile owned by userID
func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Profile, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	// Default behavior: not found
	return nil, domain.ErrProfileNotFound
}

// Upsert creates or replaces a profile
func (m *MockProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, profile)
	}
	// Default behavior: success
	return nil
}

// MockChatRepository implements domain.ChatRepository interface for testing
type MockChatRepository struct {
	ListByUserFunc func(ctx context.Context, userID uint) ([]*domain.Chat, error)
	FindByIDFunc   func(ctx context.Context, id string) (*domain.Chat, error)
	CreateFunc     func(ctx context.Context, chat *domain.Chat) error
	DeleteFunc     func(ctx context.Context, id string) error
}

// NewMockChatRepository creates a new MockChatRepository with default behaviors
func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{}
}

// ListByUser lists chats owned by userID
func (m *MockChatRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Chat, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	// Default behavior: empty list
	return []*domain.Chat{}, nil
}

// FindByID finds a chat by ID
func (m *MockChatRepository) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrChatNotFound
}

// Create stores a new chat
func (m *MockChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, chat)
	}
	// Default behavior: success
	return nil
}

// Delete removes a chat
func (m *MockChatRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	// Default behavior: success
	return nil
}

// Compile-time interface compliance verification
var (
	_ domain.ProfileRepository = (*MockProfileRepository)(nil)
	_ domain.ChatRepository    = (*MockChatRepository)(nil)
)
