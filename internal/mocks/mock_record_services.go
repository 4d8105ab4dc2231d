package mocks

import (
	"context"
	"time"

	"github.com/you/consultsite/domain"
)

// MockProfileService implements domain.ProfileService for handler tests
type MockProfileService struct {
	GetFunc    func(ctx context.Context, actor domain.Principal, ownerID uint) (*domain.Profile, error)
	UpdateFunc func(ctx context.Context, actor domain.Principal, profile *domain.Profile) (*domain.Profile, error)
}

// NewMockProfileService creates a profile service that lets owners through
func NewMockProfileService() *MockProfileService {
	return &MockProfileService{}
}

func (m *MockProfileService) Get(ctx context.Context, actor domain.Principal, ownerID uint) (*domain.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, actor, ownerID)
	}
	if actor.UserID != ownerID {
		return nil, domain.ErrForbidden
	}
	return &domain.Profile{UserID: ownerID, Phone: "+15551234567"}, nil
}

func (m *MockProfileService) Update(ctx context.Context, actor domain.Principal, profile *domain.Profile) (*domain.Profile, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, profile)
	}
	if actor.UserID != profile.UserID {
		return nil, domain.ErrForbidden
	}
	updated := *profile
	updated.UpdatedAt = time.Now()
	return &updated, nil
}

// MockChatService implements domain.ChatService for handler tests
type MockChatService struct {
	ListFunc   func(ctx context.Context, actor domain.Principal) ([]*domain.Chat, error)
	CreateFunc func(ctx context.Context, actor domain.Principal, title string) (*domain.Chat, error)
	DeleteFunc func(ctx context.Context, actor domain.Principal, chatID string) error
}

// NewMockChatService creates a chat service with an empty history
func NewMockChatService() *MockChatService {
	return &MockChatService{}
}

func (m *MockChatService) List(ctx context.Context, actor domain.Principal) ([]*domain.Chat, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor)
	}
	return []*domain.Chat{}, nil
}

func (m *MockChatService) Create(ctx context.Context, actor domain.Principal, title string) (*domain.Chat, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, title)
	}
	return &domain.Chat{ID: "mock_chat_id", UserID: actor.UserID, Title: title, CreatedAt: time.Now()}, nil
}

func (m *MockChatService) Delete(ctx context.Context, actor domain.Principal, chatID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, chatID)
	}
	return nil
}

var (
	_ domain.ProfileService = (*MockProfileService)(nil)
	_ domain.ChatService    = (*MockChatService)(nil)
)
