package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/you/consultsite/domain"
)

const maxFieldLength = 255

// ProfileServiceImpl implements domain.ProfileService
type ProfileServiceImpl struct {
	profiles domain.ProfileRepository
	users    domain.UserRepository
	policy   *RecordPolicy
}

// NewProfileService creates a new profile service
func NewProfileService(profiles domain.ProfileRepository, users domain.UserRepository, policy *RecordPolicy) *ProfileServiceImpl {
	return &ProfileServiceImpl{profiles: profiles, users: users, policy: policy}
}

func profileObject(userID uint) string { return fmt.Sprintf("/profiles/%d", userID) }

// Get implements domain.ProfileService. A user without a stored profile
// gets an empty one carrying their account phone.
func (s *ProfileServiceImpl) Get(ctx context.Context, actor domain.Principal, ownerID uint) (*domain.Profile, error) {
	if err := s.policy.Authorize(ctx, actor, ownerID, profileObject(ownerID), "read"); err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByUserID(ctx, ownerID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{UserID: ownerID, Phone: user.Phone, Email: user.Email}, nil
}

// Update implements domain.ProfileService
func (s *ProfileServiceImpl) Update(ctx context.Context, actor domain.Principal, profile *domain.Profile) (*domain.Profile, error) {
	if err := s.policy.Authorize(ctx, actor, profile.UserID, profileObject(profile.UserID), "write"); err != nil {
		return nil, err
	}

	updated := *profile
	updated.FullName = strings.TrimSpace(updated.FullName)
	updated.Company = strings.TrimSpace(updated.Company)
	updated.Email = strings.TrimSpace(updated.Email)
	updated.Phone = strings.TrimSpace(updated.Phone)

	for _, v := range []string{updated.FullName, updated.Company, updated.Email} {
		if len(v) > maxFieldLength {
			return nil, fmt.Errorf("%w: field longer than %d characters", domain.ErrInvalidRecord, maxFieldLength)
		}
	}
	if updated.Email != "" {
		if _, err := mail.ParseAddress(updated.Email); err != nil {
			return nil, fmt.Errorf("%w: email address is not valid", domain.ErrInvalidRecord)
		}
	}

	if err := s.profiles.Upsert(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return &updated, nil
}

// ChatServiceImpl implements domain.ChatService
type ChatServiceImpl struct {
	chats  domain.ChatRepository
	policy *RecordPolicy
	now    func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(chats domain.ChatRepository, policy *RecordPolicy) *ChatServiceImpl {
	return &ChatServiceImpl{chats: chats, policy: policy, now: time.Now}
}

func userChatsObject(userID uint) string { return fmt.Sprintf("/users/%d/chats", userID) }

// List implements domain.ChatService
func (s *ChatServiceImpl) List(ctx context.Context, actor domain.Principal) ([]*domain.Chat, error) {
	if err := s.policy.Authorize(ctx, actor, actor.UserID, userChatsObject(actor.UserID), "read"); err != nil {
		return nil, err
	}
	return s.chats.ListByUser(ctx, actor.UserID)
}

// Create implements domain.ChatService
func (s *ChatServiceImpl) Create(ctx context.Context, actor domain.Principal, title string) (*domain.Chat, error) {
	if err := s.policy.Authorize(ctx, actor, actor.UserID, userChatsObject(actor.UserID), "write"); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled chat"
	}
	if len(title) > maxFieldLength {
		return nil, fmt.Errorf("%w: title longer than %d characters", domain.ErrInvalidRecord, maxFieldLength)
	}

	chat := &domain.Chat{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		Title:     title,
		CreatedAt: s.now(),
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat, nil
}

// Delete implements domain.ChatService
func (s *ChatServiceImpl) Delete(ctx context.Context, actor domain.Principal, chatID string) error {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	if err := s.policy.Authorize(ctx, actor, chat.UserID, "/chats/"+chat.ID, "delete"); err != nil {
		return err
	}
	return s.chats.Delete(ctx, chat.ID)
}

var (
	_ domain.ProfileService = (*ProfileServiceImpl)(nil)
	_ domain.ChatService    = (*ChatServiceImpl)(nil)
)
