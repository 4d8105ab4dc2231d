package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/mocks"
)

func TestProfileServiceImpl_Get(t *testing.T) {
	policy, _ := createRecordPolicyForTest(t)
	profiles := mocks.NewMockProfileRepository()
	users := mocks.NewMockUserRepository()
	users.FindByIDFunc = func(ctx context.Context, id uint) (*domain.User, error) {
		return createValidUser(t), nil
	}
	svc := NewProfileService(profiles, users, policy)
	owner := domain.Principal{UserID: 1, Role: "user"}

	t.Run("empty profile for new account", func(t *testing.T) {
		p, err := svc.Get(context.Background(), owner, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(1), p.UserID)
		assert.Equal(t, testPhone, p.Phone)
		assert.Empty(t, p.FullName)
	})

	t.Run("stored profile", func(t *testing.T) {
		profiles.FindByUserIDFunc = func(ctx context.Context, id uint) (*domain.Profile, error) {
			return &domain.Profile{UserID: id, FullName: "Grace Hopper"}, nil
		}
		p, err := svc.Get(context.Background(), owner, 1)
		require.NoError(t, err)
		assert.Equal(t, "Grace Hopper", p.FullName)
	})

	t.Run("someone else's profile", func(t *testing.T) {
		_, err := svc.Get(context.Background(), domain.Principal{UserID: 2, Role: "user"}, 1)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestProfileServiceImpl_Update(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Principal
		profile domain.Profile
		wantErr error
	}{
		{
			name:    "owner saves trimmed fields",
			actor:   domain.Principal{UserID: 1, Role: "user"},
			profile: domain.Profile{UserID: 1, FullName: "  Grace Hopper ", Email: "grace@example.com"},
		},
		{
			name:    "bad email",
			actor:   domain.Principal{UserID: 1, Role: "user"},
			profile: domain.Profile{UserID: 1, Email: "not-an-email"},
			wantErr: domain.ErrInvalidRecord,
		},
		{
			name:    "admin may only read",
			actor:   domain.Principal{UserID: 3, Role: "admin"},
			profile: domain.Profile{UserID: 1, FullName: "x"},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, _ := createRecordPolicyForTest(t)
			profiles := mocks.NewMockProfileRepository()
			var saved *domain.Profile
			profiles.UpsertFunc = func(ctx context.Context, p *domain.Profile) error {
				saved = p
				return nil
			}
			svc := NewProfileService(profiles, mocks.NewMockUserRepository(), policy)

			in := tt.profile
			out, err := svc.Update(context.Background(), tt.actor, &in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, saved)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Grace Hopper", out.FullName)
			assert.Equal(t, out, saved)
		})
	}
}

func TestChatServiceImpl(t *testing.T) {
	policy, _ := createRecordPolicyForTest(t)
	repo := mocks.NewMockChatRepository()
	store := map[string]*domain.Chat{}
	repo.CreateFunc = func(ctx context.Context, c *domain.Chat) error {
		store[c.ID] = c
		return nil
	}
	repo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Chat, error) {
		if c, ok := store[id]; ok {
			return c, nil
		}
		return nil, domain.ErrChatNotFound
	}
	repo.DeleteFunc = func(ctx context.Context, id string) error {
		delete(store, id)
		return nil
	}
	repo.ListByUserFunc = func(ctx context.Context, userID uint) ([]*domain.Chat, error) {
		var out []*domain.Chat
		for _, c := range store {
			if c.UserID == userID {
				out = append(out, c)
			}
		}
		return out, nil
	}
	svc := NewChatService(repo, policy)
	ctx := context.Background()
	owner := domain.Principal{UserID: 1, Role: "user"}
	stranger := domain.Principal{UserID: 2, Role: "user"}

	chat, err := svc.Create(ctx, owner, "  ")
	require.NoError(t, err)
	assert.Equal(t, "Untitled chat", chat.Title)
	assert.Len(t, chat.ID, 36)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.List(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, chat.ID), domain.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, owner, chat.ID))
	assert.ErrorIs(t, svc.Delete(ctx, owner, chat.ID), domain.ErrChatNotFound)

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Create(ctx, owner, string(long))
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}
