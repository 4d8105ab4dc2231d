package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/consultsite/domain"
)

// SessionRepositoryImpl implements domain.SessionRepository using Redis.
// The key TTL follows the session's own expiry.
type SessionRepositoryImpl struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(client redis.Cmdable) domain.SessionRepository {
	return &SessionRepositoryImpl{
		client: client,
		prefix: "session:",
		now:    time.Now,
	}
}

func (r *SessionRepositoryImpl) key(id string) string { return r.prefix + id }

// Create implements domain.SessionRepository
func (r *SessionRepositoryImpl) Create(ctx context.Context, session *domain.StoredSession) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return domain.ErrSessionExpired
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return r.client.Set(ctx, r.key(session.ID), data, ttl).Err()
}

// FindByID implements domain.SessionRepository
func (r *SessionRepositoryImpl) FindByID(ctx context.Context, sessionID string) (*domain.StoredSession, error) {
	key := r.key(sessionID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.StoredSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if !session.ExpiresAt.After(r.now()) {
		r.client.Del(ctx, key)
		return nil, domain.ErrSessionExpired
	}

	return &session, nil
}

// Extend implements domain.SessionRepository
func (r *SessionRepositoryImpl) Extend(ctx context.Context, sessionID string, expiresAt time.Time) error {
	session, err := r.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	session.ExpiresAt = expiresAt
	return r.Create(ctx, session)
}

// Delete implements domain.SessionRepository
func (r *SessionRepositoryImpl) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
