package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/infrastructure/auth"
	"github.com/you/consultsite/internal/mocks"
)

const testPhone = "+15551234567"

// recordingAudit collects audit events for assertions
type recordingAudit struct {
	events []*domain.AuditEvent
}

func (r *recordingAudit) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingAudit) types() []domain.AuditEventType {
	out := make([]domain.AuditEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}

// setupTestRedis starts miniredis for the test
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// createTestOTPConfig creates a test OTP configuration
func createTestOTPConfig(t *testing.T) OTPConfig {
	t.Helper()

	return OTPConfig{
		Length:       6,
		TTL:          10 * time.Minute,
		MaxAttempts:  3,
		ResendWindow: 30 * time.Second,
	}
}

// createOTPServiceForTest creates an OTPService on miniredis with a mock SMS sender
func createOTPServiceForTest(t *testing.T) (*OTPServiceImpl, *mocks.MockNotificationService, *miniredis.Miniredis) {
	t.Helper()

	mr, client := setupTestRedis(t)
	notificationSvc := mocks.NewMockNotificationService()
	svc := NewOTPService(notificationSvc, auth.NewCodeHasher(4), client, createTestOTPConfig(t), &recordingAudit{})
	return svc, notificationSvc, mr
}

type authServiceDeps struct {
	users    *mocks.MockUserRepository
	sessions *mocks.MockSessionRepository
	tokens   *mocks.MockTokenService
	otp      *mocks.MockOTPService
	audit    *recordingAudit
}

// createAuthServiceForTest creates an AuthService with mock dependencies for testing
func createAuthServiceForTest(t *testing.T) (*AuthServiceImpl, *authServiceDeps) {
	t.Helper()

	deps := &authServiceDeps{
		users:    mocks.NewMockUserRepository(),
		sessions: mocks.NewMockSessionRepository(),
		tokens:   mocks.NewMockTokenService(),
		otp:      mocks.NewMockOTPService(),
		audit:    &recordingAudit{},
	}
	svc := NewAuthService(deps.users, deps.sessions, deps.tokens, deps.otp, deps.audit)
	return svc, deps
}

// createValidUser creates a valid user entity for testing
func createValidUser(t *testing.T) *domain.User {
	t.Helper()

	return &domain.User{
		ID:            1,
		Phone:         testPhone,
		Role:          "user",
		IsActive:      true,
		PhoneVerified: true,
		CreatedAt:     time.Now().Add(-24 * time.Hour),
		UpdatedAt:     time.Now().Add(-1 * time.Hour),
	}
}

// createStoredSession creates a live provider-side session
func createStoredSession(t *testing.T, id string, userID uint) *domain.StoredSession {
	t.Helper()

	return &domain.StoredSession{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

// createValidTokenClaims creates claims of typ for the session
func createValidTokenClaims(t *testing.T, userID uint, role, sessionID, typ string) *domain.TokenClaims {
	t.Helper()

	now := time.Now()
	return &domain.TokenClaims{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		Type:      typ,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(15 * time.Minute).Unix(),
	}
}

// createRecordPolicyForTest builds a RecordPolicy on the mock casbin enforcer seeded with the default policies
func createRecordPolicyForTest(t *testing.T) (*RecordPolicy, *recordingAudit) {
	t.Helper()

	enforcer := mocks.NewMockCasbinEnforcer()
	enforcer.SetPolicies(auth.DefaultRecordPolicies)
	audit := &recordingAudit{}
	return NewRecordPolicy(NewPolicyServiceWithEnforcer(enforcer), audit), audit
}

func requireNoAuditOf(t *testing.T, audit *recordingAudit, eventType domain.AuditEventType) {
	t.Helper()
	require.NotContains(t, audit.types(), eventType)
}
