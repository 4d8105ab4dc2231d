package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/you/consultsite/domain"
)

// DefaultRole is assigned to accounts created on first verification
const DefaultRole = "user"

// AuthServiceImpl implements domain.AuthService.
// It owns provider-side sessions: a Redis record keyed by session ID plus
// an access/refresh JWT pair bound to that ID.
type AuthServiceImpl struct {
	userRepo    domain.UserRepository
	sessionRepo domain.SessionRepository
	tokenSvc    domain.TokenService
	otpSvc      domain.OTPService
	audit       domain.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	audit domain.AuditLogger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokenSvc:    tokenSvc,
		otpSvc:      otpSvc,
		audit:       audit,
		now:         time.Now,
	}
}

// VerifyPhone implements domain.AuthService. The account is created on the
// first successful verification of a phone number.
func (s *AuthServiceImpl) VerifyPhone(ctx context.Context, phone, code string) (*domain.AuthResult, error) {
	if _, err := s.otpSvc.Verify(ctx, phone, code); err != nil {
		s.log(ctx, domain.NewAuditEvent(domain.PhoneOTPFailureEvent, 0).WithPhone(phone).WithError(err))
		return nil, err
	}

	user, err := s.findOrCreate(ctx, phone)
	if err != nil {
		return nil, err
	}
	s.log(ctx, domain.NewAuditEvent(domain.PhoneOTPVerifyEvent, user.ID).WithPhone(phone))

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log(ctx, domain.NewAuditEvent(domain.UserSignInEvent, user.ID).WithSession(session.ID))

	return &domain.AuthResult{User: user, Session: session}, nil
}

func (s *AuthServiceImpl) findOrCreate(ctx context.Context, phone string) (*domain.User, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, domain.ErrUserInactive
		}
		if !user.PhoneVerified {
			if err := s.userRepo.ActivatePhone(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("failed to activate phone: %w", err)
			}
			user.PhoneVerified = true
		}
		return user, nil
	case errors.Is(err, domain.ErrUserNotFound):
		now := s.now()
		user = &domain.User{
			Phone:         phone,
			Role:          DefaultRole,
			IsActive:      true,
			PhoneVerified: true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
}

func (s *AuthServiceImpl) startSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	sessionID := uuid.NewString()

	accessToken, accessExp, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, refreshExp, err := s.tokenSvc.GenerateRefreshToken(user.ID, user.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now()
	stored := &domain.StoredSession{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &domain.Session{
		ID:           sessionID,
		UserID:       user.ID,
		Role:         user.Role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		CreatedAt:    now,
		User:         user,
	}, nil
}

// Authenticate implements domain.AuthService
func (s *AuthServiceImpl) Authenticate(ctx context.Context, accessToken string) (*domain.Session, error) {
	claims, err := s.tokenSvc.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	stored, user, err := s.load(ctx, claims)
	if err != nil {
		return nil, err
	}

	return &domain.Session{
		ID:          stored.ID,
		UserID:      user.ID,
		Role:        user.Role,
		AccessToken: accessToken,
		ExpiresAt:   time.Unix(claims.ExpiresAt, 0),
		CreatedAt:   stored.CreatedAt,
		User:        user,
	}, nil
}

// ResolveUser implements domain.AuthService. Either token type is accepted
// as long as its session is still on record.
func (s *AuthServiceImpl) ResolveUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenSvc.ValidateAccessToken(token)
	if err != nil {
		if claims, err = s.tokenSvc.ValidateRefreshToken(token); err != nil {
			return nil, err
		}
	}

	_, user, err := s.load(ctx, claims)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Refresh implements domain.AuthService. Both tokens are rotated and the
// stored session is extended to the new refresh expiry.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	claims, err := s.tokenSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, user, err := s.load(ctx, claims)
	if err != nil {
		return nil, err
	}

	accessToken, accessExp, err := s.tokenSvc.GenerateAccessToken(user.ID, user.Role, stored.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	newRefresh, refreshExp, err := s.tokenSvc.GenerateRefreshToken(user.ID, user.Role, stored.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.sessionRepo.Extend(ctx, stored.ID, refreshExp); err != nil {
		return nil, fmt.Errorf("failed to extend session: %w", err)
	}

	s.log(ctx, domain.NewAuditEvent(domain.SessionRefreshedEvent, user.ID).WithSession(stored.ID))

	return &domain.Session{
		ID:           stored.ID,
		UserID:       user.ID,
		Role:         user.Role,
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp,
		CreatedAt:    stored.CreatedAt,
		User:         user,
	}, nil
}

// Logout implements domain.AuthService. token may be either type.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := s.tokenSvc.ValidateAccessToken(token)
	if err != nil {
		if claims, err = s.tokenSvc.ValidateRefreshToken(token); err != nil {
			return err
		}
	}

	if err := s.sessionRepo.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.log(ctx, domain.NewAuditEvent(domain.UserSignOutEvent, claims.UserID).WithSession(claims.SessionID))
	return nil
}

// load checks that the session behind claims is still on record and its user may sign in
func (s *AuthServiceImpl) load(ctx context.Context, claims *domain.TokenClaims) (*domain.StoredSession, *domain.User, error) {
	stored, err := s.sessionRepo.FindByID(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if stored.UserID != claims.UserID {
		return nil, nil, domain.ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, domain.ErrUserInactive
	}
	return stored, user, nil
}

func (s *AuthServiceImpl) log(ctx context.Context, event *domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	_ = s.audit.LogEvent(ctx, event)
}

var _ domain.AuthService = (*AuthServiceImpl)(nil)
