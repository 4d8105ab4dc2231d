package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/infrastructure/database"
	"github.com/you/consultsite/internal/logger"
)

// OTPServiceImpl implements domain.OTPService using Redis persistence.
// Codes are stored hashed; the clear code only leaves through SMS.
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	hasher          domain.CodeHasher
	redisClient     redis.Cmdable
	config          OTPConfig
	audit           domain.AuditLogger
	now             func() time.Time
}

type OTPConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

// NewOTPService creates a new Redis-based OTP service
func NewOTPService(notificationSvc domain.NotificationService, hasher domain.CodeHasher, redisClient redis.Cmdable, config OTPConfig, audit domain.AuditLogger) *OTPServiceImpl {
	return &OTPServiceImpl{
		notificationSvc: notificationSvc,
		hasher:          hasher,
		redisClient:     redisClient,
		config:          config,
		audit:           audit,
		now:             time.Now,
	}
}

func otpKey(phone string) string      { return "otp:" + phone }
func attemptsKey(phone string) string { return "otp:att:" + phone }
func resendKey(phone string) string   { return "otp:res:" + phone }

// Generate implements domain.OTPService
func (s *OTPServiceImpl) Generate(ctx context.Context, phone string) (*domain.OTPRequest, error) {
	// The throttle marker is taken atomically so two racing requests cannot both send
	if s.config.ResendWindow > 0 {
		ok, err := database.SetNX(ctx, s.redisClient, resendKey(phone), 1, s.config.ResendWindow)
		if err != nil {
			return nil, fmt.Errorf("failed to set resend throttle: %w", err)
		}
		if !ok {
			wait := s.throttleWait(ctx, phone)
			err := fmt.Errorf("%w: retry in %d seconds", domain.ErrOTPResendLimit, wait)
			s.log(ctx, domain.NewAuditEvent(domain.PhoneOTPRequestEvent, 0).WithPhone(phone).WithError(err))
			return nil, err
		}
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}
	hashed, err := s.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("failed to hash OTP code: %w", err)
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, otpKey(phone), hashed, s.config.TTL)
		pipe.Set(ctx, attemptsKey(phone), 0, s.config.TTL)
		return nil
	})
	if err != nil {
		s.cleanup(ctx, phone, "store failed", resendKey(phone))
		return nil, fmt.Errorf("failed to store OTP in Redis: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(s.config.TTL.Minutes()))
	if err := s.notificationSvc.SendSMS(phone, message); err != nil {
		// nothing was delivered, so the visitor may try again at once
		s.cleanup(ctx, phone, "sms failed", otpKey(phone), attemptsKey(phone), resendKey(phone))
		s.log(ctx, domain.NewAuditEvent(domain.PhoneOTPRequestEvent, 0).WithPhone(phone).WithError(err))
		return nil, fmt.Errorf("failed to send OTP SMS: %w", err)
	}
	s.log(ctx, domain.NewAuditEvent(domain.PhoneOTPRequestEvent, 0).WithPhone(phone))

	return &domain.OTPRequest{
		Phone:     phone,
		Code:      code,
		ExpiresAt: s.now().Add(s.config.TTL),
	}, nil
}

// Verify implements domain.OTPService
func (s *OTPServiceImpl) Verify(ctx context.Context, phone, code string) (bool, error) {
	hashed, err := s.redisClient.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return false, domain.ErrOTPNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to get OTP from Redis: %w", err)
	}

	// INCR keeps the TTL set by Generate
	attempts, err := s.redisClient.Incr(ctx, attemptsKey(phone)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment attempts: %w", err)
	}
	if attempts > int64(s.config.MaxAttempts) {
		s.cleanup(ctx, phone, "max attempts", otpKey(phone), attemptsKey(phone))
		return false, domain.ErrOTPMaxAttempts
	}

	if !s.hasher.Verify(hashed, code) {
		return false, domain.ErrOTPInvalid
	}

	s.cleanup(ctx, phone, "verified", otpKey(phone), attemptsKey(phone))
	return true, nil
}

// CanResend implements domain.OTPService
func (s *OTPServiceImpl) CanResend(ctx context.Context, phone string) (bool, int64, error) {
	ttl, err := s.redisClient.TTL(ctx, resendKey(phone)).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check resend TTL: %w", err)
	}

	// TTL <= 0 means the key is gone
	if ttl <= 0 {
		return true, 0, nil
	}

	return false, int64(ttl.Seconds()), nil
}

// throttleWait returns the seconds left on the resend marker. A marker
// that lost its expiry would block the phone forever, so it is given the
// full window again.
func (s *OTPServiceImpl) throttleWait(ctx context.Context, phone string) int64 {
	_, wait, err := s.CanResend(ctx, phone)
	if err != nil {
		logger.Warn("resend throttle lookup failed", zap.String("phone", phone), zap.Error(err))
		return int64(s.config.ResendWindow.Seconds())
	}
	if wait > 0 {
		return wait
	}

	logger.Warn("resend throttle has no expiry, resetting", zap.String("phone", phone))
	if err := s.redisClient.Expire(ctx, resendKey(phone), s.config.ResendWindow).Err(); err != nil {
		logger.Error("resend throttle reset failed", zap.String("phone", phone), zap.Error(err))
	}
	return int64(s.config.ResendWindow.Seconds())
}

// cleanup drops OTP keys; a failure is only logged since the keys expire anyway
func (s *OTPServiceImpl) cleanup(ctx context.Context, phone, reason string, keys ...string) {
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("otp key cleanup failed",
			zap.String("phone", phone),
			zap.String("reason", reason),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	}
}

// generateSecureCode generates a cryptographically secure OTP code
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}

var _ domain.OTPService = (*OTPServiceImpl)(nil)

func (s *OTPServiceImpl) log(ctx context.Context, event *domain.AuditEvent) {
	if s.audit == nil {
		return
	}
	_ = s.audit.LogEvent(ctx, event)
}
