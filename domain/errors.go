package domain

import (
	"errors"
	"fmt"
)

// Verification flow errors, detected locally before any provider call
var (
	ErrInvalidPhone   = errors.New("phone number must be in E.164 format, e.g. +15551234567")
	ErrOTPExpired     = errors.New("code expired, request a new one")
	ErrIncompleteAuth = errors.New("incomplete authentication response")
)

// Provider-side OTP errors
var (
	ErrOTPInvalid     = errors.New("invalid otp code")
	ErrOTPMaxAttempts = errors.New("maximum otp attempts exceeded")
	ErrOTPNotFound    = errors.New("otp not found")
	ErrOTPResendLimit = errors.New("otp resend limit exceeded")
)

// Account errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserInactive    = errors.New("user account is inactive")
	ErrProfileNotFound = errors.New("profile not found")
	ErrChatNotFound    = errors.New("chat not found")
	ErrInvalidRecord   = errors.New("invalid record")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")
	ErrNoRefreshToken  = errors.New("no refresh token present")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("access to record denied")

	ErrPolicyExists   = errors.New("policy already exists")
	ErrPolicyNotFound = errors.New("policy not found")
)

// ProviderErrorKind tags the failure reported by the auth provider
type ProviderErrorKind string

const (
	ProviderInvalidRequest ProviderErrorKind = "invalid_request"
	ProviderInvalidCode    ProviderErrorKind = "invalid_code"
	ProviderExpired        ProviderErrorKind = "expired"
	ProviderRateLimited    ProviderErrorKind = "rate_limited"
	ProviderNotFound       ProviderErrorKind = "not_found"
	ProviderUnauthorized   ProviderErrorKind = "unauthorized"
	ProviderUnavailable    ProviderErrorKind = "unavailable"
	ProviderInternal       ProviderErrorKind = "internal"
)

// ProviderError is returned by every AuthProvider call that fails.
// Message is shown to users verbatim.
type ProviderError struct {
	Op      string
	Kind    ProviderErrorKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsProviderKind reports whether err is a ProviderError of the given kind
func IsProviderKind(err error, kind ProviderErrorKind) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind == kind
	}
	return false
}
