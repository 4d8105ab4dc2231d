package provider

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/logger"
)

const unavailableMessage = "authentication service is unavailable, try again shortly"

var kinds = []struct {
	err  error
	kind domain.ProviderErrorKind
}{
	{domain.ErrInvalidPhone, domain.ProviderInvalidRequest},
	{domain.ErrInvalidRecord, domain.ProviderInvalidRequest},
	{domain.ErrOTPInvalid, domain.ProviderInvalidCode},
	{domain.ErrOTPNotFound, domain.ProviderExpired},
	{domain.ErrOTPMaxAttempts, domain.ProviderRateLimited},
	{domain.ErrOTPResendLimit, domain.ProviderRateLimited},
	{domain.ErrUserNotFound, domain.ProviderNotFound},
	{domain.ErrUserInactive, domain.ProviderUnauthorized},
	{domain.ErrTokenInvalid, domain.ProviderUnauthorized},
	{domain.ErrTokenExpired, domain.ProviderUnauthorized},
	{domain.ErrTokenMalformed, domain.ProviderUnauthorized},
	{domain.ErrSessionNotFound, domain.ProviderUnauthorized},
	{domain.ErrSessionExpired, domain.ProviderUnauthorized},
	{domain.ErrNoRefreshToken, domain.ProviderUnauthorized},
	{domain.ErrIncompleteAuth, domain.ProviderInternal},
	{context.Canceled, domain.ProviderUnavailable},
	{context.DeadlineExceeded, domain.ProviderUnavailable},
}

// Classify turns a backend error into a *domain.ProviderError for op.
// Known sentinels keep their text as the user-facing message; anything
// else is logged and reported as unavailable.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return perr
	}

	for _, k := range kinds {
		if errors.Is(err, k.err) {
			msg := err.Error()
			if k.kind == domain.ProviderUnavailable {
				msg = unavailableMessage
			}
			return &domain.ProviderError{Op: op, Kind: k.kind, Message: msg, Err: err}
		}
	}

	logger.Error("provider call failed", zap.String("op", op), zap.Error(err))
	return &domain.ProviderError{Op: op, Kind: domain.ProviderUnavailable, Message: unavailableMessage, Err: err}
}

// noSession reports errors that only mean the visitor is signed out
func noSession(err error) bool {
	return domain.IsProviderKind(err, domain.ProviderUnauthorized) ||
		domain.IsProviderKind(err, domain.ProviderNotFound)
}
