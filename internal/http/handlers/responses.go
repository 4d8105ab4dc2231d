package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/logger"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// providerStatus maps a provider failure kind to an HTTP status
func providerStatus(kind domain.ProviderErrorKind) int {
	switch kind {
	case domain.ProviderInvalidRequest, domain.ProviderInvalidCode, domain.ProviderExpired:
		return http.StatusBadRequest
	case domain.ProviderRateLimited:
		return http.StatusTooManyRequests
	case domain.ProviderNotFound:
		return http.StatusNotFound
	case domain.ProviderUnauthorized:
		return http.StatusUnauthorized
	case domain.ProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondFlowError renders an OTP flow failure. Provider messages and
// local validation messages are shown to the visitor as they are.
func respondFlowError(c *gin.Context, err error) {
	var perr *domain.ProviderError
	switch {
	case errors.As(err, &perr):
		respondError(c, providerStatus(perr.Kind), perr.Message)
	case errors.Is(err, domain.ErrInvalidPhone), errors.Is(err, domain.ErrOTPExpired):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrIncompleteAuth):
		respondError(c, http.StatusBadGateway, err.Error())
	default:
		logger.Error("otp flow failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "something went wrong, please try again")
	}
}

// respondRecordError renders a profile or chat failure
func respondRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrChatNotFound),
		errors.Is(err, domain.ErrPolicyNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrPolicyExists):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidRecord):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("record operation failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to process request")
	}
}
