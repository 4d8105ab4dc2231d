package domain

import (
	"context"
	"time"
)

// AuditEventType names something that happened to an account or a record.
type AuditEventType string

const (
	PhoneOTPRequestEvent AuditEventType = "PHONE_OTP_REQUESTED"
	PhoneOTPVerifyEvent  AuditEventType = "PHONE_OTP_VERIFIED"
	PhoneOTPFailureEvent AuditEventType = "PHONE_OTP_VERIFICATION_FAILED"

	UserSignInEvent       AuditEventType = "USER_SIGNED_IN"
	UserSignOutEvent      AuditEventType = "USER_SIGNED_OUT"
	SessionRefreshedEvent AuditEventType = "SESSION_REFRESHED"

	// emitted by the record policy
	AccessGrantedEvent AuditEventType = "ACCESS_GRANTED"
	AccessDeniedEvent  AuditEventType = "ACCESS_DENIED"
)

// AuditEvent is one audit trail entry. UserID is zero when the account is
// not known yet, e.g. for code requests.
type AuditEvent struct {
	EventType AuditEventType `json:"event_type"`
	UserID    uint           `json:"user_id"`
	Phone     string         `json:"phone,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Success   bool           `json:"success"`
	ErrorMsg  string         `json:"error_msg,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type AuditLogger interface {
	LogEvent(ctx context.Context, event *AuditEvent) error
}

// NewAuditEvent starts a successful event stamped with the current UTC time.
func NewAuditEvent(eventType AuditEventType, userID uint) *AuditEvent {
	return &AuditEvent{
		EventType: eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Success:   true,
	}
}

// WithError marks the event failed.
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

func (e *AuditEvent) WithPhone(phone string) *AuditEvent {
	e.Phone = phone
	return e
}

func (e *AuditEvent) WithSession(sessionID string) *AuditEvent {
	e.SessionID = sessionID
	return e
}

func (e *AuditEvent) WithMetadata(key string, value any) *AuditEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}
