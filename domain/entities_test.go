package domain

import (
	"testing"
	"time"
)

func TestPendingVerification_Expired(t *testing.T) {
	requested := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	pending := &PendingVerification{
		Phone:       "+15551234567",
		RequestedAt: requested,
		ExpiresAt:   requested.Add(5 * time.Minute),
	}

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{name: "just requested", now: requested, expected: false},
		{name: "one second before expiry", now: requested.Add(5*time.Minute - time.Second), expected: false},
		{name: "exactly at expiry", now: requested.Add(5 * time.Minute), expected: false},
		{name: "one millisecond after expiry", now: requested.Add(5*time.Minute + time.Millisecond), expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pending.Expired(tt.now); got != tt.expected {
				t.Errorf("Expired(%v) = %v, want %v", tt.now, got, tt.expected)
			}
		})
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		session  *Session
		expected bool
	}{
		{
			name:     "fresh access token",
			session:  &Session{ID: "s1", ExpiresAt: now.Add(15 * time.Minute)},
			expected: false,
		},
		{
			name:     "lapsed access token",
			session:  &Session{ID: "s2", ExpiresAt: now.Add(-time.Second)},
			expected: true,
		},
		{
			name:     "expiring now",
			session:  &Session{ID: "s3", ExpiresAt: now},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Expired(now); got != tt.expected {
				t.Errorf("Expired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewAuditEvent(t *testing.T) {
	event := NewAuditEvent(PhoneOTPRequestEvent, 7).
		WithPhone("+15551234567").
		WithSession("sess-1").
		WithMetadata("resend", true)

	if event.EventType != PhoneOTPRequestEvent {
		t.Errorf("expected event type %s, got %s", PhoneOTPRequestEvent, event.EventType)
	}
	if event.UserID != 7 {
		t.Errorf("expected user id 7, got %d", event.UserID)
	}
	if !event.Success {
		t.Error("new events should default to success")
	}
	if event.Phone != "+15551234567" || event.SessionID != "sess-1" {
		t.Errorf("unexpected phone/session: %q %q", event.Phone, event.SessionID)
	}
	if event.Metadata["resend"] != true {
		t.Error("expected resend metadata to be set")
	}
	if event.Timestamp.Location() != time.UTC {
		t.Error("expected UTC timestamp")
	}
}

func TestAuditEvent_WithError(t *testing.T) {
	event := NewAuditEvent(PhoneOTPFailureEvent, 1).WithError(ErrOTPInvalid)
	if event.Success {
		t.Error("expected Success to be false after WithError")
	}
	if event.ErrorMsg != ErrOTPInvalid.Error() {
		t.Errorf("expected error message %q, got %q", ErrOTPInvalid.Error(), event.ErrorMsg)
	}

	event = NewAuditEvent(PhoneOTPFailureEvent, 1).WithError(nil)
	if event.Success {
		t.Error("expected Success to be false even with nil error")
	}
	if event.ErrorMsg != "" {
		t.Errorf("expected empty error message, got %q", event.ErrorMsg)
	}
}
