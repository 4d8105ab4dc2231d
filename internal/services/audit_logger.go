package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/you/consultsite/domain"
)

// ZapAuditLogger implements domain.AuditLogger by writing structured log lines
type ZapAuditLogger struct {
	log *zap.Logger
}

// NewAuditLogger creates an audit logger on top of log
func NewAuditLogger(log *zap.Logger) *ZapAuditLogger {
	return &ZapAuditLogger{log: log.Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (a *ZapAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	fields := []zap.Field{
		zap.String("event_type", string(event.EventType)),
		zap.Uint("user_id", event.UserID),
		zap.Time("timestamp", event.Timestamp),
		zap.Bool("success", event.Success),
	}
	if event.Phone != "" {
		fields = append(fields, zap.String("phone", maskPhone(event.Phone)))
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("error", event.ErrorMsg))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if event.Success {
		a.log.Info("audit event", fields...)
	} else {
		a.log.Warn("audit event", fields...)
	}
	return nil
}

// maskPhone keeps the country code and last two digits
func maskPhone(phone string) string {
	if len(phone) <= 5 {
		return phone
	}
	masked := []byte(phone)
	for i := 3; i < len(masked)-2; i++ {
		masked[i] = '*'
	}
	return string(masked)
}

var _ domain.AuditLogger = (*ZapAuditLogger)(nil)
