package mocks

import (
	"sync"

	"github.com/you/consultsite/domain"
)

// SMS is one message handed to the notification mock.
type SMS struct {
	To   string
	Body string
}

// MockNotificationService records outgoing SMS instead of delivering them.
type MockNotificationService struct {
	SendSMSFunc func(to, message string) error

	mu   sync.Mutex
	Sent []SMS
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) SendSMS(to, message string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SMS{To: to, Body: message})
	m.mu.Unlock()
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(to, message)
	}
	return nil
}

// LastMessage returns the body of the most recent SMS, or "".
func (m *MockNotificationService) LastMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return ""
	}
	return m.Sent[len(m.Sent)-1].Body
}

// SentTo returns the bodies delivered to phone, oldest first.
func (m *MockNotificationService) SentTo(phone string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.Sent {
		if s.To == phone {
			out = append(out, s.Body)
		}
	}
	return out
}

var _ domain.NotificationService = (*MockNotificationService)(nil)
