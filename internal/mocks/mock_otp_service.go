package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/you/consultsite/domain"
)

// MockCode is the code the mock OTP service issues and accepts
const MockCode = "123456"

// MockOTPService implements domain.OTPService. It records the phones it
// was asked to text and accepts MockCode for any phone.
type MockOTPService struct {
	GenerateFunc  func(ctx context.Context, phone string) (*domain.OTPRequest, error)
	VerifyFunc    func(ctx context.Context, phone, code string) (bool, error)
	CanResendFunc func(ctx context.Context, phone string) (bool, int64, error)

	mu        sync.Mutex
	requested []string
}

func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Requested returns the phones passed to Generate, in call order
func (m *MockOTPService) Requested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.requested...)
}

func (m *MockOTPService) Generate(ctx context.Context, phone string) (*domain.OTPRequest, error) {
	m.mu.Lock()
	m.requested = append(m.requested, phone)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, phone)
	}
	return &domain.OTPRequest{
		Phone:     phone,
		Code:      MockCode,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil
}

func (m *MockOTPService) Verify(ctx context.Context, phone, code string) (bool, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, phone, code)
	}
	if code != MockCode {
		return false, domain.ErrOTPInvalid
	}
	return true, nil
}

func (m *MockOTPService) CanResend(ctx context.Context, phone string) (bool, int64, error) {
	if m.CanResendFunc != nil {
		return m.CanResendFunc(ctx, phone)
	}
	return true, 0, nil
}

var _ domain.OTPService = (*MockOTPService)(nil)
