// Package otp drives the two-step phone verification seen by a visitor:
// request a code, then exchange it for a session before the local window closes.
package otp

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/you/consultsite/domain"
)

// DefaultWindow is how long a requested code may be submitted.
// The provider keeps its own, longer, expiry.
const DefaultWindow = 5 * time.Minute

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// ValidPhone reports whether phone is an E.164 number
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// Step is the UI step the flow is in
type Step string

const (
	StepPhone Step = "phone"
	StepCode  Step = "otp"
)

// Outcome is the result of a flow operation that did not fail.
// Skipped is set when another operation on the same flow was still running.
type Outcome struct {
	Skipped bool
	Session *domain.Session
	User    *domain.User
}

// State is a snapshot of the flow for rendering
type State struct {
	Step      Step
	Phone     string
	Code      string
	ExpiresAt time.Time
}

// Flow holds at most one PendingVerification for a single visitor
type Flow struct {
	id       string
	provider domain.AuthProvider
	window   time.Duration
	now      func() time.Time

	inFlight atomic.Bool

	mu      sync.Mutex
	step    Step
	pending *domain.PendingVerification
	code    string
}

// Option configures a Flow
type Option func(*Flow)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// WithWindow overrides DefaultWindow
func WithWindow(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.window = d
		}
	}
}

// NewFlow creates a flow in the phone step
func NewFlow(id string, provider domain.AuthProvider, opts ...Option) *Flow {
	f := &Flow{
		id:       id,
		provider: provider,
		window:   DefaultWindow,
		now:      time.Now,
		step:     StepPhone,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID returns the flow identifier carried in the visitor's cookie
func (f *Flow) ID() string { return f.id }

// RequestCode asks the provider to text a code to phone
func (f *Flow) RequestCode(ctx context.Context, phone string) (Outcome, error) {
	return f.issue(ctx, phone, false)
}

// ResendCode behaves like RequestCode and also discards the entered code.
// It does not require an active pending verification.
func (f *Flow) ResendCode(ctx context.Context, phone string) (Outcome, error) {
	return f.issue(ctx, phone, true)
}

func (f *Flow) issue(ctx context.Context, phone string, resend bool) (Outcome, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		return Outcome{Skipped: true}, nil
	}
	defer f.inFlight.Store(false)

	if !ValidPhone(phone) {
		return Outcome{}, domain.ErrInvalidPhone
	}

	if resend {
		f.mu.Lock()
		f.code = ""
		f.mu.Unlock()
	}

	if err := f.provider.SendOTP(ctx, phone); err != nil {
		return Outcome{}, err
	}

	sentAt := f.now()
	f.mu.Lock()
	f.pending = &domain.PendingVerification{
		Phone:       phone,
		RequestedAt: sentAt,
		ExpiresAt:   sentAt.Add(f.window),
	}
	f.step = StepCode
	f.mu.Unlock()

	return Outcome{}, nil
}

// VerifyCode exchanges code for a session. An expired or missing pending
// verification fails with domain.ErrOTPExpired and the provider is not called.
func (f *Flow) VerifyCode(ctx context.Context, phone, code string, jar domain.CookieJar) (Outcome, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		return Outcome{Skipped: true}, nil
	}
	defer f.inFlight.Store(false)

	f.mu.Lock()
	f.code = code
	pending := f.pending
	f.mu.Unlock()

	if pending == nil || pending.Phone != phone || pending.Expired(f.now()) {
		return Outcome{}, domain.ErrOTPExpired
	}

	result, err := f.provider.VerifyOTP(ctx, phone, code, jar)
	if err != nil {
		return Outcome{}, err
	}
	if result == nil || result.User == nil || result.Session == nil {
		return Outcome{}, domain.ErrIncompleteAuth
	}

	f.Reset()
	return Outcome{Session: result.Session, User: result.User}, nil
}

// Reset drops any pending verification and returns to the phone step
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = nil
	f.code = ""
	f.step = StepPhone
}

// Pending returns a copy of the active pending verification, if any
func (f *Flow) Pending() (domain.PendingVerification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return domain.PendingVerification{}, false
	}
	return *f.pending, true
}

// Remaining is the countdown shown next to the code input
func (f *Flow) Remaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil {
		return 0
	}
	left := f.pending.ExpiresAt.Sub(f.now())
	if left < 0 {
		return 0
	}
	return left
}

// State returns a snapshot for rendering
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := State{Step: f.step, Code: f.code}
	if f.pending != nil {
		s.Phone = f.pending.Phone
		s.ExpiresAt = f.pending.ExpiresAt
	}
	return s
}
