package mocks

import (
	"sync"

	"github.com/casbin/casbin/v2/util"
	"github.com/you/consultsite/domain"
)

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing.
// Its default Enforce mirrors config/record_model.conf: exact subject,
// keyMatch2 on the object and regexMatch on the action.
type MockCasbinEnforcer struct {
	HasPolicyFunc    func(params ...interface{}) (bool, error)
	AddPolicyFunc    func(params ...interface{}) (bool, error)
	RemovePolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc      func(rvals ...interface{}) (bool, error)
	GetPolicyFunc    func() ([][]string, error)
	SavePolicyFunc   func() error

	mu       sync.Mutex
	policies [][]string
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer seeded with the record policies
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{
		policies: [][]string{
			{"role_owner", "/profiles/:id", "read|write"},
			{"role_owner", "/users/:id/chats", "read|write"},
			{"role_owner", "/chats/:id", "read|delete"},
			{"role_admin", "/profiles/:id", "read"},
			{"role_admin", "/chats/:id", "read|delete"},
		},
	}
}

func toStrings(params []interface{}) []string {
	out := make([]string, len(params))
	for i, param := range params {
		if str, ok := param.(string); ok {
			out[i] = str
		}
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// HasPolicy reports whether the exact rule is stored
func (m *MockCasbinEnforcer) HasPolicy(params ...interface{}) (bool, error) {
	if m.HasPolicyFunc != nil {
		return m.HasPolicyFunc(params...)
	}
	policy := toStrings(params)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.policies {
		if equal(p, policy) {
			return true, nil
		}
	}
	return false, nil
}

// AddPolicy adds a new policy rule
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	if len(params) < 3 {
		return false, nil
	}

	policy := toStrings(params)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.policies {
		if equal(p, policy) {
			return false, nil
		}
	}
	m.policies = append(m.policies, policy)
	return true, nil
}

// RemovePolicy removes a policy rule
func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}

	target := toStrings(params)
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.policies {
		if equal(p, target) {
			m.policies = append(m.policies[:i], m.policies[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Enforce checks if a request should be allowed
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	if len(rvals) < 3 {
		return false, nil
	}

	req := toStrings(rvals)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.policies {
		if len(p) < 3 || p[0] != req[0] {
			continue
		}
		if util.KeyMatch2(req[1], p[1]) && util.RegexMatch(req[2], p[2]) {
			return true, nil
		}
	}
	return false, nil
}

// GetPolicy returns all policies
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([][]string, len(m.policies))
	for i, policy := range m.policies {
		result[i] = append([]string(nil), policy...)
	}
	return result, nil
}

// SavePolicy saves all policies
func (m *MockCasbinEnforcer) SavePolicy() error {
	if m.SavePolicyFunc != nil {
		return m.SavePolicyFunc()
	}
	// Default behavior: success
	return nil
}

// SetPolicies sets the internal policies (test helper)
func (m *MockCasbinEnforcer) SetPolicies(policies [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies = make([][]string, len(policies))
	for i, policy := range policies {
		m.policies[i] = append([]string(nil), policy...)
	}
}
