package mocks

import (
	"sync"

	"github.com/you/consultsite/domain"
)

// MockPolicyService is an in-memory domain.PolicyService seeded with the
// owner rules. CheckPermission only grants the owner role.
type MockPolicyService struct {
	AddPolicyFunc       func(role, resource, action string) error
	RemovePolicyFunc    func(role, resource, action string) error
	CheckPermissionFunc func(role, resource, action string) (bool, error)
	GetPoliciesFunc     func() [][]string

	mu       sync.Mutex
	policies [][]string
}

func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{
		policies: [][]string{
			{"role_owner", "/profiles/:id", "read|write"},
			{"role_owner", "/users/:id/chats", "read|write"},
			{"role_owner", "/chats/:id", "read|delete"},
		},
	}
}

func (m *MockPolicyService) AddPolicy(role, resource, action string) error {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(role, resource, action)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index(role, resource, action) >= 0 {
		return domain.ErrPolicyExists
	}
	m.policies = append(m.policies, []string{role, resource, action})
	return nil
}

func (m *MockPolicyService) RemovePolicy(role, resource, action string) error {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(role, resource, action)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(role, resource, action)
	if i < 0 {
		return domain.ErrPolicyNotFound
	}
	m.policies = append(m.policies[:i], m.policies[i+1:]...)
	return nil
}

func (m *MockPolicyService) CheckPermission(role, resource, action string) (bool, error) {
	if m.CheckPermissionFunc != nil {
		return m.CheckPermissionFunc(role, resource, action)
	}
	return role == "role_owner", nil
}

func (m *MockPolicyService) GetPolicies() [][]string {
	if m.GetPoliciesFunc != nil {
		return m.GetPoliciesFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.policies))
	copy(out, m.policies)
	return out
}

func (m *MockPolicyService) index(role, resource, action string) int {
	for i, p := range m.policies {
		if p[0] == role && p[1] == resource && p[2] == action {
			return i
		}
	}
	return -1
}

var _ domain.PolicyService = (*MockPolicyService)(nil)
