package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/mocks"
)

// createPolicyServiceForTest creates a PolicyService with mock Casbin enforcer
func createPolicyServiceForTest(t *testing.T) (domain.PolicyService, *mocks.MockCasbinEnforcer) {
	t.Helper()

	enforcer := mocks.NewMockCasbinEnforcer()
	return NewPolicyServiceWithEnforcer(enforcer), enforcer
}

func TestPolicyServiceImpl_AddAndRemove(t *testing.T) {
	svc, enforcer := createPolicyServiceForTest(t)
	saves := 0
	enforcer.SavePolicyFunc = func() error {
		saves++
		return nil
	}

	require.NoError(t, svc.AddPolicy("role_support", "/chats/:id", "read"))
	ok, err := svc.CheckPermission("role_support", "/chats/abc", "read")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.RemovePolicy("role_support", "/chats/:id", "read"))
	ok, err = svc.CheckPermission("role_support", "/chats/abc", "read")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 2, saves)
}

func TestPolicyServiceImpl_Errors(t *testing.T) {
	svc, enforcer := createPolicyServiceForTest(t)
	boom := errors.New("adapter unavailable")

	enforcer.AddPolicyFunc = func(params ...interface{}) (bool, error) { return false, boom }
	assert.ErrorIs(t, svc.AddPolicy("role_support", "/chats/:id", "read"), boom)

	enforcer.HasPolicyFunc = func(params ...interface{}) (bool, error) { return false, boom }
	assert.ErrorIs(t, svc.AddPolicy("role_support", "/chats/:id", "read"), boom)

	enforcer.RemovePolicyFunc = func(params ...interface{}) (bool, error) { return true, nil }
	enforcer.SavePolicyFunc = func() error { return boom }
	assert.ErrorIs(t, svc.RemovePolicy("role_support", "/chats/:id", "read"), boom)

	enforcer.EnforceFunc = func(rvals ...interface{}) (bool, error) { return false, boom }
	_, err := svc.CheckPermission("role_support", "/chats/c1", "read")
	assert.ErrorIs(t, err, boom)
}

func TestPolicyServiceImpl_RuleValidation(t *testing.T) {
	tests := []struct {
		name          string
		sub, obj, act string
		wantErr       error
	}{
		{"pattern object", "role_support", "/profiles/:id", "read", nil},
		{"concrete object", "role_support", "/chats/0b7e", "read|delete", nil},
		{"nested chats", "role_support", "/users/:id/chats", "write", nil},
		{"plain role name", "support", "/profiles/:id", "read", domain.ErrInvalidRecord},
		{"empty role", "role_", "/profiles/:id", "read", domain.ErrInvalidRecord},
		{"unknown object", "role_support", "/admin/policies", "read", domain.ErrInvalidRecord},
		{"object too deep", "role_support", "/profiles/1/extra", "read", domain.ErrInvalidRecord},
		{"unknown action", "role_support", "/profiles/:id", "read|export", domain.ErrInvalidRecord},
		{"wildcard action", "role_support", "/profiles/:id", ".*", domain.ErrInvalidRecord},
		{"already stored", "role_owner", "/profiles/:id", "read|write", domain.ErrPolicyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, enforcer := createPolicyServiceForTest(t)
			added := false
			enforcer.AddPolicyFunc = func(params ...interface{}) (bool, error) {
				added = true
				return true, nil
			}

			err := svc.AddPolicy(tt.sub, tt.obj, tt.act)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.True(t, added)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, added, "rejected rule must not reach casbin")
		})
	}
}

func TestPolicyServiceImpl_RemoveUnknown(t *testing.T) {
	svc, _ := createPolicyServiceForTest(t)

	err := svc.RemovePolicy("role_support", "/chats/:id", "read")
	assert.ErrorIs(t, err, domain.ErrPolicyNotFound)
}

func TestPolicyServiceImpl_GetPolicies(t *testing.T) {
	svc, _ := createPolicyServiceForTest(t)
	policies := svc.GetPolicies()
	assert.Contains(t, policies, []string{"role_owner", "/profiles/:id", "read|write"})
}

func TestRecordPolicy_Authorize(t *testing.T) {
	owner := domain.Principal{UserID: 1, Role: "user"}
	stranger := domain.Principal{UserID: 2, Role: "user"}
	admin := domain.Principal{UserID: 3, Role: "admin"}
	anonymous := domain.Principal{}

	tests := []struct {
		name    string
		actor   domain.Principal
		ownerID uint
		object  string
		action  string
		allowed bool
	}{
		{"owner reads profile", owner, 1, "/profiles/1", "read", true},
		{"owner writes profile", owner, 1, "/profiles/1", "write", true},
		{"owner lists chats", owner, 1, "/users/1/chats", "read", true},
		{"owner deletes chat", owner, 1, "/chats/c1", "delete", true},
		{"stranger reads profile", stranger, 1, "/profiles/1", "read", false},
		{"stranger deletes chat", stranger, 1, "/chats/c1", "delete", false},
		{"admin reads profile", admin, 1, "/profiles/1", "read", true},
		{"admin cannot write profile", admin, 1, "/profiles/1", "write", false},
		{"admin deletes chat", admin, 1, "/chats/c1", "delete", true},
		{"anonymous never owns", anonymous, 0, "/profiles/0", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, audit := createRecordPolicyForTest(t)

			err := policy.Authorize(context.Background(), tt.actor, tt.ownerID, tt.object, tt.action)
			if tt.allowed {
				assert.NoError(t, err)
				assert.Equal(t, []domain.AuditEventType{domain.AccessGrantedEvent}, audit.types())
			} else {
				assert.ErrorIs(t, err, domain.ErrForbidden)
				assert.Equal(t, []domain.AuditEventType{domain.AccessDeniedEvent}, audit.types())
			}
		})
	}
}

func TestRecordPolicy_EnforcerError(t *testing.T) {
	enforcer := mocks.NewMockCasbinEnforcer()
	enforcer.EnforceFunc = func(rvals ...interface{}) (bool, error) {
		return false, errors.New("model not loaded")
	}
	policy := NewRecordPolicy(NewPolicyServiceWithEnforcer(enforcer), nil)

	err := policy.Authorize(context.Background(), domain.Principal{UserID: 1, Role: "user"}, 1, "/profiles/1", "read")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, err.Error(), "policy check failed")
}
