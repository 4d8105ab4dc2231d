package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/util"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/infrastructure/auth"
)

// recordObjects are the keyMatch2 patterns a record policy may name.
// A rule may use the pattern itself or one concrete record path.
var recordObjects = []string{
	"/profiles/:id",
	"/users/:id/chats",
	"/chats/:id",
}

var recordActions = map[string]bool{"read": true, "write": true, "delete": true}

var _ domain.CasbinEnforcer = (*casbin.Enforcer)(nil)

// PolicyServiceImpl manages the record policy rules stored through casbin.
// Rules are (role subject, record object, action regex) triples.
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return &PolicyServiceImpl{enforcer: enforcer}
}

// NewPolicyServiceWithEnforcer is used by tests to substitute the enforcer
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{enforcer: enforcer}
}

// validateRule checks that a rule names a role subject, a record object
// and only known actions.
func validateRule(subject, object, action string) error {
	if !strings.HasPrefix(subject, "role_") || len(subject) == len("role_") {
		return fmt.Errorf("%w: subject %q must be role_<name>", domain.ErrInvalidRecord, subject)
	}

	known := false
	for _, pattern := range recordObjects {
		if util.KeyMatch2(object, pattern) {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: object %q is not a record path", domain.ErrInvalidRecord, object)
	}

	for _, a := range strings.Split(action, "|") {
		if !recordActions[a] {
			return fmt.Errorf("%w: action %q must be read, write or delete", domain.ErrInvalidRecord, a)
		}
	}
	return nil
}

// AddPolicy stores a new rule. An identical rule yields domain.ErrPolicyExists.
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if err := validateRule(role, resource, action); err != nil {
		return err
	}
	exists, err := p.enforcer.HasPolicy(role, resource, action)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrPolicyExists
	}
	if _, err := p.enforcer.AddPolicy(role, resource, action); err != nil {
		return err
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy deletes a rule. An unknown rule yields domain.ErrPolicyNotFound.
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	removed, err := p.enforcer.RemovePolicy(role, resource, action)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrPolicyNotFound
	}
	return p.enforcer.SavePolicy()
}

func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(role, resource, action)
}

func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}

// RecordPolicy is the row-level check in front of profile and chat records.
// The owner of a record is checked as role_owner, anyone else by their role.
type RecordPolicy struct {
	policies domain.PolicyService
	audit    domain.AuditLogger
}

// NewRecordPolicy creates a record policy over policies
func NewRecordPolicy(policies domain.PolicyService, audit domain.AuditLogger) *RecordPolicy {
	return &RecordPolicy{policies: policies, audit: audit}
}

// Authorize returns domain.ErrForbidden unless actor may perform action on object
func (r *RecordPolicy) Authorize(ctx context.Context, actor domain.Principal, ownerID uint, object, action string) error {
	subject := auth.RoleSubject(actor.Role)
	if actor.UserID != 0 && actor.UserID == ownerID {
		subject = auth.OwnerRole
	}

	ok, err := r.policies.CheckPermission(subject, object, action)
	if err != nil {
		return fmt.Errorf("policy check failed: %w", err)
	}

	eventType := domain.AccessGrantedEvent
	if !ok {
		eventType = domain.AccessDeniedEvent
	}
	if r.audit != nil {
		event := domain.NewAuditEvent(eventType, actor.UserID).
			WithMetadata("object", object).
			WithMetadata("action", action).
			WithMetadata("subject", subject)
		if !ok {
			event.WithError(domain.ErrForbidden)
		}
		_ = r.audit.LogEvent(ctx, event)
	}

	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
