package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// OwnerRole is the casbin subject used when the caller owns the record
const OwnerRole = "role_owner"

// RoleSubject maps an account role to its casbin subject
func RoleSubject(role string) string {
	return "role_" + role
}

// DefaultRecordPolicies are seeded on first start. Objects use keyMatch2
// patterns, actions are regexes.
var DefaultRecordPolicies = [][]string{
	{OwnerRole, "/profiles/:id", "read|write"},
	{OwnerRole, "/users/:id/chats", "read|write"},
	{OwnerRole, "/chats/:id", "read|delete"},
	{RoleSubject("admin"), "/profiles/:id", "read"},
	{RoleSubject("admin"), "/chats/:id", "read|delete"},
}

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService loads the record model and the policies stored through the gorm adapter
func NewCasbinService(db *gorm.DB, modelPath string) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("casbin adapter: %w", err)
	}
	E, err := casbin.NewEnforcer(modelPath, adp)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	if err := E.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("casbin load policy: %w", err)
	}
	return &CasbinService{E}, nil
}

// Seed adds any missing default policy and returns how many were added.
// The gorm adapter reports stored duplicates as added, so presence is
// checked first.
func (s *CasbinService) Seed(policies [][]string) (int, error) {
	added := 0
	for _, p := range policies {
		exists, err := s.E.HasPolicy(p[0], p[1], p[2])
		if err != nil {
			return added, fmt.Errorf("check policy %v: %w", p, err)
		}
		if exists {
			continue
		}
		ok, err := s.E.AddPolicy(p[0], p[1], p[2])
		if err != nil {
			return added, fmt.Errorf("seed policy %v: %w", p, err)
		}
		if ok {
			added++
		}
	}
	return added, nil
}
