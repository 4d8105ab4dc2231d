package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testModelPath = "../../../config/record_model.conf"

func setupCasbin(t *testing.T) *CasbinService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	svc, err := NewCasbinService(db, testModelPath)
	require.NoError(t, err)
	return svc
}

func TestCasbinService_SeedIsIdempotent(t *testing.T) {
	svc := setupCasbin(t)

	added, err := svc.Seed(DefaultRecordPolicies)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRecordPolicies), added)

	added, err = svc.Seed(DefaultRecordPolicies)
	require.NoError(t, err)
	assert.Zero(t, added)

	stored, err := svc.E.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, stored, len(DefaultRecordPolicies))
}

func TestCasbinService_SeedAddsOnlyMissing(t *testing.T) {
	svc := setupCasbin(t)
	_, err := svc.Seed(DefaultRecordPolicies[:2])
	require.NoError(t, err)

	added, err := svc.Seed(DefaultRecordPolicies)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRecordPolicies)-2, added)
}

func TestCasbinService_RecordModel(t *testing.T) {
	svc := setupCasbin(t)
	_, err := svc.Seed(DefaultRecordPolicies)
	require.NoError(t, err)

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{OwnerRole, "/profiles/12", "read", true},
		{OwnerRole, "/profiles/12", "write", true},
		{OwnerRole, "/users/12/chats", "write", true},
		{OwnerRole, "/chats/0b7e", "delete", true},
		{RoleSubject("admin"), "/profiles/12", "write", false},
		{RoleSubject("admin"), "/chats/0b7e", "delete", true},
		{RoleSubject("user"), "/profiles/12", "read", false},
		{OwnerRole, "/profiles/12/extra", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.sub+" "+tt.act+" "+tt.obj, func(t *testing.T) {
			ok, err := svc.E.Enforce(tt.sub, tt.obj, tt.act)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestNewCasbinService_BadModel(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	_, err = NewCasbinService(db, "does-not-exist.conf")
	assert.Error(t, err)
}
