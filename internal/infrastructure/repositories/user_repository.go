package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/you/consultsite/domain"
)

// DBUser is the accounts table. A phone number identifies at most one
// account, including soft-deleted ones.
type DBUser struct {
	ID            uint   `gorm:"primaryKey"`
	Phone         string `gorm:"uniqueIndex;size:32"`
	Email         string `gorm:"size:255"`
	Role          string `gorm:"index;size:64"`
	IsActive      bool   `gorm:"index"`
	PhoneVerified bool
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (DBUser) TableName() string { return "users" }

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create inserts the account and fills in its ID and timestamps.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	row := toDBUser(user)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Unscoped().Model(&DBUser{}).Where("phone = ?", user.Phone).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: phone %s is already registered", domain.ErrInvalidRecord, user.Phone)
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return err
	}
	user.ID = row.ID
	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.first(ctx, "phone = ?", phone)
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepositoryImpl) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row DBUser
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return toUser(&row), nil
}

// Update writes the mutable account fields. The phone number is never changed here.
func (r *UserRepositoryImpl) Update(ctx context.Context, user *domain.User) error {
	res := r.db.WithContext(ctx).Model(&DBUser{ID: user.ID}).
		Select("email", "role", "is_active", "phone_verified").
		Updates(&DBUser{
			Email:         user.Email,
			Role:          user.Role,
			IsActive:      user.IsActive,
			PhoneVerified: user.PhoneVerified,
		})
	return affectedUser(res)
}

func (r *UserRepositoryImpl) ActivatePhone(ctx context.Context, userID uint) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).Update("phone_verified", true)
	return affectedUser(res)
}

func affectedUser(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func toDBUser(u *domain.User) *DBUser {
	return &DBUser{
		ID:            u.ID,
		Phone:         u.Phone,
		Email:         u.Email,
		Role:          u.Role,
		IsActive:      u.IsActive,
		PhoneVerified: u.PhoneVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func toUser(row *DBUser) *domain.User {
	return &domain.User{
		ID:            row.ID,
		Phone:         row.Phone,
		Email:         row.Email,
		Role:          row.Role,
		IsActive:      row.IsActive,
		PhoneVerified: row.PhoneVerified,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
