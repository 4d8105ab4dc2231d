package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/consultsite/domain"
)

// DBProfile is the GORM model for domain.Profile
type DBProfile struct {
	UserID    uint   `gorm:"primaryKey;autoIncrement:false"`
	FullName  string `gorm:"size:255"`
	Company   string `gorm:"size:255"`
	Email     string `gorm:"size:255"`
	Phone     string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DBProfile) TableName() string {
	return "profiles"
}

// ProfileRepositoryImpl implements domain.ProfileRepository using GORM
type ProfileRepositoryImpl struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) domain.ProfileRepository {
	return &ProfileRepositoryImpl{db: db}
}

// FindByUserID implements domain.ProfileRepository
func (r *ProfileRepositoryImpl) FindByUserID(ctx context.Context, userID uint) (*domain.Profile, error) {
	var p DBProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &domain.Profile{
		UserID:    p.UserID,
		FullName:  p.FullName,
		Company:   p.Company,
		Email:     p.Email,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

// Upsert implements domain.ProfileRepository
func (r *ProfileRepositoryImpl) Upsert(ctx context.Context, profile *domain.Profile) error {
	p := &DBProfile{
		UserID:   profile.UserID,
		FullName: profile.FullName,
		Company:  profile.Company,
		Email:    profile.Email,
		Phone:    profile.Phone,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "company", "email", "phone", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return err
	}
	profile.UpdatedAt = p.UpdatedAt
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = p.CreatedAt
	}
	return nil
}
