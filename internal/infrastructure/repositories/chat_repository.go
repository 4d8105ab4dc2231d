package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/you/consultsite/domain"
)

// DBChat is the GORM model for domain.Chat
type DBChat struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    uint   `gorm:"index"`
	Title     string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DBChat) TableName() string {
	return "chats"
}

func (c *DBChat) toDomain() *domain.Chat {
	return &domain.Chat{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ChatRepositoryImpl implements domain.ChatRepository using GORM
type ChatRepositoryImpl struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) domain.ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

// ListByUser implements domain.ChatRepository, newest first
func (r *ChatRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*domain.Chat, error) {
	var rows []DBChat
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Chat, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// FindByID implements domain.ChatRepository
func (r *ChatRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Chat, error) {
	var c DBChat
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrChatNotFound
		}
		return nil, err
	}
	return c.toDomain(), nil
}

// Create implements domain.ChatRepository
func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *domain.Chat) error {
	c := &DBChat{ID: chat.ID, UserID: chat.UserID, Title: chat.Title, CreatedAt: chat.CreatedAt}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return err
	}
	chat.CreatedAt = c.CreatedAt
	chat.UpdatedAt = c.UpdatedAt
	return nil
}

// Delete implements domain.ChatRepository
func (r *ChatRepositoryImpl) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DBChat{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}
