package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"cofounder/models"
)

type MessageRepo interface {
	// ListByConversation returns messages oldest first.
	ListByConversation(ctx context.Context, tx *gorm.DB, conversationID string) ([]*models.Message, error)
	// Create returns ErrConflict when a message with the same id exists.
	Create(ctx context.Context, tx *gorm.DB, msg *models.Message) error
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID string) ([]*models.Message, error) {
	if tx == nil {
		tx = r.db
	}
	var msgs []*models.Message
	if err := tx.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (r *messageRepo) Create(ctx context.Context, tx *gorm.DB, msg *models.Message) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(ctx).Create(msg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}
