package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cofounder/models"
)

type ConversationRepo interface {
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Conversation, error)
	Create(ctx context.Context, tx *gorm.DB, conv *models.Conversation) error
	Get(ctx context.Context, tx *gorm.DB, userID, id string) (*models.Conversation, error)
	// Touch sets updated_at and, when title is non-nil, the title.
	Touch(ctx context.Context, tx *gorm.DB, userID, id string, title *string, at time.Time) (*models.Conversation, error)
	// Delete removes the conversation and its messages.
	Delete(ctx context.Context, tx *gorm.DB, userID, id string) error
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Conversation, error) {
	if tx == nil {
		tx = r.db
	}
	var convs []*models.Conversation
	if err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

func (r *conversationRepo) Create(ctx context.Context, tx *gorm.DB, conv *models.Conversation) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.WithContext(ctx).Create(conv).Error; err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

func (r *conversationRepo) Get(ctx context.Context, tx *gorm.DB, userID, id string) (*models.Conversation, error) {
	if tx == nil {
		tx = r.db
	}
	var conv models.Conversation
	if err := tx.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &conv, nil
}

func (r *conversationRepo) Touch(ctx context.Context, tx *gorm.DB, userID, id string, title *string, at time.Time) (*models.Conversation, error) {
	if tx == nil {
		tx = r.db
	}
	updates := map[string]interface{}{"updated_at": at}
	if title != nil {
		updates["title"] = *title
	}
	res := tx.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, tx, userID, id)
}

func (r *conversationRepo) Delete(ctx context.Context, tx *gorm.DB, userID, id string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.Get(ctx, tx, userID, id); err != nil {
			return err
		}
		// explicit so the cascade does not depend on driver FK support
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if err := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Conversation{}).Error; err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}
		return nil
	})
}
