package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cofounder/models"
)

type ProfileRepo interface {
	// Get returns ErrNotFound when the user never saved a profile.
	Get(ctx context.Context, tx *gorm.DB, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, tx *gorm.DB, profile *models.Profile) error
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return &profileRepo{db: db}
}

func (r *profileRepo) Get(ctx context.Context, tx *gorm.DB, userID string) (*models.Profile, error) {
	if tx == nil {
		tx = r.db
	}
	var p models.Profile
	if err := tx.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) Upsert(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	if tx == nil {
		tx = r.db
	}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "company_name", "startup_stage", "industry", "goals", "bio"}),
	}).Create(profile).Error
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
