package sql

import (
	"context"
	"errors"
	"fmt"

	"sunotrack/internal/entity"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// GetSettings loads the single settings row. A missing row is not an error:
// (nil, nil) is returned so the caller can seed defaults.
func (r *GormRepository) GetSettings(ctx context.Context) (*entity.Settings, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var settings entity.Settings
	err := r.db.WithContext(ctx).Order("id ASC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings writes the settings row, creating it on first save.
func (r *GormRepository) SaveSettings(ctx context.Context, settings *entity.Settings) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if settings == nil {
		return fmt.Errorf("settings is nil")
	}
	if settings.ID == 0 {
		settings.ID = 1
	}
	return r.db.WithContext(ctx).Save(settings).Error
}

// GetHistory loads the single history row, or (nil, nil) when absent.
func (r *GormRepository) GetHistory(ctx context.Context) (*entity.History, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var history entity.History
	err := r.db.WithContext(ctx).Order("id ASC").First(&history).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// SaveHistory rewrites both recall lists wholesale.
func (r *GormRepository) SaveHistory(ctx context.Context, history *entity.History) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if history == nil {
		return fmt.Errorf("history is nil")
	}
	if history.ID == 0 {
		history.ID = 1
	}
	return r.db.WithContext(ctx).Save(history).Error
}
