package settings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stored window, or nil when none was ever written.
func (r *Repository) Get(ctx context.Context) (*BusinessHours, error) {
	var row BusinessHours
	err := r.db.WithContext(ctx).Where("singleton = ?", singletonKey).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes the singleton row in a single statement, so two concurrent
// first writes end with one row.
func (r *Repository) Upsert(ctx context.Context, hours BusinessHours) (*BusinessHours, error) {
	row := BusinessHours{
		OpeningHour: hours.OpeningHour,
		ClosingHour: hours.ClosingHour,
		UpdatedAt:   time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "singleton"}},
		DoUpdates: clause.AssignmentColumns([]string{"opening_hour", "closing_hour", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
