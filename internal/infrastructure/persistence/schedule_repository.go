package persistence

import (
	"context"

	"github.com/gatetrack/backend/internal/domain/schedule"
	"gorm.io/gorm"
)

// GormScheduleRepository implements schedule.Repository using GORM
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new GormScheduleRepository
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// ReplaceAll atomically replaces the active schedule with the given items
func (r *GormScheduleRepository) ReplaceAll(ctx context.Context, items []schedule.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&schedule.Item{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// FindAll returns the active schedule
func (r *GormScheduleRepository) FindAll(ctx context.Context) ([]schedule.Item, error) {
	var items []schedule.Item
	if err := r.db.WithContext(ctx).
		Order("customer_code ASC, part_number ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CustomerCodes returns the distinct customer codes in the active schedule
func (r *GormScheduleRepository) CustomerCodes(ctx context.Context) ([]string, error) {
	codes := make([]string, 0)
	if err := r.db.WithContext(ctx).
		Model(&schedule.Item{}).
		Distinct("customer_code").
		Order("customer_code ASC").
		Pluck("customer_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Ensure GormScheduleRepository implements schedule.Repository
var _ schedule.Repository = (*GormScheduleRepository)(nil)
