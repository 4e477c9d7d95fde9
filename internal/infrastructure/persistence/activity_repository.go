package persistence

import (
	"context"

	"github.com/gatetrack/backend/internal/domain/activity"
	"github.com/gatetrack/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormActivityRepository implements activity.Repository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Append appends one entry to the activity log
func (r *GormActivityRepository) Append(ctx context.Context, entry *activity.LogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByType returns entries of one category, newest first
func (r *GormActivityRepository) FindByType(ctx context.Context, typ activity.Type, filter shared.Filter) ([]activity.LogEntry, error) {
	var entries []activity.LogEntry
	query := r.paginate(r.db.WithContext(ctx).Where("type = ?", typ), filter)
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAll returns entries across categories, newest first
func (r *GormActivityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]activity.LogEntry, error) {
	var entries []activity.LogEntry
	query := r.paginate(r.db.WithContext(ctx), filter)
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *GormActivityRepository) paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

// Ensure GormActivityRepository implements activity.Repository
var _ activity.Repository = (*GormActivityRepository)(nil)
