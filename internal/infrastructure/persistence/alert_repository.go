package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/gatetrack/backend/internal/domain/mismatch"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAlertRepository implements mismatch.Repository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds an alert by its ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*mismatch.Alert, error) {
	var alert mismatch.Alert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindPending returns unresolved alerts, oldest first
func (r *GormAlertRepository) FindPending(ctx context.Context) ([]mismatch.Alert, error) {
	var alerts []mismatch.Alert
	if err := r.db.WithContext(ctx).
		Where("status = ?", mismatch.AlertStatusPending).
		Order("created_at ASC").
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// FindByInvoiceNumber returns all alerts raised against one invoice
func (r *GormAlertRepository) FindByInvoiceNumber(ctx context.Context, number string) ([]mismatch.Alert, error) {
	var alerts []mismatch.Alert
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", number).
		Order("created_at DESC").
		Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// Save creates or updates an alert
func (r *GormAlertRepository) Save(ctx context.Context, alert *mismatch.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// SaveWithLock saves with optimistic locking against the expected version
func (r *GormAlertRepository) SaveWithLock(ctx context.Context, alert *mismatch.Alert, expectedVersion int) error {
	alert.Version = expectedVersion + 1
	alert.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&mismatch.Alert{}).
		Where("id = ? AND version = ?", alert.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":      alert.Status,
			"reviewed_by": alert.ReviewedBy,
			"reviewed_at": alert.ReviewedAt,
			"version":     alert.Version,
			"updated_at":  alert.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		alert.Version = expectedVersion
		var count int64
		if err := r.db.WithContext(ctx).Model(&mismatch.Alert{}).Where("id = ?", alert.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormAlertRepository implements mismatch.Repository
var _ mismatch.Repository = (*GormAlertRepository)(nil)
