package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ValidatedBins").
		First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByNumber finds an invoice by its business number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ValidatedBins").
		First(&inv, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByNumbers finds invoices whose number is in the given set
func (r *GormInvoiceRepository) FindByNumbers(ctx context.Context, numbers []string) ([]invoice.Invoice, error) {
	if len(numbers) == 0 {
		return []invoice.Invoice{}, nil
	}
	var invoices []invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ValidatedBins").
		Where("number IN ?", numbers).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAll finds invoices with filtering and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoice.Invoice, error) {
	var invoices []invoice.Invoice
	query := r.applyFilter(r.db.WithContext(ctx).Model(&invoice.Invoice{}), filter)
	if err := query.Preload("Items").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ExistingNumbers returns the subset of numbers already present in the store
func (r *GormInvoiceRepository) ExistingNumbers(ctx context.Context, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return []string{}, nil
	}
	existing := make([]string, 0, len(numbers))
	if err := r.db.WithContext(ctx).
		Model(&invoice.Invoice{}).
		Where("number IN ?", numbers).
		Pluck("number", &existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// FindUploaded returns invoices still in the document-audit stage
func (r *GormInvoiceRepository) FindUploaded(ctx context.Context) ([]invoice.Invoice, error) {
	var invoices []invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status IN ?", []invoice.Status{invoice.StatusUploaded, invoice.StatusAuditing}).
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAudited returns invoices whose document audit is complete and that are
// not yet dispatched
func (r *GormInvoiceRepository) FindAudited(ctx context.Context) ([]invoice.Invoice, error) {
	var invoices []invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status IN ?", []invoice.Status{invoice.StatusAuditComplete, invoice.StatusLoading}).
		Order("audited_at DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindDispatchable returns audit-complete, unblocked invoices available for
// loading selection
func (r *GormInvoiceRepository) FindDispatchable(ctx context.Context) ([]invoice.Invoice, error) {
	var invoices []invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND blocked = ?", invoice.StatusAuditComplete, false).
		Order("audited_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindActiveOn returns invoices uploaded on the given calendar day that have
// not reached their terminal state
func (r *GormInvoiceRepository) FindActiveOn(ctx context.Context, day time.Time) ([]invoice.Invoice, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var invoices []invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("uploaded_at >= ? AND uploaded_at < ? AND status <> ?", start, end, invoice.StatusDispatched).
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByBillToIn returns undispatched invoices whose bill-to code is in the
// given set
func (r *GormInvoiceRepository) FindByBillToIn(ctx context.Context, billTos []string) ([]invoice.Invoice, error) {
	if len(billTos) == 0 {
		return []invoice.Invoice{}, nil
	}
	var invoices []invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("bill_to IN ? AND status <> ?", billTos, invoice.StatusDispatched).
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// CountByStatus returns invoice counts per lifecycle status
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context) (map[invoice.Status]int64, error) {
	var rows []struct {
		Status invoice.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&invoice.Invoice{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[invoice.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Save creates or updates an invoice with its children
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "ValidatedBins").Save(inv).Error; err != nil {
			return err
		}
		for i := range inv.Items {
			inv.Items[i].InvoiceID = inv.ID
			if err := tx.Save(&inv.Items[i]).Error; err != nil {
				return err
			}
		}
		return r.saveValidatedBins(tx, inv)
	})
}

// SaveWithLock saves with optimistic locking against the expected version.
// Line items are immutable after upload; validated bins only ever grow.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv.Version = expectedVersion + 1
		inv.UpdatedAt = time.Now()

		result := tx.Model(&invoice.Invoice{}).
			Where("id = ? AND version = ?", inv.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":         inv.Status,
				"blocked":        inv.Blocked,
				"blocked_at":     inv.BlockedAt,
				"scanned_bins":   inv.ScannedBins,
				"bins_loaded":    inv.BinsLoaded,
				"audited_by":     inv.AuditedBy,
				"audited_at":     inv.AuditedAt,
				"dispatched_by":  inv.DispatchedBy,
				"dispatched_at":  inv.DispatchedAt,
				"vehicle_number": inv.VehicleNumber,
				"delivery_date":  inv.DeliveryDate,
				"delivery_time":  inv.DeliveryTime,
				"plant":          inv.Plant,
				"version":        inv.Version,
				"updated_at":     inv.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			inv.Version = expectedVersion
			var count int64
			if err := tx.Model(&invoice.Invoice{}).Where("id = ?", inv.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		return r.saveValidatedBins(tx, inv)
	})
}

func (r *GormInvoiceRepository) saveValidatedBins(tx *gorm.DB, inv *invoice.Invoice) error {
	for i := range inv.ValidatedBins {
		inv.ValidatedBins[i].InvoiceID = inv.ID
		if err := tx.Save(&inv.ValidatedBins[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR customer ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer":
			query = query.Where("customer = ?", value)
		case "blocked":
			query = query.Where("blocked = ?", value)
		}
	}

	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	} else {
		query = query.Order("created_at DESC")
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	return query
}

// Ensure GormInvoiceRepository implements invoice.Repository
var _ invoice.Repository = (*GormInvoiceRepository)(nil)
