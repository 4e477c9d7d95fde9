package ingest

import (
	"context"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/schedule"
	"github.com/gatetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service converts extracted tabular rows into invoice and schedule records
type Service struct {
	invoices        invoice.Repository
	schedules       schedule.Repository
	eventPublisher  shared.EventPublisher
	binCapacities   []int
	defaultCapacity int
	logger          *zap.Logger
}

// NewService creates a new ingest Service. binCapacities is the accepted set
// of plant capacities; defaultCapacity is used when a row carries none.
func NewService(invoices invoice.Repository, schedules schedule.Repository, binCapacities []int, defaultCapacity int, logger *zap.Logger) *Service {
	if len(binCapacities) == 0 {
		binCapacities = invoice.DefaultBinCapacities
	}
	if defaultCapacity == 0 {
		defaultCapacity = binCapacities[len(binCapacities)-1]
	}
	return &Service{
		invoices:        invoices,
		schedules:       schedules,
		binCapacities:   binCapacities,
		defaultCapacity: defaultCapacity,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// UploadInvoices groups rows by invoice number and inserts the invoices not
// already in the store. Existing numbers win: their rows are dropped and
// reported back in the result so the caller knows data was skipped.
func (s *Service) UploadInvoices(ctx context.Context, rows []InvoiceRow, uploadedBy string) (*UploadResult, error) {
	if uploadedBy == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Uploader cannot be empty")
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Upload contains no rows")
	}

	groups, order := groupByInvoice(rows)

	existing, err := s.invoices.ExistingNumbers(ctx, order)
	if err != nil {
		return nil, err
	}
	existingSet := make(map[string]struct{}, len(existing))
	for _, number := range existing {
		existingSet[number] = struct{}{}
	}

	result := &UploadResult{
		InvoiceNumbers: make([]string, 0, len(order)),
		SkippedNumbers: make([]string, 0),
	}

	// Construct every invoice before saving any: a validation failure in a
	// later row group must reject the batch without inserting part of it.
	fresh := make([]*invoice.Invoice, 0, len(order))
	for _, number := range order {
		if _, dup := existingSet[number]; dup {
			result.SkippedNumbers = append(result.SkippedNumbers, number)
			continue
		}

		group := groups[number]
		items := make([]invoice.LineItem, len(group))
		for i, row := range group {
			items[i] = invoice.LineItem{PartCode: row.Part, Quantity: row.Quantity}
		}

		capacity := group[0].BinCapacity
		if capacity == 0 {
			capacity = s.defaultCapacity
		}

		inv, err := invoice.NewInvoice(number, group[0].Customer, group[0].BillTo, capacity, items, uploadedBy, s.binCapacities)
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, inv)
	}

	for _, inv := range fresh {
		if err := s.invoices.Save(ctx, inv); err != nil {
			return nil, err
		}
		result.Inserted++
		result.InvoiceNumbers = append(result.InvoiceNumbers, inv.Number)
	}

	s.logger.Info("invoice batch uploaded",
		zap.String("uploaded_by", uploadedBy),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", len(result.SkippedNumbers)),
	)

	if s.eventPublisher != nil {
		event := invoice.NewBatchUploadedEvent(uploadedBy, result.InvoiceNumbers, result.SkippedNumbers)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish batch uploaded event", zap.Error(err))
		}
	}

	return result, nil
}

// UploadSchedule replaces the active schedule with a new upload and returns
// the number of rows accepted
func (s *Service) UploadSchedule(ctx context.Context, rows []ScheduleRow) (int, error) {
	if len(rows) == 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Schedule contains no rows")
	}

	items := make([]schedule.Item, 0, len(rows))
	for _, row := range rows {
		item, err := schedule.NewItem(row.CustomerCode, row.PartNumber, row.SNP, row.Bin)
		if err != nil {
			return 0, err
		}
		item.SheetName = row.SheetName
		item.SetDelivery(row.DeliveryDate, row.DeliveryTime, row.Plant)
		items = append(items, *item)
	}

	if err := s.schedules.ReplaceAll(ctx, items); err != nil {
		return 0, err
	}

	s.logger.Info("schedule replaced", zap.Int("rows", len(items)))

	return len(items), nil
}

// ActiveSchedule returns the current schedule rows
func (s *Service) ActiveSchedule(ctx context.Context) ([]schedule.Item, error) {
	return s.schedules.FindAll(ctx)
}

// groupByInvoice groups rows by invoice number, preserving first-seen order
func groupByInvoice(rows []InvoiceRow) (map[string][]InvoiceRow, []string) {
	groups := make(map[string][]InvoiceRow)
	order := make([]string, 0)
	for _, row := range rows {
		if _, seen := groups[row.Invoice]; !seen {
			order = append(order, row.Invoice)
		}
		groups[row.Invoice] = append(groups[row.Invoice], row)
	}
	return groups, order
}
