package invoice

import (
	"fmt"
	"time"

	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle phase of an invoice
type Status string

const (
	StatusUploaded      Status = "UPLOADED"
	StatusAuditing      Status = "AUDITING"
	StatusAuditComplete Status = "AUDIT_COMPLETE"
	StatusLoading       Status = "LOADING"
	StatusDispatched    Status = "DISPATCHED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusUploaded, StatusAuditing, StatusAuditComplete, StatusLoading, StatusDispatched:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// LOADING may fall back to AUDIT_COMPLETE: changing a loading session's
// invoice selection invalidates in-progress loading.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusUploaded:
		return target == StatusAuditing
	case StatusAuditing:
		return target == StatusAuditComplete
	case StatusAuditComplete:
		return target == StatusLoading
	case StatusLoading:
		return target == StatusAuditComplete || target == StatusDispatched
	case StatusDispatched:
		return false // Terminal state
	}
	return false
}

// DefaultBinCapacities are the plant-defined container sizes accepted at
// upload when no override is configured.
var DefaultBinCapacities = []int{40, 60, 80, 120}

// LineItem is a raw ingestion row kept on the invoice for traceability
type LineItem struct {
	ID        uuid.UUID
	InvoiceID uuid.UUID
	PartCode  string
	Quantity  decimal.Decimal
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "invoice_line_items"
}

// ValidatedBin records one matched doc-audit scan pair. The customer and
// plant raw values double as the expected-to-load set at dispatch.
type ValidatedBin struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	BinNumber   string
	PartCode    string
	Quantity    int
	CustomerRaw string
	PlantRaw    string
	ScannedBy   string
	ScannedAt   time.Time
}

// TableName returns the table name for GORM
func (ValidatedBin) TableName() string {
	return "invoice_validated_bins"
}

// Invoice represents an invoice aggregate root.
// It tracks a manufacturing invoice from upload through document audit to
// loading and dispatch, counting physical bins at each stage.
type Invoice struct {
	shared.BaseAggregateRoot
	Number        string `gorm:"uniqueIndex;not null"`
	Customer      string
	BillTo        string
	TotalQuantity decimal.Decimal
	BinCapacity   int
	ExpectedBins  int
	ScannedBins   int
	BinsLoaded    int
	Status        Status
	Blocked       bool
	BlockedAt     *time.Time
	UploadedBy    string
	UploadedAt    *time.Time
	AuditedBy     string
	AuditedAt     *time.Time
	DispatchedBy  string
	DispatchedAt  *time.Time
	VehicleNumber string
	DeliveryDate  string
	DeliveryTime  string
	Plant         string
	Items         []LineItem     `gorm:"foreignKey:InvoiceID"`
	ValidatedBins []ValidatedBin `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new invoice from ingested line items.
// TotalQuantity is the sum of absolute item quantities; ExpectedBins is
// ceil(TotalQuantity / BinCapacity). capacities is the set of accepted bin
// capacities; nil falls back to DefaultBinCapacities.
func NewInvoice(number, customer, billTo string, binCapacity int, items []LineItem, uploadedBy string, capacities []int) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if customer == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice must have at least one line item")
	}
	if capacities == nil {
		capacities = DefaultBinCapacities
	}
	if !containsInt(capacities, binCapacity) {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Bin capacity %d is not an accepted plant capacity", binCapacity))
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Quantity.Abs())
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice total quantity must be positive")
	}

	expected := int(total.Div(decimal.NewFromInt(int64(binCapacity))).Ceil().IntPart())

	now := time.Now()
	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Customer:          customer,
		BillTo:            billTo,
		TotalQuantity:     total,
		BinCapacity:       binCapacity,
		ExpectedBins:      expected,
		Status:            StatusUploaded,
		UploadedBy:        uploadedBy,
		UploadedAt:        &now,
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].InvoiceID = inv.ID
		items[i].CreatedAt = now
	}
	inv.Items = items

	return inv, nil
}

// RecordValidatedBin records a matched doc-audit scan pair.
// ScannedBins is clamped at ExpectedBins and audit completion fires exactly
// once even under concurrent validation of the same invoice.
func (i *Invoice) RecordValidatedBin(bin ValidatedBin, scannedBy string) error {
	if i.Blocked {
		return shared.NewDomainError("INVALID_STATE", "Invoice is blocked pending mismatch resolution")
	}
	switch i.Status {
	case StatusLoading, StatusDispatched:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot audit invoice in %s status", i.Status))
	case StatusAuditComplete:
		// Idempotent completion: late matches change nothing.
		return nil
	}

	now := time.Now()
	bin.ID = uuid.New()
	bin.InvoiceID = i.ID
	bin.ScannedBy = scannedBy
	if bin.ScannedAt.IsZero() {
		bin.ScannedAt = now
	}
	i.ValidatedBins = append(i.ValidatedBins, bin)

	if i.ScannedBins < i.ExpectedBins {
		i.ScannedBins++
	}
	if i.Status == StatusUploaded {
		i.Status = StatusAuditing
	}
	i.AuditedBy = scannedBy
	i.AuditedAt = &now
	i.UpdatedAt = now

	i.AddDomainEvent(NewBinValidatedEvent(i, bin))

	if i.ScannedBins == i.ExpectedBins {
		i.Status = StatusAuditComplete
		i.AddDomainEvent(NewAuditCompletedEvent(i))
	}

	return nil
}

// StartLoading marks the invoice as selected into a loading session
func (i *Invoice) StartLoading() error {
	if i.Blocked {
		return shared.NewDomainError("INVALID_STATE", "Invoice is blocked pending mismatch resolution")
	}
	if !i.Status.CanTransitionTo(StatusLoading) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot load invoice in %s status", i.Status))
	}

	i.Status = StatusLoading
	i.BinsLoaded = 0
	i.UpdatedAt = time.Now()

	return nil
}

// ResetLoading returns a loading invoice to AUDIT_COMPLETE and discards its
// loaded-bin progress. Called when the session selection changes.
func (i *Invoice) ResetLoading() error {
	if i.Status != StatusLoading {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reset loading for invoice in %s status", i.Status))
	}

	i.Status = StatusAuditComplete
	i.BinsLoaded = 0
	i.UpdatedAt = time.Now()

	return nil
}

// RecordLoadedBin increments the loaded-bin count, bounded by the number of
// audit-validated bins
func (i *Invoice) RecordLoadedBin() error {
	if i.Status != StatusLoading {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record loaded bin for invoice in %s status", i.Status))
	}
	if i.BinsLoaded >= i.ScannedBins {
		return shared.NewDomainError("INVALID_STATE", "All validated bins are already loaded")
	}

	i.BinsLoaded++
	i.UpdatedAt = time.Now()

	return nil
}

// ClearLoadedBins zeroes the loaded-bin count while loading continues.
// Called when a session's selection change discards loading progress.
func (i *Invoice) ClearLoadedBins() {
	if i.Status != StatusLoading || i.BinsLoaded == 0 {
		return
	}
	i.BinsLoaded = 0
	i.UpdatedAt = time.Now()
}

// MarkDispatched stamps the dispatch actor and vehicle and moves the invoice
// to its terminal state
func (i *Invoice) MarkDispatched(dispatchedBy, vehicleNumber string) error {
	if i.DispatchedBy != "" {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already dispatched")
	}
	if i.Blocked {
		return shared.NewDomainError("INVALID_STATE", "Invoice is blocked pending mismatch resolution")
	}
	if !i.Status.CanTransitionTo(StatusDispatched) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot dispatch invoice in %s status", i.Status))
	}
	if dispatchedBy == "" {
		return shared.NewDomainError("INVALID_INPUT", "Dispatcher cannot be empty")
	}
	if vehicleNumber == "" {
		return shared.NewDomainError("INVALID_INPUT", "Vehicle number cannot be empty")
	}

	now := time.Now()
	i.Status = StatusDispatched
	i.DispatchedBy = dispatchedBy
	i.DispatchedAt = &now
	i.VehicleNumber = vehicleNumber
	i.UpdatedAt = now

	i.AddDomainEvent(NewDispatchedEvent(i))

	return nil
}

// Block marks the invoice as blocked pending mismatch resolution
func (i *Invoice) Block() {
	if i.Blocked {
		return
	}
	now := time.Now()
	i.Blocked = true
	i.BlockedAt = &now
	i.UpdatedAt = now

	i.AddDomainEvent(NewBlockedEvent(i))
}

// Unblock clears the blocked flag so the invoice re-enters the active
// scanning pool
func (i *Invoice) Unblock() {
	if !i.Blocked {
		return
	}
	i.Blocked = false
	i.BlockedAt = nil
	i.UpdatedAt = time.Now()
}

// SetSchedule attaches schedule-matching attributes from an uploaded schedule
func (i *Invoice) SetSchedule(deliveryDate, deliveryTime, plant string) {
	i.DeliveryDate = deliveryDate
	i.DeliveryTime = deliveryTime
	i.Plant = plant
	i.UpdatedAt = time.Now()
}

// IsAuditComplete returns true once all expected bins have been validated
func (i *Invoice) IsAuditComplete() bool {
	return i.Status == StatusAuditComplete || i.Status == StatusLoading || i.Status == StatusDispatched
}

// IsDispatched returns true if the invoice is in its terminal state
func (i *Invoice) IsDispatched() bool {
	return i.Status == StatusDispatched
}

// IsDispatchable returns true if the invoice can be selected for loading
func (i *Invoice) IsDispatchable() bool {
	return i.Status == StatusAuditComplete && !i.Blocked
}

// ExpectedLoadValues returns the raw barcode values accepted at loading time,
// derived from the audit-validated bins
func (i *Invoice) ExpectedLoadValues() map[string]struct{} {
	values := make(map[string]struct{}, len(i.ValidatedBins)*2)
	for _, bin := range i.ValidatedBins {
		values[bin.CustomerRaw] = struct{}{}
		values[bin.PlantRaw] = struct{}{}
	}
	return values
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
