package invoice

import (
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeInvoice      = "Invoice"
	AggregateTypeInvoiceBatch = "InvoiceBatch"
)

// Event type constants
const (
	EventTypeBatchUploaded  = "invoice.batch_uploaded"
	EventTypeBinValidated   = "invoice.bin_validated"
	EventTypeAuditCompleted = "invoice.audit_completed"
	EventTypeBlocked        = "invoice.blocked"
	EventTypeDispatched     = "invoice.dispatched"
)

// BatchUploadedEvent is raised once per upload batch after deduplication
type BatchUploadedEvent struct {
	shared.BaseDomainEvent
	UploadedBy     string   `json:"uploaded_by"`
	InvoiceNumbers []string `json:"invoice_numbers"`
	SkippedNumbers []string `json:"skipped_numbers"`
}

// NewBatchUploadedEvent creates a new BatchUploadedEvent
func NewBatchUploadedEvent(uploadedBy string, inserted, skipped []string) *BatchUploadedEvent {
	return &BatchUploadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchUploaded, AggregateTypeInvoiceBatch, uuid.New()),
		UploadedBy:      uploadedBy,
		InvoiceNumbers:  inserted,
		SkippedNumbers:  skipped,
	}
}

// BinValidatedEvent is raised on every matched doc-audit scan pair
type BinValidatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Customer      string `json:"customer"`
	BinNumber     string `json:"bin_number"`
	PartCode      string `json:"part_code"`
	ScannedBy     string `json:"scanned_by"`
	ScannedBins   int    `json:"scanned_bins"`
	ExpectedBins  int    `json:"expected_bins"`
}

// NewBinValidatedEvent creates a new BinValidatedEvent
func NewBinValidatedEvent(inv *Invoice, bin ValidatedBin) *BinValidatedEvent {
	return &BinValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBinValidated, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.Number,
		Customer:        inv.Customer,
		BinNumber:       bin.BinNumber,
		PartCode:        bin.PartCode,
		ScannedBy:       bin.ScannedBy,
		ScannedBins:     inv.ScannedBins,
		ExpectedBins:    inv.ExpectedBins,
	}
}

// AuditCompletedEvent is raised exactly once when all expected bins have been
// validated
type AuditCompletedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Customer      string `json:"customer"`
	AuditedBy     string `json:"audited_by"`
	ExpectedBins  int    `json:"expected_bins"`
}

// NewAuditCompletedEvent creates a new AuditCompletedEvent
func NewAuditCompletedEvent(inv *Invoice) *AuditCompletedEvent {
	return &AuditCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAuditCompleted, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.Number,
		Customer:        inv.Customer,
		AuditedBy:       inv.AuditedBy,
		ExpectedBins:    inv.ExpectedBins,
	}
}

// BlockedEvent is raised when a mismatch blocks an invoice from further
// scanning
type BlockedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Customer      string `json:"customer"`
}

// NewBlockedEvent creates a new BlockedEvent
func NewBlockedEvent(inv *Invoice) *BlockedEvent {
	return &BlockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBlocked, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.Number,
		Customer:        inv.Customer,
	}
}

// DispatchedEvent is raised when an invoice reaches its terminal state
type DispatchedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Customer      string `json:"customer"`
	DispatchedBy  string `json:"dispatched_by"`
	VehicleNumber string `json:"vehicle_number"`
	BinsLoaded    int    `json:"bins_loaded"`
}

// NewDispatchedEvent creates a new DispatchedEvent
func NewDispatchedEvent(inv *Invoice) *DispatchedEvent {
	return &DispatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDispatched, AggregateTypeInvoice, inv.ID),
		InvoiceNumber:   inv.Number,
		Customer:        inv.Customer,
		DispatchedBy:    inv.DispatchedBy,
		VehicleNumber:   inv.VehicleNumber,
		BinsLoaded:      inv.BinsLoaded,
	}
}
