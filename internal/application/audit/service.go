package audit

import (
	"context"
	"errors"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/mismatch"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// saveRetries bounds optimistic-lock retries against writers outside the
// keyed mutex, such as a concurrent mismatch resolution.
const saveRetries = 3

// ScanPairResult is the outcome of one doc-audit scan pair submission
type ScanPairResult struct {
	Matched       bool       `json:"matched"`
	InvoiceNumber string     `json:"invoice_number"`
	ScannedBins   int        `json:"scanned_bins"`
	ExpectedBins  int        `json:"expected_bins"`
	AuditComplete bool       `json:"audit_complete"`
	AlertID       *uuid.UUID `json:"alert_id,omitempty"`
}

// Service reconciles doc-audit scan pairs against invoices
type Service struct {
	invoices       invoice.Repository
	alerts         mismatch.Repository
	reconciler     *invoice.Reconciler
	eventPublisher shared.EventPublisher
	locks          *keyedMutex
	logger         *zap.Logger
}

// NewService creates a new audit Service
func NewService(invoices invoice.Repository, alerts mismatch.Repository, logger *zap.Logger) *Service {
	return &Service{
		invoices:   invoices,
		alerts:     alerts,
		reconciler: invoice.NewReconciler(),
		locks:      newKeyedMutex(),
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SubmitScanPair reconciles a customer-label scan against a plant-label scan
// for one invoice. On match the validated bin is recorded; on mismatch the
// invoice is blocked and exactly one pending alert is raised.
// Submissions for the same invoice are serialized.
func (s *Service) SubmitScanPair(ctx context.Context, invoiceNumber string, customerScan, plantScan invoice.ScanResult, scannedBy string) (*ScanPairResult, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if scannedBy == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Scanning user cannot be empty")
	}
	if err := customerScan.Validate(); err != nil {
		return nil, err
	}
	if err := plantScan.Validate(); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(invoiceNumber)
	defer unlock()

	if bin, ok := s.reconciler.ReconcileAudit(customerScan, plantScan); ok {
		return s.recordMatch(ctx, invoiceNumber, bin, scannedBy)
	}
	return s.recordMismatch(ctx, invoiceNumber, customerScan, plantScan, scannedBy)
}

func (s *Service) recordMatch(ctx context.Context, invoiceNumber string, bin invoice.ValidatedBin, scannedBy string) (*ScanPairResult, error) {
	var inv *invoice.Invoice
	err := s.withInvoice(ctx, invoiceNumber, func(candidate *invoice.Invoice) error {
		if err := candidate.RecordValidatedBin(bin, scannedBy); err != nil {
			return err
		}
		inv = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inv)

	s.logger.Info("scan pair matched",
		zap.String("invoice", inv.Number),
		zap.String("bin", bin.BinNumber),
		zap.Int("scanned_bins", inv.ScannedBins),
		zap.Int("expected_bins", inv.ExpectedBins),
	)

	return &ScanPairResult{
		Matched:       true,
		InvoiceNumber: inv.Number,
		ScannedBins:   inv.ScannedBins,
		ExpectedBins:  inv.ExpectedBins,
		AuditComplete: inv.IsAuditComplete(),
	}, nil
}

func (s *Service) recordMismatch(ctx context.Context, invoiceNumber string, customerScan, plantScan invoice.ScanResult, scannedBy string) (*ScanPairResult, error) {
	inv, err := s.invoices.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if err := auditableState(inv); err != nil {
		return nil, err
	}

	alert, err := mismatch.NewAlert(scannedBy, inv.Customer, inv.Number, mismatch.StepDocAudit, customerScan, plantScan)
	if err != nil {
		return nil, err
	}
	// The alert is persisted before the block: resolution is the only
	// unblock path, so a blocked invoice must never exist without its
	// pending alert. The reverse (alert saved, block write fails) still
	// resolves cleanly through the mismatch workflow.
	if err := s.alerts.Save(ctx, alert); err != nil {
		return nil, err
	}

	err = s.withInvoice(ctx, invoiceNumber, func(candidate *invoice.Invoice) error {
		if err := auditableState(candidate); err != nil {
			return err
		}
		candidate.Block()
		inv = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inv)
	s.publishAlertEvents(ctx, alert)

	s.logger.Warn("scan pair mismatched, invoice blocked",
		zap.String("invoice", inv.Number),
		zap.String("alert_id", alert.ID.String()),
		zap.String("scanned_by", scannedBy),
	)

	alertID := alert.ID
	return &ScanPairResult{
		Matched:       false,
		InvoiceNumber: inv.Number,
		ScannedBins:   inv.ScannedBins,
		ExpectedBins:  inv.ExpectedBins,
		AuditComplete: inv.IsAuditComplete(),
		AlertID:       &alertID,
	}, nil
}

func auditableState(inv *invoice.Invoice) error {
	if inv.IsDispatched() {
		return shared.NewDomainError("INVALID_STATE", "Cannot audit a dispatched invoice")
	}
	if inv.Blocked {
		return shared.NewDomainError("INVALID_STATE", "Invoice is blocked pending mismatch resolution")
	}
	return nil
}

// withInvoice loads the invoice, applies mutate and persists with the version
// check, retrying on a concurrent write.
func (s *Service) withInvoice(ctx context.Context, number string, mutate func(*invoice.Invoice) error) error {
	for attempt := 0; attempt < saveRetries; attempt++ {
		inv, err := s.invoices.FindByNumber(ctx, number)
		if err != nil {
			return err
		}

		version := inv.GetVersion()
		if err := mutate(inv); err != nil {
			return err
		}

		err = s.invoices.SaveWithLock(ctx, inv, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Debug("optimistic lock conflict, retrying",
			zap.String("invoice", number),
			zap.Int("attempt", attempt+1),
		)
	}
	return shared.ErrConcurrencyConflict
}

func (s *Service) publishEvents(ctx context.Context, inv *invoice.Invoice) {
	if s.eventPublisher == nil {
		return
	}
	events := inv.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish invoice events", zap.Error(err))
	}
	inv.ClearDomainEvents()
}

func (s *Service) publishAlertEvents(ctx context.Context, alert *mismatch.Alert) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, alert.GetDomainEvents()...); err != nil {
		s.logger.Error("failed to publish alert events", zap.Error(err))
	}
	alert.ClearDomainEvents()
}
