package activity

import (
	"context"
	"fmt"

	"github.com/gatetrack/backend/internal/domain/activity"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/mismatch"
	"github.com/gatetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditRecorder converts doc-audit and mismatch events into activity log
// entries. Loading-stage mismatches are filed under dispatch.
type AuditRecorder struct {
	service *Service
	logger  *zap.Logger
}

// NewAuditRecorder creates a new AuditRecorder
func NewAuditRecorder(service *Service, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditRecorder) EventTypes() []string {
	return []string{
		invoice.EventTypeBinValidated,
		invoice.EventTypeAuditCompleted,
		invoice.EventTypeBlocked,
		mismatch.EventTypeRaised,
		mismatch.EventTypeResolved,
	}
}

// Handle appends one entry per audit event
func (h *AuditRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *invoice.BinValidatedEvent:
		details := fmt.Sprintf("Invoice %s bin %s (%d/%d)", e.InvoiceNumber, e.BinNumber, e.ScannedBins, e.ExpectedBins)
		_, err := h.service.Append(ctx, e.ScannedBy, "Validated bin", details, activity.TypeAudit)
		return err

	case *invoice.AuditCompletedEvent:
		details := fmt.Sprintf("Invoice %s, %d bins", e.InvoiceNumber, e.ExpectedBins)
		_, err := h.service.Append(ctx, e.AuditedBy, "Completed document audit", details, activity.TypeAudit)
		return err

	case *invoice.BlockedEvent:
		details := fmt.Sprintf("Invoice %s blocked pending mismatch resolution", e.InvoiceNumber)
		_, err := h.service.Append(ctx, "system", "Blocked invoice", details, activity.TypeAudit)
		return err

	case *mismatch.AlertRaisedEvent:
		typ := activity.TypeAudit
		if e.Step == mismatch.StepLoadingDispatch {
			typ = activity.TypeDispatch
		}
		details := fmt.Sprintf("Invoice %s at %s: %q vs %q", e.InvoiceNumber, e.Step, e.CustomerRaw, e.PlantRaw)
		_, err := h.service.Append(ctx, e.User, "Raised mismatch alert", details, typ)
		return err

	case *mismatch.AlertResolvedEvent:
		details := fmt.Sprintf("Invoice %s alert %s", e.InvoiceNumber, e.Status)
		_, err := h.service.Append(ctx, e.ReviewedBy, "Resolved mismatch alert", details, activity.TypeAudit)
		return err
	}

	return fmt.Errorf("unexpected event type: %s", event.EventType())
}

// Ensure AuditRecorder implements shared.EventHandler
var _ shared.EventHandler = (*AuditRecorder)(nil)
