package activity

import (
	"context"
	"fmt"
	"strings"

	"github.com/gatetrack/backend/internal/domain/activity"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UploadRecorder converts upload events into activity log entries
type UploadRecorder struct {
	service *Service
	logger  *zap.Logger
}

// NewUploadRecorder creates a new UploadRecorder
func NewUploadRecorder(service *Service, logger *zap.Logger) *UploadRecorder {
	return &UploadRecorder{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *UploadRecorder) EventTypes() []string {
	return []string{invoice.EventTypeBatchUploaded}
}

// Handle records one upload entry per batch
func (h *UploadRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	uploaded, ok := event.(*invoice.BatchUploadedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	details := fmt.Sprintf("%d invoices uploaded", len(uploaded.InvoiceNumbers))
	if len(uploaded.SkippedNumbers) > 0 {
		details += fmt.Sprintf(", %d duplicates skipped (%s)",
			len(uploaded.SkippedNumbers), strings.Join(uploaded.SkippedNumbers, ", "))
	}

	_, err := h.service.Append(ctx, uploaded.UploadedBy, "Uploaded invoice batch", details, activity.TypeUpload)
	return err
}

// Ensure UploadRecorder implements shared.EventHandler
var _ shared.EventHandler = (*UploadRecorder)(nil)
