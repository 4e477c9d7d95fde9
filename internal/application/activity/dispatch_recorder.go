package activity

import (
	"context"
	"fmt"

	"github.com/gatetrack/backend/internal/domain/activity"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DispatchRecorder converts dispatch events into activity log entries
type DispatchRecorder struct {
	service *Service
	logger  *zap.Logger
}

// NewDispatchRecorder creates a new DispatchRecorder
func NewDispatchRecorder(service *Service, logger *zap.Logger) *DispatchRecorder {
	return &DispatchRecorder{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *DispatchRecorder) EventTypes() []string {
	return []string{invoice.EventTypeDispatched}
}

// Handle records one dispatch entry per invoice
func (h *DispatchRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	dispatched, ok := event.(*invoice.DispatchedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	details := fmt.Sprintf("Invoice %s on vehicle %s, %d bins",
		dispatched.InvoiceNumber, dispatched.VehicleNumber, dispatched.BinsLoaded)
	_, err := h.service.Append(ctx, dispatched.DispatchedBy, "Dispatched invoice", details, activity.TypeDispatch)
	return err
}

// Ensure DispatchRecorder implements shared.EventHandler
var _ shared.EventHandler = (*DispatchRecorder)(nil)
