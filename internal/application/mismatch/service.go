package mismatch

import (
	"context"
	"errors"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/mismatch"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns the mismatch exception queue
type Service struct {
	alerts         mismatch.Repository
	invoices       invoice.Repository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new mismatch Service
func NewService(alerts mismatch.Repository, invoices invoice.Repository, logger *zap.Logger) *Service {
	return &Service{
		alerts:   alerts,
		invoices: invoices,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Pending returns unreviewed alerts oldest-first
func (s *Service) Pending(ctx context.Context) ([]mismatch.Alert, error) {
	return s.alerts.FindPending(ctx)
}

// ByInvoice returns all alerts raised against one invoice
func (s *Service) ByInvoice(ctx context.Context, invoiceNumber string) ([]mismatch.Alert, error) {
	return s.alerts.FindByInvoiceNumber(ctx, invoiceNumber)
}

// Resolve reviews a pending alert exactly once. Approval unblocks the
// referenced invoice so it re-enters the active scanning pool.
func (s *Service) Resolve(ctx context.Context, alertID uuid.UUID, status mismatch.AlertStatus, reviewedBy string) (*mismatch.Alert, error) {
	alert, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	version := alert.GetVersion()
	if err := alert.Resolve(status, reviewedBy); err != nil {
		return nil, err
	}
	if err := s.alerts.SaveWithLock(ctx, alert, version); err != nil {
		return nil, err
	}

	if status == mismatch.AlertStatusApproved {
		if err := s.unblockInvoice(ctx, alert.InvoiceNumber); err != nil {
			// The alert resolution stands; the invoice stays blocked for a
			// later retry rather than failing the review.
			s.logger.Error("failed to unblock invoice after approval",
				zap.String("invoice", alert.InvoiceNumber),
				zap.Error(err),
			)
		}
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, alert.GetDomainEvents()...); err != nil {
			s.logger.Error("failed to publish alert events", zap.Error(err))
		}
		alert.ClearDomainEvents()
	}

	s.logger.Info("mismatch alert resolved",
		zap.String("alert_id", alert.ID.String()),
		zap.String("status", alert.Status.String()),
		zap.String("reviewed_by", reviewedBy),
	)

	return alert, nil
}

func (s *Service) unblockInvoice(ctx context.Context, number string) error {
	inv, err := s.invoices.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Stale alert against a vanished invoice: nothing to unblock.
			return nil
		}
		return err
	}
	if !inv.Blocked {
		return nil
	}

	version := inv.GetVersion()
	inv.Unblock()
	return s.invoices.SaveWithLock(ctx, inv, version)
}
