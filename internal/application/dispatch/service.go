package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/gatetrack/backend/internal/domain/dispatch"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/mismatch"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ViewInvalidator drops cached invoice read views after dispatch mutations
type ViewInvalidator interface {
	InvalidateViews(ctx context.Context) error
}

// LoadScanResult is the outcome of one loading-stage scan submission
type LoadScanResult struct {
	Matched       bool                  `json:"matched"`
	LoadedCount   int                   `json:"loaded_count"`
	ExpectedCount int                   `json:"expected_count"`
	State         dispatch.SessionState `json:"state"`
	AlertID       *uuid.UUID            `json:"alert_id,omitempty"`
}

// Service runs loading sessions: invoice selection, loading scans and
// gatepass generation. Sessions are held in memory; a restart starts fresh
// loading cycles, invoice state survives in the store.
type Service struct {
	mu             sync.Mutex
	sessions       map[uuid.UUID]*dispatch.LoadingSession
	invoices       invoice.Repository
	alerts         mismatch.Repository
	reconciler     *invoice.Reconciler
	eventPublisher shared.EventPublisher
	views          ViewInvalidator
	logger         *zap.Logger
}

// NewService creates a new dispatch Service
func NewService(invoices invoice.Repository, alerts mismatch.Repository, logger *zap.Logger) *Service {
	return &Service{
		sessions:   make(map[uuid.UUID]*dispatch.LoadingSession),
		invoices:   invoices,
		alerts:     alerts,
		reconciler: invoice.NewReconciler(),
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetViewInvalidator sets the read-view cache invalidator
func (s *Service) SetViewInvalidator(views ViewInvalidator) {
	s.views = views
}

// StartSession begins a fresh loading cycle
func (s *Service) StartSession(ctx context.Context, startedBy string) (*dispatch.LoadingSession, error) {
	session, err := dispatch.NewLoadingSession(startedBy)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("loading session started",
		zap.String("session_id", session.ID.String()),
		zap.String("started_by", startedBy),
	)

	return session, nil
}

// GetSession returns a session by ID
func (s *Service) GetSession(ctx context.Context, sessionID uuid.UUID) (*dispatch.LoadingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(sessionID)
}

// SelectInvoice adds a dispatchable invoice to the session. The invoice moves
// to LOADING and any in-progress loading for the session is discarded.
func (s *Service) SelectInvoice(ctx context.Context, sessionID uuid.UUID, invoiceNumber string) (*dispatch.LoadingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	inv, err := s.invoices.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if inv.IsDispatched() {
		return nil, shared.NewDomainError("INVALID_STATE", "Invoice is already dispatched")
	}

	sel := dispatch.SelectedInvoice{
		Number:         inv.Number,
		Customer:       inv.Customer,
		ExpectedBins:   inv.ScannedBins,
		ExpectedValues: inv.ExpectedLoadValues(),
	}
	if err := session.SelectInvoice(sel); err != nil {
		return nil, err
	}

	version := inv.GetVersion()
	if err := inv.StartLoading(); err != nil {
		_ = session.DeselectInvoice(inv.Number)
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv, version); err != nil {
		_ = session.DeselectInvoice(inv.Number)
		return nil, err
	}

	s.clearLoadedProgress(ctx, session, inv.Number)

	return session, nil
}

// DeselectInvoice removes an invoice from the session and returns it to
// AUDIT_COMPLETE
func (s *Service) DeselectInvoice(ctx context.Context, sessionID uuid.UUID, invoiceNumber string) (*dispatch.LoadingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.DeselectInvoice(invoiceNumber); err != nil {
		return nil, err
	}

	inv, err := s.invoices.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	version := inv.GetVersion()
	if err := inv.ResetLoading(); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv, version); err != nil {
		return nil, err
	}

	s.clearLoadedProgress(ctx, session, "")

	return session, nil
}

// SubmitLoadScan reconciles the two captures of one physical item and, on
// success, records the load. A loading-stage mismatch raises an alert but
// does not block the invoice: it already passed audit.
func (s *Service) SubmitLoadScan(ctx context.Context, sessionID uuid.UUID, customerScan, matchedScan invoice.ScanResult, scannedBy string) (*LoadScanResult, error) {
	if err := customerScan.Validate(); err != nil {
		return nil, err
	}
	if err := matchedScan.Validate(); err != nil {
		return nil, err
	}
	if scannedBy == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Scanning user cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	if !s.reconciler.ReconcileLoading(customerScan, matchedScan) {
		return s.raiseLoadingMismatch(ctx, session, customerScan, matchedScan, scannedBy)
	}

	if _, err := session.RecordLoad(customerScan, scannedBy); err != nil {
		return nil, err
	}

	if owner, ok := session.OwnerOf(customerScan.RawValue); ok {
		if err := s.recordLoadedBin(ctx, owner); err != nil {
			s.logger.Error("failed to record loaded bin on invoice",
				zap.String("invoice", owner),
				zap.Error(err),
			)
		}
	}

	return &LoadScanResult{
		Matched:       true,
		LoadedCount:   session.LoadedCount(),
		ExpectedCount: session.ExpectedCount(),
		State:         session.State,
	}, nil
}

// GenerateGatepass stamps dispatch on every selected invoice and constructs
// the gatepass. Invoice stamping happens first so the gatepass's actor and
// timestamp reflect the dispatch instant.
func (s *Service) GenerateGatepass(ctx context.Context, sessionID uuid.UUID, vehicleNumber, authorizedBy string) (*dispatch.Gatepass, error) {
	if authorizedBy == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Authorizing user cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.ReadyToGenerate(vehicleNumber); err != nil {
		return nil, err
	}

	for _, number := range session.InvoiceNumbers() {
		if err := s.stampDispatch(ctx, number, authorizedBy, vehicleNumber); err != nil {
			return nil, err
		}
	}

	gatepass, err := session.GenerateGatepass(vehicleNumber, authorizedBy)
	if err != nil {
		return nil, err
	}

	if s.views != nil {
		if err := s.views.InvalidateViews(ctx); err != nil {
			s.logger.Error("failed to invalidate read views", zap.Error(err))
		}
	}

	s.logger.Info("gatepass generated",
		zap.String("session_id", session.ID.String()),
		zap.String("gatepass", gatepass.GatepassNumber),
		zap.String("vehicle", vehicleNumber),
		zap.Int("items", gatepass.Summary.TotalItems),
	)

	return gatepass, nil
}

// stampRetries bounds optimistic-lock retries while stamping dispatch.
// Audit-side writes can bump a LOADING invoice's version concurrently.
const stampRetries = 3

// stampDispatch marks one invoice dispatched, retrying version conflicts.
// An invoice already dispatched with this vehicle and authorizer counts as
// done so a failed generation attempt can be retried without wedging the
// session on its own partial progress.
func (s *Service) stampDispatch(ctx context.Context, number, authorizedBy, vehicleNumber string) error {
	for attempt := 0; attempt < stampRetries; attempt++ {
		inv, err := s.invoices.FindByNumber(ctx, number)
		if err != nil {
			return err
		}
		if inv.IsDispatched() {
			if inv.VehicleNumber == vehicleNumber && inv.DispatchedBy == authorizedBy {
				return nil
			}
			return shared.NewDomainError("INVALID_STATE", "Invoice is already dispatched")
		}

		version := inv.GetVersion()
		if err := inv.MarkDispatched(authorizedBy, vehicleNumber); err != nil {
			return err
		}
		err = s.invoices.SaveWithLock(ctx, inv, version)
		if err == nil {
			s.publishEvents(ctx, inv.GetDomainEvents())
			inv.ClearDomainEvents()
			return nil
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return err
		}
		s.logger.Debug("dispatch stamp conflict, retrying",
			zap.String("invoice", number),
			zap.Int("attempt", attempt+1),
		)
	}
	return shared.ErrConcurrencyConflict
}

func (s *Service) lookup(sessionID uuid.UUID) (*dispatch.LoadingSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

func (s *Service) raiseLoadingMismatch(ctx context.Context, session *dispatch.LoadingSession, customerScan, matchedScan invoice.ScanResult, scannedBy string) (*LoadScanResult, error) {
	invoiceNumber, ok := session.OwnerOf(customerScan.RawValue)
	if !ok {
		numbers := session.InvoiceNumbers()
		if len(numbers) == 0 {
			return nil, shared.NewDomainError("INVALID_STATE", "No invoices selected for loading")
		}
		invoiceNumber = numbers[0]
	}

	alert, err := mismatch.NewAlert(scannedBy, session.Customer, invoiceNumber, mismatch.StepLoadingDispatch, customerScan, matchedScan)
	if err != nil {
		return nil, err
	}
	if err := s.alerts.Save(ctx, alert); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, alert.GetDomainEvents())
	alert.ClearDomainEvents()

	s.logger.Warn("loading scan mismatched",
		zap.String("session_id", session.ID.String()),
		zap.String("invoice", invoiceNumber),
		zap.String("alert_id", alert.ID.String()),
	)

	alertID := alert.ID
	return &LoadScanResult{
		Matched:       false,
		LoadedCount:   session.LoadedCount(),
		ExpectedCount: session.ExpectedCount(),
		State:         session.State,
		AlertID:       &alertID,
	}, nil
}

func (s *Service) recordLoadedBin(ctx context.Context, number string) error {
	inv, err := s.invoices.FindByNumber(ctx, number)
	if err != nil {
		return err
	}
	version := inv.GetVersion()
	if err := inv.RecordLoadedBin(); err != nil {
		return err
	}
	return s.invoices.SaveWithLock(ctx, inv, version)
}

// clearLoadedProgress zeroes the loaded-bin counters of the invoices still
// selected after a selection change discarded the session's loading progress.
// except is already persisted with a clean counter.
func (s *Service) clearLoadedProgress(ctx context.Context, session *dispatch.LoadingSession, except string) {
	for _, number := range session.InvoiceNumbers() {
		if number == except {
			continue
		}
		inv, err := s.invoices.FindByNumber(ctx, number)
		if err != nil {
			s.logger.Error("failed to load invoice while clearing progress", zap.String("invoice", number), zap.Error(err))
			continue
		}
		if inv.BinsLoaded == 0 {
			continue
		}
		version := inv.GetVersion()
		inv.ClearLoadedBins()
		if err := s.invoices.SaveWithLock(ctx, inv, version); err != nil {
			s.logger.Error("failed to clear loaded bins", zap.String("invoice", number), zap.Error(err))
		}
	}
}

func (s *Service) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish events", zap.Error(err))
	}
}
