package invoiceview

import (
	"context"
	"time"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/schedule"
	"github.com/gatetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Cache keys for the derived read views
const (
	keyUploaded     = "views:invoices:uploaded"
	keyAudited      = "views:invoices:audited"
	keyDispatchable = "views:invoices:dispatchable"
	keyToday        = "views:invoices:today"
	keyScheduled    = "views:invoices:scheduled"
)

// ViewCache is a short-TTL cache for snapshot read views. Staleness is
// tolerated; correctness comes from every view deriving from the same store.
type ViewCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service serves invoice queries and derived read views
type Service struct {
	invoices  invoice.Repository
	schedules schedule.Repository
	cache     ViewCache
	ttl       time.Duration
	logger    *zap.Logger
}

// NewService creates a new invoiceview Service. cache may be nil, in which
// case every view is read straight from the store.
func NewService(invoices invoice.Repository, schedules schedule.Repository, cache ViewCache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		invoices:  invoices,
		schedules: schedules,
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
	}
}

// Get returns one invoice by its business number
func (s *Service) Get(ctx context.Context, number string) (*invoice.Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	return s.invoices.FindByNumber(ctx, number)
}

// List returns invoices with filtering and pagination
func (s *Service) List(ctx context.Context, filter shared.Filter) ([]invoice.Invoice, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.invoices.FindAll(ctx, filter)
}

// Uploaded returns invoices that entered the store via upload
func (s *Service) Uploaded(ctx context.Context) ([]invoice.Invoice, error) {
	return s.cached(ctx, keyUploaded, func() ([]invoice.Invoice, error) {
		return s.invoices.FindUploaded(ctx)
	})
}

// Audited returns invoices whose document audit is complete
func (s *Service) Audited(ctx context.Context) ([]invoice.Invoice, error) {
	return s.cached(ctx, keyAudited, func() ([]invoice.Invoice, error) {
		return s.invoices.FindAudited(ctx)
	})
}

// Dispatchable returns audit-complete, unblocked, not-yet-dispatched invoices
func (s *Service) Dispatchable(ctx context.Context) ([]invoice.Invoice, error) {
	return s.cached(ctx, keyDispatchable, func() ([]invoice.Invoice, error) {
		return s.invoices.FindDispatchable(ctx)
	})
}

// Today returns invoices uploaded on the current calendar day and not yet
// dispatched
func (s *Service) Today(ctx context.Context) ([]invoice.Invoice, error) {
	return s.cached(ctx, keyToday, func() ([]invoice.Invoice, error) {
		return s.invoices.FindActiveOn(ctx, time.Now())
	})
}

// Scheduled returns invoices whose bill-to code appears in the active
// schedule
func (s *Service) Scheduled(ctx context.Context) ([]invoice.Invoice, error) {
	return s.cached(ctx, keyScheduled, func() ([]invoice.Invoice, error) {
		codes, err := s.schedules.CustomerCodes(ctx)
		if err != nil {
			return nil, err
		}
		if len(codes) == 0 {
			return []invoice.Invoice{}, nil
		}
		return s.invoices.FindByBillToIn(ctx, codes)
	})
}

// Counts returns invoice counts per lifecycle status
func (s *Service) Counts(ctx context.Context) (map[invoice.Status]int64, error) {
	return s.invoices.CountByStatus(ctx)
}

// InvalidateViews drops all cached read views. Called after dispatch
// mutations so a dispatched invoice never lingers in a pending view beyond
// the cache TTL.
func (s *Service) InvalidateViews(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, keyUploaded, keyAudited, keyDispatchable, keyToday, keyScheduled)
}

func (s *Service) cached(ctx context.Context, key string, load func() ([]invoice.Invoice, error)) ([]invoice.Invoice, error) {
	if s.cache != nil {
		var invoices []invoice.Invoice
		hit, err := s.cache.Get(ctx, key, &invoices)
		if err != nil {
			s.logger.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return invoices, nil
		}
	}

	invoices, err := load()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, invoices, s.ttl); err != nil {
			s.logger.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return invoices, nil
}
