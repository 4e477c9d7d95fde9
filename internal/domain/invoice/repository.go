package invoice

import (
	"context"
	"time"

	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the persistence contract for invoices.
// SaveWithLock is the per-invoice serialization boundary: it persists only
// when the stored version still equals expectedVersion, so concurrent
// operator sessions cannot lose each other's scan progress.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindByNumbers(ctx context.Context, numbers []string) ([]Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	// ExistingNumbers returns which of the given invoice numbers are already
	// present in the store. Used to skip duplicates on ingestion.
	ExistingNumbers(ctx context.Context, numbers []string) ([]string, error)

	// View queries, all snapshot reads.
	FindUploaded(ctx context.Context) ([]Invoice, error)
	FindAudited(ctx context.Context) ([]Invoice, error)
	FindDispatchable(ctx context.Context) ([]Invoice, error)
	FindActiveOn(ctx context.Context, day time.Time) ([]Invoice, error)
	FindByBillToIn(ctx context.Context, billTos []string) ([]Invoice, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)

	Save(ctx context.Context, inv *Invoice) error
	SaveWithLock(ctx context.Context, inv *Invoice, expectedVersion int) error
}
