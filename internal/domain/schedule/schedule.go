package schedule

import (
	"context"

	"github.com/gatetrack/backend/internal/domain/shared"
)

// Item is one row of the active delivery schedule. The schedule only filters
// which invoices are dispatch-eligible today; it never transitions state.
type Item struct {
	shared.BaseEntity
	CustomerCode string `gorm:"index;not null"`
	PartNumber   string
	SNP          int // quantity per bin
	BinCapacity  int
	SheetName    string
	DeliveryDate string
	DeliveryTime string
	Plant        string
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "schedule_items"
}

// NewItem creates a new schedule item
func NewItem(customerCode, partNumber string, snp, binCapacity int) (*Item, error) {
	if customerCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer code cannot be empty")
	}
	if snp < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "SNP cannot be negative")
	}

	return &Item{
		BaseEntity:   shared.NewBaseEntity(),
		CustomerCode: customerCode,
		PartNumber:   partNumber,
		SNP:          snp,
		BinCapacity:  binCapacity,
	}, nil
}

// SetDelivery attaches optional delivery attributes parsed from the schedule
// sheet
func (i *Item) SetDelivery(date, timeOfDay, plant string) {
	i.DeliveryDate = date
	i.DeliveryTime = timeOfDay
	i.Plant = plant
}

// Repository defines the persistence contract for the active schedule
type Repository interface {
	// ReplaceAll atomically swaps the active schedule for a new upload.
	ReplaceAll(ctx context.Context, items []Item) error
	FindAll(ctx context.Context) ([]Item, error)
	// CustomerCodes returns the distinct customer codes in the active
	// schedule, used to filter dispatch-eligible invoices.
	CustomerCodes(ctx context.Context) ([]string, error)
}
