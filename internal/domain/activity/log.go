package activity

import (
	"context"
	"fmt"

	"github.com/gatetrack/backend/internal/domain/shared"
)

// Type categorizes a log entry by workflow stage
type Type string

const (
	TypeUpload   Type = "upload"
	TypeAudit    Type = "audit"
	TypeDispatch Type = "dispatch"
)

// IsValid checks if the type is a valid Type
func (t Type) IsValid() bool {
	switch t {
	case TypeUpload, TypeAudit, TypeDispatch:
		return true
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// LogEntry is one append-only activity record. Entries are never mutated or
// deleted; retention is unbounded.
type LogEntry struct {
	shared.BaseEntity
	User    string
	Action  string
	Details string
	Type    Type `gorm:"index;not null"`
}

// TableName returns the table name for GORM
func (LogEntry) TableName() string {
	return "activity_log"
}

// NewLogEntry creates a new log entry
func NewLogEntry(user, action, details string, typ Type) (*LogEntry, error) {
	if user == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "User cannot be empty")
	}
	if action == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Action cannot be empty")
	}
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown activity type %q", typ))
	}

	return &LogEntry{
		BaseEntity: shared.NewBaseEntity(),
		User:       user,
		Action:     action,
		Details:    details,
		Type:       typ,
	}, nil
}

// Repository defines the persistence contract for the activity log
type Repository interface {
	Append(ctx context.Context, entry *LogEntry) error
	FindByType(ctx context.Context, typ Type, filter shared.Filter) ([]LogEntry, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]LogEntry, error)
}
