package activity

import (
	"context"

	"github.com/gatetrack/backend/internal/domain/activity"
	"github.com/gatetrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service appends to and queries the append-only activity log
type Service struct {
	entries activity.Repository
	logger  *zap.Logger
}

// NewService creates a new activity Service
func NewService(entries activity.Repository, logger *zap.Logger) *Service {
	return &Service{entries: entries, logger: logger}
}

// Append records one activity entry
func (s *Service) Append(ctx context.Context, user, action, details string, typ activity.Type) (*activity.LogEntry, error) {
	entry, err := activity.NewLogEntry(user, action, details, typ)
	if err != nil {
		return nil, err
	}
	if err := s.entries.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ByType returns log entries of one category
func (s *Service) ByType(ctx context.Context, typ activity.Type, filter shared.Filter) ([]activity.LogEntry, error) {
	if !typ.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown activity type")
	}
	return s.entries.FindByType(ctx, typ, filter)
}

// All returns log entries across categories
func (s *Service) All(ctx context.Context, filter shared.Filter) ([]activity.LogEntry, error) {
	return s.entries.FindAll(ctx, filter)
}
