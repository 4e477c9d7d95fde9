package mismatch

import (
	"context"
	"fmt"
	"time"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Step identifies the workflow stage that produced a mismatch
type Step string

const (
	StepDocAudit        Step = "doc-audit"
	StepLoadingDispatch Step = "loading-dispatch"
)

// IsValid checks if the step is a valid Step
func (s Step) IsValid() bool {
	switch s {
	case StepDocAudit, StepLoadingDispatch:
		return true
	}
	return false
}

// String returns the string representation of Step
func (s Step) String() string {
	return string(s)
}

// AlertStatus represents the review state of a mismatch alert
type AlertStatus string

const (
	AlertStatusPending  AlertStatus = "pending"
	AlertStatusApproved AlertStatus = "approved"
	AlertStatusRejected AlertStatus = "rejected"
)

// IsValid checks if the status is a valid AlertStatus
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusPending, AlertStatusApproved, AlertStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true for reviewed statuses
func (s AlertStatus) IsTerminal() bool {
	return s == AlertStatusApproved || s == AlertStatusRejected
}

// String returns the string representation of AlertStatus
func (s AlertStatus) String() string {
	return string(s)
}

// Alert represents a mismatch alert aggregate root.
// It captures both divergent scans of a failed reconciliation and is
// terminal-mutated exactly once by an admin review.
type Alert struct {
	shared.BaseAggregateRoot
	User          string
	Customer      string
	InvoiceNumber string `gorm:"index;not null"`
	Step          Step
	CustomerScan  invoice.ScanResult `gorm:"embedded;embeddedPrefix:customer_scan_"`
	PlantScan     invoice.ScanResult `gorm:"embedded;embeddedPrefix:plant_scan_"`
	Status        AlertStatus
	ReviewedBy    string
	ReviewedAt    *time.Time
}

// TableName returns the table name for GORM
func (Alert) TableName() string {
	return "mismatch_alerts"
}

// NewAlert creates a pending mismatch alert.
// The caller guarantees invoiceNumber referenced an existing invoice at
// creation time; the alert does not re-validate it.
func NewAlert(user, customer, invoiceNumber string, step Step, customerScan, plantScan invoice.ScanResult) (*Alert, error) {
	if user == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Scanning user cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if !step.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown mismatch step %q", step))
	}

	alert := &Alert{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		User:              user,
		Customer:          customer,
		InvoiceNumber:     invoiceNumber,
		Step:              step,
		CustomerScan:      customerScan,
		PlantScan:         plantScan,
		Status:            AlertStatusPending,
	}

	alert.AddDomainEvent(NewAlertRaisedEvent(alert))

	return alert, nil
}

// Resolve transitions a pending alert to exactly one terminal status.
// Resolving an already-reviewed alert is an error.
func (a *Alert) Resolve(status AlertStatus, reviewedBy string) error {
	if a.Status != AlertStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Alert is already %s", a.Status))
	}
	if !status.IsTerminal() {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Resolution status must be approved or rejected, got %q", status))
	}
	if reviewedBy == "" {
		return shared.NewDomainError("INVALID_INPUT", "Reviewer cannot be empty")
	}

	now := time.Now()
	a.Status = status
	a.ReviewedBy = reviewedBy
	a.ReviewedAt = &now
	a.UpdatedAt = now

	a.AddDomainEvent(NewAlertResolvedEvent(a))

	return nil
}

// IsPending returns true if the alert awaits review
func (a *Alert) IsPending() bool {
	return a.Status == AlertStatusPending
}

// Repository defines the persistence contract for mismatch alerts
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	// FindPending returns unreviewed alerts oldest-first.
	FindPending(ctx context.Context) ([]Alert, error)
	FindByInvoiceNumber(ctx context.Context, number string) ([]Alert, error)
	Save(ctx context.Context, alert *Alert) error
	SaveWithLock(ctx context.Context, alert *Alert, expectedVersion int) error
}
