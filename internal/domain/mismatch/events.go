package mismatch

import (
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeAlert = "MismatchAlert"

// Event type constants
const (
	EventTypeRaised   = "mismatch.raised"
	EventTypeResolved = "mismatch.resolved"
)

// AlertRaisedEvent is raised when a reconciliation produces a mismatch
type AlertRaisedEvent struct {
	shared.BaseDomainEvent
	AlertID       uuid.UUID `json:"alert_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Customer      string    `json:"customer"`
	Step          Step      `json:"step"`
	User          string    `json:"user"`
	CustomerRaw   string    `json:"customer_raw"`
	PlantRaw      string    `json:"plant_raw"`
}

// NewAlertRaisedEvent creates a new AlertRaisedEvent
func NewAlertRaisedEvent(alert *Alert) *AlertRaisedEvent {
	return &AlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRaised, AggregateTypeAlert, alert.ID),
		AlertID:         alert.ID,
		InvoiceNumber:   alert.InvoiceNumber,
		Customer:        alert.Customer,
		Step:            alert.Step,
		User:            alert.User,
		CustomerRaw:     alert.CustomerScan.RawValue,
		PlantRaw:        alert.PlantScan.RawValue,
	}
}

// AlertResolvedEvent is raised when an admin reviews an alert
type AlertResolvedEvent struct {
	shared.BaseDomainEvent
	AlertID       uuid.UUID   `json:"alert_id"`
	InvoiceNumber string      `json:"invoice_number"`
	Step          Step        `json:"step"`
	Status        AlertStatus `json:"status"`
	ReviewedBy    string      `json:"reviewed_by"`
}

// NewAlertResolvedEvent creates a new AlertResolvedEvent
func NewAlertResolvedEvent(alert *Alert) *AlertResolvedEvent {
	return &AlertResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeResolved, AggregateTypeAlert, alert.ID),
		AlertID:         alert.ID,
		InvoiceNumber:   alert.InvoiceNumber,
		Step:            alert.Step,
		Status:          alert.Status,
		ReviewedBy:      alert.ReviewedBy,
	}
}
