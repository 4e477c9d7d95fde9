package dispatch

import (
	"fmt"
	"time"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SessionState represents the phase of a loading session
type SessionState string

const (
	StateSelecting         SessionState = "SELECTING"
	StateScanning          SessionState = "SCANNING"
	StateReady             SessionState = "READY"
	StateGatepassGenerated SessionState = "GATEPASS_GENERATED"
)

// IsValid checks if the state is a valid SessionState
func (s SessionState) IsValid() bool {
	switch s {
	case StateSelecting, StateScanning, StateReady, StateGatepassGenerated:
		return true
	}
	return false
}

// String returns the string representation of SessionState
func (s SessionState) String() string {
	return string(s)
}

// SelectedInvoice is the loading-relevant snapshot of an invoice taken when
// it is selected into the session
type SelectedInvoice struct {
	Number         string
	Customer       string
	ExpectedBins   int // validated audit bins, the count the vehicle must receive
	ExpectedValues map[string]struct{}
}

// LoadedBin is one accepted loading scan
type LoadedBin struct {
	PartCode  string    `json:"part_code"`
	Quantity  int       `json:"quantity"`
	BinNumber string    `json:"bin_number"`
	RawValue  string    `json:"raw_value"`
	ScannedBy string    `json:"scanned_by"`
	ScannedAt time.Time `json:"scanned_at"`
}

// LoadingSession tracks one vehicle's loading cycle: invoice selection, item
// scanning and gatepass generation. Sessions live in memory only; invoice
// state changes go through the invoice store.
type LoadingSession struct {
	ID        uuid.UUID
	State     SessionState
	Customer  string
	StartedBy string
	Selected  []SelectedInvoice
	Loaded    []LoadedBin
	Gatepass  *Gatepass
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLoadingSession starts a fresh loading cycle
func NewLoadingSession(startedBy string) (*LoadingSession, error) {
	if startedBy == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Session starter cannot be empty")
	}

	now := time.Now()
	return &LoadingSession{
		ID:        uuid.New(),
		State:     StateSelecting,
		StartedBy: startedBy,
		Selected:  make([]SelectedInvoice, 0),
		Loaded:    make([]LoadedBin, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SelectInvoice adds an invoice to the session. All invoices on one vehicle
// must belong to the same customer. Any selection change discards loading
// progress.
func (s *LoadingSession) SelectInvoice(sel SelectedInvoice) error {
	if s.State == StateGatepassGenerated {
		return shared.NewDomainError("INVALID_STATE", "Session already generated a gatepass")
	}
	for _, existing := range s.Selected {
		if existing.Number == sel.Number {
			return shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Invoice %s is already selected", sel.Number))
		}
	}
	if len(s.Selected) > 0 && s.Customer != sel.Customer {
		return shared.NewDomainError("CUSTOMER_MISMATCH", "Different customer not allowed on the same vehicle")
	}

	s.Customer = sel.Customer
	s.Selected = append(s.Selected, sel)
	s.resetLoading()

	return nil
}

// DeselectInvoice removes an invoice from the session and discards loading
// progress
func (s *LoadingSession) DeselectInvoice(number string) error {
	if s.State == StateGatepassGenerated {
		return shared.NewDomainError("INVALID_STATE", "Session already generated a gatepass")
	}
	for idx, existing := range s.Selected {
		if existing.Number == number {
			s.Selected = append(s.Selected[:idx], s.Selected[idx+1:]...)
			if len(s.Selected) == 0 {
				s.Customer = ""
			}
			s.resetLoading()
			return nil
		}
	}
	return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Invoice %s is not selected", number))
}

// IsSelected reports whether the invoice number is in the current selection
func (s *LoadingSession) IsSelected(number string) bool {
	for _, existing := range s.Selected {
		if existing.Number == number {
			return true
		}
	}
	return false
}

// ExpectedCount is the number of items the vehicle must receive: the sum of
// audit-validated bins across selected invoices
func (s *LoadingSession) ExpectedCount() int {
	total := 0
	for _, sel := range s.Selected {
		total += sel.ExpectedBins
	}
	return total
}

// LoadedCount returns the number of accepted loading scans
func (s *LoadingSession) LoadedCount() int {
	return len(s.Loaded)
}

// RecordLoad accepts a reconciled loading scan. The scan must belong to a
// selected invoice's expected set and must not repeat an already-loaded raw
// value.
func (s *LoadingSession) RecordLoad(scan invoice.ScanResult, scannedBy string) (*LoadedBin, error) {
	if s.State == StateGatepassGenerated {
		return nil, shared.NewDomainError("INVALID_STATE", "Session already generated a gatepass")
	}
	if len(s.Selected) == 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "No invoices selected for loading")
	}
	for _, loaded := range s.Loaded {
		if loaded.RawValue == scan.RawValue {
			return nil, shared.NewDomainError("ALREADY_LOADED", fmt.Sprintf("Bin %s is already loaded", scan.BinNumber))
		}
	}
	if !s.isExpected(scan.RawValue) {
		return nil, shared.NewDomainError("NOT_EXPECTED", fmt.Sprintf("Scan does not belong to any selected invoice: %s", scan.RawValue))
	}

	bin := LoadedBin{
		PartCode:  scan.PartCode,
		Quantity:  scan.ParsedQuantity(),
		BinNumber: scan.BinNumber,
		RawValue:  scan.RawValue,
		ScannedBy: scannedBy,
		ScannedAt: time.Now(),
	}
	s.Loaded = append(s.Loaded, bin)
	if len(s.Loaded) >= s.ExpectedCount() {
		s.State = StateReady
	} else {
		s.State = StateScanning
	}
	s.UpdatedAt = time.Now()

	return &bin, nil
}

// InvoiceNumbers returns the selected invoice numbers in selection order
func (s *LoadingSession) InvoiceNumbers() []string {
	numbers := make([]string, len(s.Selected))
	for i, sel := range s.Selected {
		numbers[i] = sel.Number
	}
	return numbers
}

// ReadyToGenerate reports whether GenerateGatepass would succeed. Callers
// stamp dispatch on the selected invoices between this check and generation
// so the gatepass reflects that instant.
func (s *LoadingSession) ReadyToGenerate(vehicleNumber string) error {
	if s.State == StateGatepassGenerated {
		return shared.NewDomainError("INVALID_STATE", "Session already generated a gatepass")
	}
	if vehicleNumber == "" {
		return shared.NewDomainError("INVALID_INPUT", "Vehicle number cannot be empty")
	}
	if len(s.Selected) == 0 {
		return shared.NewDomainError("INVALID_STATE", "No invoices selected for loading")
	}
	if short := s.ExpectedCount() - len(s.Loaded); short > 0 {
		return shared.NewDomainError("INCOMPLETE_LOAD", fmt.Sprintf("Not all items loaded: %d of %d remaining", short, s.ExpectedCount()))
	}
	return nil
}

// OwnerOf returns the selected invoice whose expected set contains the raw
// value
func (s *LoadingSession) OwnerOf(rawValue string) (string, bool) {
	for _, sel := range s.Selected {
		if _, ok := sel.ExpectedValues[rawValue]; ok {
			return sel.Number, true
		}
	}
	return "", false
}

// GenerateGatepass closes the session: every expected item must be loaded.
func (s *LoadingSession) GenerateGatepass(vehicleNumber, authorizedBy string) (*Gatepass, error) {
	if err := s.ReadyToGenerate(vehicleNumber); err != nil {
		return nil, err
	}

	gatepass := NewGatepass(vehicleNumber, authorizedBy, s.InvoiceNumbers(), s.Loaded)
	s.Gatepass = gatepass
	s.State = StateGatepassGenerated
	s.UpdatedAt = time.Now()

	return gatepass, nil
}

func (s *LoadingSession) isExpected(rawValue string) bool {
	for _, sel := range s.Selected {
		if _, ok := sel.ExpectedValues[rawValue]; ok {
			return true
		}
	}
	return false
}

func (s *LoadingSession) resetLoading() {
	s.Loaded = s.Loaded[:0]
	s.State = StateSelecting
	s.UpdatedAt = time.Now()
}
