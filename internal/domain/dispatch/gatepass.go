package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GatepassSummary aggregates the loaded items for the exit document
type GatepassSummary struct {
	TotalItems       int `json:"total_items"`
	TotalQuantity    int `json:"total_quantity"`
	UniquePartCodes  int `json:"unique_part_codes"`
	UniqueBinNumbers int `json:"unique_bin_numbers"`
}

// Gatepass authorizes a loaded vehicle's exit. It is constructed exactly once
// per session, at dispatch completion, and never mutated.
type Gatepass struct {
	GatepassNumber string          `json:"gatepass_number"`
	VehicleNumber  string          `json:"vehicle_number"`
	DateTime       time.Time       `json:"date_time"`
	AuthorizedBy   string          `json:"authorized_by"`
	InvoiceNumbers []string        `json:"invoice_numbers"`
	Items          []LoadedBin     `json:"items"`
	Summary        GatepassSummary `json:"summary"`
}

// NewGatepass builds the gatepass from the session's accumulated loaded items
func NewGatepass(vehicleNumber, authorizedBy string, invoiceNumbers []string, items []LoadedBin) *Gatepass {
	now := time.Now()

	totalQty := 0
	partCodes := make(map[string]struct{})
	binNumbers := make(map[string]struct{})
	for _, item := range items {
		totalQty += item.Quantity
		partCodes[item.PartCode] = struct{}{}
		binNumbers[item.BinNumber] = struct{}{}
	}

	copied := make([]LoadedBin, len(items))
	copy(copied, items)

	return &Gatepass{
		GatepassNumber: newGatepassNumber(now),
		VehicleNumber:  vehicleNumber,
		DateTime:       now,
		AuthorizedBy:   authorizedBy,
		InvoiceNumbers: append([]string(nil), invoiceNumbers...),
		Items:          copied,
		Summary: GatepassSummary{
			TotalItems:       len(items),
			TotalQuantity:    totalQty,
			UniquePartCodes:  len(partCodes),
			UniqueBinNumbers: len(binNumbers),
		},
	}
}

func newGatepassNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
	return fmt.Sprintf("GP-%s-%s", at.Format("20060102-150405"), suffix)
}
