package invoice

import (
	"strconv"
	"strings"

	"github.com/gatetrack/backend/internal/domain/shared"
)

// ScanResult is a decoded barcode capture. The engine is origin-agnostic:
// hardware scanners, camera OCR and manual entry all produce the same tuple.
type ScanResult struct {
	PartCode  string `json:"part_code"`
	Quantity  string `json:"quantity"`
	BinNumber string `json:"bin_number"`
	RawValue  string `json:"raw_value"`
}

// Validate rejects malformed scans at the boundary before any state mutation
func (s ScanResult) Validate() error {
	if strings.TrimSpace(s.RawValue) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Scan raw value cannot be empty")
	}
	if strings.TrimSpace(s.PartCode) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Scan part code cannot be empty")
	}
	if strings.TrimSpace(s.BinNumber) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Scan bin number cannot be empty")
	}
	return nil
}

// Matches is the doc-audit predicate: two scans represent the same physical
// bin iff their raw values are equal after trimming.
func (s ScanResult) Matches(other ScanResult) bool {
	return strings.TrimSpace(s.RawValue) == strings.TrimSpace(other.RawValue)
}

// SameItem is the loading-stage predicate: the same physical item scanned
// twice must agree on part code, quantity and bin number.
func (s ScanResult) SameItem(other ScanResult) bool {
	return strings.TrimSpace(s.PartCode) == strings.TrimSpace(other.PartCode) &&
		strings.TrimSpace(s.Quantity) == strings.TrimSpace(other.Quantity) &&
		strings.TrimSpace(s.BinNumber) == strings.TrimSpace(other.BinNumber)
}

// ParsedQuantity returns the scan quantity as an integer, falling back to 1
// when the payload carries no usable number
func (s ScanResult) ParsedQuantity() int {
	n, err := strconv.Atoi(strings.TrimSpace(s.Quantity))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
