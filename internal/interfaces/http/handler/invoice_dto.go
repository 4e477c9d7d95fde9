package handler

import (
	"time"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// LineItemResponse is one ingested invoice row
type LineItemResponse struct {
	PartCode string          `json:"part_code"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ValidatedBinResponse is one matched doc-audit scan pair
type ValidatedBinResponse struct {
	BinNumber string    `json:"bin_number"`
	PartCode  string    `json:"part_code"`
	Quantity  int       `json:"quantity"`
	ScannedBy string    `json:"scanned_by"`
	ScannedAt time.Time `json:"scanned_at"`
}

// InvoiceResponse is the transport shape of an invoice
type InvoiceResponse struct {
	Number        string                 `json:"number"`
	Customer      string                 `json:"customer"`
	BillTo        string                 `json:"bill_to,omitempty"`
	TotalQuantity decimal.Decimal        `json:"total_quantity"`
	BinCapacity   int                    `json:"bin_capacity"`
	ExpectedBins  int                    `json:"expected_bins"`
	ScannedBins   int                    `json:"scanned_bins"`
	BinsLoaded    int                    `json:"bins_loaded"`
	Status        string                 `json:"status"`
	Blocked       bool                   `json:"blocked"`
	BlockedAt     *time.Time             `json:"blocked_at,omitempty"`
	UploadedBy    string                 `json:"uploaded_by"`
	UploadedAt    *time.Time             `json:"uploaded_at,omitempty"`
	AuditedBy     string                 `json:"audited_by,omitempty"`
	AuditedAt     *time.Time             `json:"audited_at,omitempty"`
	DispatchedBy  string                 `json:"dispatched_by,omitempty"`
	DispatchedAt  *time.Time             `json:"dispatched_at,omitempty"`
	VehicleNumber string                 `json:"vehicle_number,omitempty"`
	DeliveryDate  string                 `json:"delivery_date,omitempty"`
	DeliveryTime  string                 `json:"delivery_time,omitempty"`
	Plant         string                 `json:"plant,omitempty"`
	Items         []LineItemResponse     `json:"items,omitempty"`
	ValidatedBins []ValidatedBinResponse `json:"validated_bins,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ToInvoiceResponse maps an invoice aggregate to its transport shape
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		Number:        inv.Number,
		Customer:      inv.Customer,
		BillTo:        inv.BillTo,
		TotalQuantity: inv.TotalQuantity,
		BinCapacity:   inv.BinCapacity,
		ExpectedBins:  inv.ExpectedBins,
		ScannedBins:   inv.ScannedBins,
		BinsLoaded:    inv.BinsLoaded,
		Status:        inv.Status.String(),
		Blocked:       inv.Blocked,
		BlockedAt:     inv.BlockedAt,
		UploadedBy:    inv.UploadedBy,
		UploadedAt:    inv.UploadedAt,
		AuditedBy:     inv.AuditedBy,
		AuditedAt:     inv.AuditedAt,
		DispatchedBy:  inv.DispatchedBy,
		DispatchedAt:  inv.DispatchedAt,
		VehicleNumber: inv.VehicleNumber,
		DeliveryDate:  inv.DeliveryDate,
		DeliveryTime:  inv.DeliveryTime,
		Plant:         inv.Plant,
		CreatedAt:     inv.CreatedAt,
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, LineItemResponse{
			PartCode: item.PartCode,
			Quantity: item.Quantity,
		})
	}
	for _, bin := range inv.ValidatedBins {
		resp.ValidatedBins = append(resp.ValidatedBins, ValidatedBinResponse{
			BinNumber: bin.BinNumber,
			PartCode:  bin.PartCode,
			Quantity:  bin.Quantity,
			ScannedBy: bin.ScannedBy,
			ScannedAt: bin.ScannedAt,
		})
	}
	return resp
}

// ToInvoiceResponses maps a slice of invoices
func ToInvoiceResponses(invoices []invoice.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, ToInvoiceResponse(&invoices[i]))
	}
	return responses
}
