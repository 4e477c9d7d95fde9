package ingest

import "github.com/shopspring/decimal"

// InvoiceRow is one normalized row from the tabular extractor, grouped by
// invoice number before reaching the store
type InvoiceRow struct {
	Invoice     string          `json:"invoice"`
	Customer    string          `json:"customer"`
	BillTo      string          `json:"bill_to"`
	Part        string          `json:"part"`
	Quantity    decimal.Decimal `json:"qty"`
	BinCapacity int             `json:"bin_capacity"`
}

// ScheduleRow is one row of an uploaded delivery schedule
type ScheduleRow struct {
	CustomerCode string `json:"customer_code"`
	PartNumber   string `json:"part_number"`
	SNP          int    `json:"snp"`
	Bin          int    `json:"bin"`
	SheetName    string `json:"sheet_name"`
	DeliveryDate string `json:"delivery_date"`
	DeliveryTime string `json:"delivery_time"`
	Plant        string `json:"plant"`
}

// UploadResult reports what an invoice upload actually inserted.
// Duplicate numbers keep their existing record and are listed in Skipped.
type UploadResult struct {
	Inserted       int      `json:"inserted"`
	InvoiceNumbers []string `json:"invoice_numbers"`
	SkippedNumbers []string `json:"skipped_numbers"`
}
