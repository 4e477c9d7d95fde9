package tabular

import (
	"strconv"

	"github.com/gatetrack/backend/internal/application/ingest"
	"github.com/shopspring/decimal"
)

var invoiceColumns = map[string][]string{
	"invoice":  {"invoice", "invoice no", "invoice number", "inv no"},
	"customer": {"customer", "customer name"},
	"part":     {"part", "part no", "part number", "part code"},
	"qty":      {"qty", "quantity"},
}

// ExtractInvoiceRows parses an uploaded invoice file (.xlsx or .csv) into
// normalized rows. Every sheet of a workbook is read; bill-to and bin
// capacity columns are optional and default to empty/zero, which the upload
// service resolves against its configuration.
func ExtractInvoiceRows(filename string, data []byte) ([]ingest.InvoiceRow, error) {
	tables, err := parseTables(filename, data)
	if err != nil {
		return nil, err
	}

	var rows []ingest.InvoiceRow
	for _, t := range tables {
		cols, err := t.requireColumns(invoiceColumns)
		if err != nil {
			return nil, err
		}
		billToCol := t.optionalColumn("bill to", "billto", "bill to code")
		binCol := t.optionalColumn("bin", "bin capacity", "bin qty")

		for _, row := range t.rows {
			qtyRaw := row.get(t.columns, cols["qty"])
			qty, err := decimal.NewFromString(qtyRaw)
			if err != nil {
				return nil, newRowError(row.line, cols["qty"], qtyRaw, "quantity is not a number")
			}

			binCapacity := 0
			if binCol != "" {
				if binRaw := row.get(t.columns, binCol); binRaw != "" {
					binCapacity, err = strconv.Atoi(binRaw)
					if err != nil {
						return nil, newRowError(row.line, binCol, binRaw, "bin capacity is not a whole number")
					}
				}
			}

			billTo := ""
			if billToCol != "" {
				billTo = row.get(t.columns, billToCol)
			}

			rows = append(rows, ingest.InvoiceRow{
				Invoice:     row.get(t.columns, cols["invoice"]),
				Customer:    row.get(t.columns, cols["customer"]),
				BillTo:      billTo,
				Part:        row.get(t.columns, cols["part"]),
				Quantity:    qty,
				BinCapacity: binCapacity,
			})
		}
	}

	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}
