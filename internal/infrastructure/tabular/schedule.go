package tabular

import (
	"strconv"

	"github.com/gatetrack/backend/internal/application/ingest"
)

var scheduleColumns = map[string][]string{
	"customer code": {"customer code", "cust code", "customer"},
	"part number":   {"part number", "part no", "part", "part code"},
	"snp":           {"snp", "qty per bin", "quantity per bin"},
}

// ExtractScheduleRows parses an uploaded delivery schedule (.xlsx or .csv)
// into normalized rows. Workbooks commonly carry one sheet per delivery slot;
// the sheet name is preserved on each row.
func ExtractScheduleRows(filename string, data []byte) ([]ingest.ScheduleRow, error) {
	tables, err := parseTables(filename, data)
	if err != nil {
		return nil, err
	}

	var rows []ingest.ScheduleRow
	for _, t := range tables {
		cols, err := t.requireColumns(scheduleColumns)
		if err != nil {
			return nil, err
		}
		binCol := t.optionalColumn("bin", "bin capacity")
		dateCol := t.optionalColumn("delivery date", "date")
		timeCol := t.optionalColumn("delivery time", "time")
		plantCol := t.optionalColumn("plant", "plant code")

		for _, row := range t.rows {
			snpRaw := row.get(t.columns, cols["snp"])
			snp, err := strconv.Atoi(snpRaw)
			if err != nil {
				return nil, newRowError(row.line, cols["snp"], snpRaw, "SNP is not a whole number")
			}

			bin := 0
			if binCol != "" {
				if binRaw := row.get(t.columns, binCol); binRaw != "" {
					bin, err = strconv.Atoi(binRaw)
					if err != nil {
						return nil, newRowError(row.line, binCol, binRaw, "bin capacity is not a whole number")
					}
				}
			}

			sr := ingest.ScheduleRow{
				CustomerCode: row.get(t.columns, cols["customer code"]),
				PartNumber:   row.get(t.columns, cols["part number"]),
				SNP:          snp,
				Bin:          bin,
				SheetName:    t.sheet,
			}
			if dateCol != "" {
				sr.DeliveryDate = row.get(t.columns, dateCol)
			}
			if timeCol != "" {
				sr.DeliveryTime = row.get(t.columns, timeCol)
			}
			if plantCol != "" {
				sr.Plant = row.get(t.columns, plantCol)
			}
			rows = append(rows, sr)
		}
	}

	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}
