package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// table is one parsed sheet: a normalized header map plus its data rows.
// Both extractors work against this shape so CSV and XLSX inputs share the
// column-mapping and validation logic.
type table struct {
	sheet   string
	columns map[string]int
	rows    []tableRow
}

type tableRow struct {
	line   int
	fields []string
}

// get returns the trimmed value of the named column, or "" when the column
// is absent or the row is short
func (r tableRow) get(columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (r tableRow) isEmpty() bool {
	for _, field := range r.fields {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// normalizeHeader canonicalizes a header cell so files with cosmetic
// variations ("Invoice No.", "invoice_no", " INVOICE NO ") map to the same
// column key
func normalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	header = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.', '/':
			return ' '
		}
		return r
	}, header)
	return strings.Join(strings.Fields(header), " ")
}

func newTable(sheet string, raw [][]string) (*table, error) {
	if len(raw) == 0 {
		return nil, ErrMissingHeader
	}

	columns := make(map[string]int, len(raw[0]))
	for i, header := range raw[0] {
		key := normalizeHeader(header)
		if key == "" {
			continue
		}
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	if len(columns) == 0 {
		return nil, ErrMissingHeader
	}

	t := &table{sheet: sheet, columns: columns}
	for i, fields := range raw[1:] {
		row := tableRow{line: i + 2, fields: fields}
		if row.isEmpty() {
			continue
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// requireColumns resolves each alias group to a concrete column key. Group
// order is significance order; the first alias present wins. Returns a
// HeaderError naming the canonical alias of every unresolvable group.
func (t *table) requireColumns(groups map[string][]string) (map[string]string, error) {
	resolved := make(map[string]string, len(groups))
	var missing []string
	for canonical, aliases := range groups {
		found := ""
		for _, alias := range aliases {
			if _, ok := t.columns[alias]; ok {
				found = alias
				break
			}
		}
		if found == "" {
			missing = append(missing, canonical)
			continue
		}
		resolved[canonical] = found
	}
	if len(missing) > 0 {
		return nil, HeaderError{Missing: missing, Sheet: t.sheet}
	}
	return resolved, nil
}

// optionalColumn resolves an alias group to a column key, or "" when no
// alias is present
func (t *table) optionalColumn(aliases ...string) string {
	for _, alias := range aliases {
		if _, ok := t.columns[alias]; ok {
			return alias
		}
	}
	return ""
}

// parseCSV reads a single-table CSV file. Strips a UTF-8 BOM and rejects
// non-UTF-8 content before parsing.
func parseCSV(data []byte) (*table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	reader := bufio.NewReader(bytes.NewReader(data))
	if peeked, err := reader.Peek(3); err == nil && bytes.Equal(peeked, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = reader.Discard(3)
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(reader)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var raw [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		raw = append(raw, record)
	}

	return newTable("", raw)
}

// parseXLSX reads every non-empty sheet of a workbook into its own table
func parseXLSX(data []byte) ([]*table, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var tables []*table
	for _, sheet := range f.GetSheetList() {
		raw, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(raw) == 0 {
			continue
		}
		t, err := newTable(sheet, raw)
		if err != nil {
			continue
		}
		tables = append(tables, t)
	}

	if len(tables) == 0 {
		return nil, ErrNoDataRows
	}
	return tables, nil
}

// parseTables dispatches on file extension and returns one table per sheet
// (always exactly one for CSV)
func parseTables(filename string, data []byte) ([]*table, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		return parseXLSX(data)
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		t, err := parseCSV(data)
		if err != nil {
			return nil, err
		}
		return []*table{t}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
