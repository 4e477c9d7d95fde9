package tabular

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExtractInvoiceRows_CSV(t *testing.T) {
	data := []byte("Invoice No.,Customer,Bill To,Part No,Qty,Bin\n" +
		"INV-1,Acme,ACM01,P-100,160,80\n" +
		"INV-1,Acme,ACM01,P-200,80,80\n" +
		",,,,,\n" +
		"INV-2,Globex,GLX01,P-300,40.0,40\n")

	rows, err := ExtractInvoiceRows("upload.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "INV-1", rows[0].Invoice)
	assert.Equal(t, "Acme", rows[0].Customer)
	assert.Equal(t, "ACM01", rows[0].BillTo)
	assert.Equal(t, "P-100", rows[0].Part)
	assert.True(t, decimal.NewFromInt(160).Equal(rows[0].Quantity))
	assert.Equal(t, 80, rows[0].BinCapacity)

	assert.Equal(t, "INV-2", rows[2].Invoice)
	assert.True(t, decimal.NewFromInt(40).Equal(rows[2].Quantity))
}

func TestExtractInvoiceRows_CSVWithBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("invoice,customer,part,qty\nINV-1,Acme,P-100,80\n")...)

	rows, err := ExtractInvoiceRows("upload.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-1", rows[0].Invoice)
	assert.Empty(t, rows[0].BillTo)
	assert.Zero(t, rows[0].BinCapacity)
}

func TestExtractInvoiceRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Invoice", "Customer", "Part", "Qty", "Bin"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"INV-1", "Acme", "P-100", 160, 80}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"INV-1", "Acme", "P-200", 80, 80}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, extractErr := ExtractInvoiceRows("upload.xlsx", buf.Bytes())
	require.NoError(t, extractErr)
	require.Len(t, rows, 2)
	assert.Equal(t, "P-200", rows[1].Part)
	assert.True(t, decimal.NewFromInt(80).Equal(rows[1].Quantity))
}

func TestExtractInvoiceRows_Errors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := ExtractInvoiceRows("upload.pdf", []byte("x"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ExtractInvoiceRows("upload.csv", nil)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("missing required columns", func(t *testing.T) {
		_, err := ExtractInvoiceRows("upload.csv", []byte("invoice,customer\nINV-1,Acme\n"))
		var headerErr HeaderError
		require.ErrorAs(t, err, &headerErr)
		assert.ElementsMatch(t, []string{"part", "qty"}, headerErr.Missing)
	})

	t.Run("bad quantity reports row and column", func(t *testing.T) {
		_, err := ExtractInvoiceRows("upload.csv", []byte("invoice,customer,part,qty\nINV-1,Acme,P-100,eighty\n"))
		var rowErr RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 2, rowErr.Row)
		assert.Equal(t, "qty", rowErr.Column)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := ExtractInvoiceRows("upload.csv", []byte("invoice,customer,part,qty\n"))
		assert.ErrorIs(t, err, ErrNoDataRows)
	})
}

func TestExtractScheduleRows_CSV(t *testing.T) {
	data := []byte("Customer Code,Part Number,SNP,Bin,Delivery Date,Delivery Time,Plant\n" +
		"CUST-A,P-100,10,80,2026-08-24,08:00,PLANT-1\n" +
		"CUST-B,P-200,20,,,,\n")

	rows, err := ExtractScheduleRows("schedule.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "CUST-A", rows[0].CustomerCode)
	assert.Equal(t, 10, rows[0].SNP)
	assert.Equal(t, 80, rows[0].Bin)
	assert.Equal(t, "2026-08-24", rows[0].DeliveryDate)
	assert.Equal(t, "PLANT-1", rows[0].Plant)

	assert.Equal(t, "CUST-B", rows[1].CustomerCode)
	assert.Zero(t, rows[1].Bin)
}

func TestExtractScheduleRows_XLSXSheetNames(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Morning"))
	require.NoError(t, f.SetSheetRow("Morning", "A1", &[]interface{}{"Customer Code", "Part Number", "SNP"}))
	require.NoError(t, f.SetSheetRow("Morning", "A2", &[]interface{}{"CUST-A", "P-100", 10}))

	_, err := f.NewSheet("Evening")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Evening", "A1", &[]interface{}{"Customer Code", "Part Number", "SNP"}))
	require.NoError(t, f.SetSheetRow("Evening", "A2", &[]interface{}{"CUST-B", "P-200", 20}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, extractErr := ExtractScheduleRows("schedule.xlsx", buf.Bytes())
	require.NoError(t, extractErr)
	require.Len(t, rows, 2)
	assert.Equal(t, "Morning", rows[0].SheetName)
	assert.Equal(t, "Evening", rows[1].SheetName)
}

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Invoice No.":    "invoice no",
		" INVOICE_NO ":   "invoice no",
		"bill-to":        "bill to",
		"Qty":            "qty",
		"Customer  Code": "customer code",
	}
	for input, want := range cases {
		assert.Equal(t, want, normalizeHeader(input), input)
	}
}
