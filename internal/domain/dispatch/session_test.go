package dispatch

import (
	"fmt"
	"testing"

	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSession(t *testing.T) *LoadingSession {
	session, err := NewLoadingSession("loader")
	require.NoError(t, err)
	return session
}

func selection(number, customer string, bins int, rawValues ...string) SelectedInvoice {
	expected := make(map[string]struct{}, len(rawValues))
	for _, v := range rawValues {
		expected[v] = struct{}{}
	}
	return SelectedInvoice{Number: number, Customer: customer, ExpectedBins: bins, ExpectedValues: expected}
}

func loadAll(t *testing.T, session *LoadingSession, rawValues ...string) {
	for i, raw := range rawValues {
		scan := invoice.ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: fmt.Sprintf("B-%d", i+1), RawValue: raw}
		_, err := session.RecordLoad(scan, "loader")
		require.NoError(t, err)
	}
}

func TestNewLoadingSession(t *testing.T) {
	session := createTestSession(t)
	assert.Equal(t, StateSelecting, session.State)
	assert.Equal(t, "loader", session.StartedBy)
	assert.Empty(t, session.Selected)
	assert.Empty(t, session.Loaded)

	_, err := NewLoadingSession("")
	assert.Error(t, err)
}

func TestLoadingSession_SelectInvoice(t *testing.T) {
	t.Run("accepts same customer invoices", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))
		require.NoError(t, session.SelectInvoice(selection("INV-2", "Acme", 1, "R3")))

		assert.Equal(t, "Acme", session.Customer)
		assert.Equal(t, 3, session.ExpectedCount())
		assert.True(t, session.IsSelected("INV-1"))
		assert.Equal(t, []string{"INV-1", "INV-2"}, session.InvoiceNumbers())
	})

	t.Run("rejects different customer", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))

		err := session.SelectInvoice(selection("INV-9", "Globex", 1, "R9"))
		assert.Error(t, err)
		assert.Len(t, session.Selected, 1)
		assert.Equal(t, "Acme", session.Customer)
	})

	t.Run("rejects duplicate selection", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))
		assert.Error(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))
	})

	t.Run("selection change discards loading progress", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))
		loadAll(t, session, "R1")
		require.Equal(t, 1, session.LoadedCount())

		require.NoError(t, session.SelectInvoice(selection("INV-2", "Acme", 1, "R3")))
		assert.Equal(t, 0, session.LoadedCount())
		assert.Equal(t, StateSelecting, session.State)
	})
}

func TestLoadingSession_DeselectInvoice(t *testing.T) {
	session := createTestSession(t)
	require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))
	require.NoError(t, session.SelectInvoice(selection("INV-2", "Acme", 1, "R3")))
	loadAll(t, session, "R1")

	require.NoError(t, session.DeselectInvoice("INV-2"))
	assert.Equal(t, 0, session.LoadedCount())
	assert.False(t, session.IsSelected("INV-2"))

	assert.Error(t, session.DeselectInvoice("INV-9"))

	require.NoError(t, session.DeselectInvoice("INV-1"))
	assert.Empty(t, session.Customer)
}

func TestLoadingSession_RecordLoad(t *testing.T) {
	t.Run("tracks progress and flips to ready", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))

		loadAll(t, session, "R1")
		assert.Equal(t, StateScanning, session.State)

		loadAll(t, session, "R2")
		assert.Equal(t, StateReady, session.State)
		assert.Equal(t, 2, session.LoadedCount())
	})

	t.Run("rejects duplicate raw value", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))
		loadAll(t, session, "R1")

		_, err := session.RecordLoad(invoice.ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "R1"}, "loader")
		assert.Error(t, err)
		assert.Equal(t, 1, session.LoadedCount())
	})

	t.Run("rejects unexpected raw value", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))

		_, err := session.RecordLoad(invoice.ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "STRAY"}, "loader")
		assert.Error(t, err)
		assert.Equal(t, 0, session.LoadedCount())
	})

	t.Run("rejects without selection", func(t *testing.T) {
		session := createTestSession(t)
		_, err := session.RecordLoad(invoice.ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "R1"}, "loader")
		assert.Error(t, err)
	})

	t.Run("parses bin quantity", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 1, "R1")))

		bin, err := session.RecordLoad(invoice.ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "R1"}, "loader")
		require.NoError(t, err)
		assert.Equal(t, 80, bin.Quantity)
		assert.Equal(t, "loader", bin.ScannedBy)
	})
}

func TestLoadingSession_GenerateGatepass(t *testing.T) {
	t.Run("fails while items are short", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))
		loadAll(t, session, "R1")

		_, err := session.GenerateGatepass("KA-01-1234", "loader")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2")
	})

	t.Run("fails without vehicle number", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 1, "R1")))
		loadAll(t, session, "R1")

		_, err := session.GenerateGatepass("", "loader")
		assert.Error(t, err)
	})

	t.Run("fails without selection", func(t *testing.T) {
		session := createTestSession(t)
		_, err := session.GenerateGatepass("KA-01-1234", "loader")
		assert.Error(t, err)
	})

	t.Run("succeeds when fully loaded and is terminal", func(t *testing.T) {
		session := createTestSession(t)
		require.NoError(t, session.SelectInvoice(selection("INV-1", "Acme", 2, "R1", "R2")))
		loadAll(t, session, "R1", "R2")

		gatepass, err := session.GenerateGatepass("KA-01-1234", "loader")
		require.NoError(t, err)
		assert.Equal(t, StateGatepassGenerated, session.State)
		assert.Equal(t, "KA-01-1234", gatepass.VehicleNumber)
		assert.Equal(t, "loader", gatepass.AuthorizedBy)
		assert.Equal(t, []string{"INV-1"}, gatepass.InvoiceNumbers)
		assert.NotEmpty(t, gatepass.GatepassNumber)
		assert.Len(t, gatepass.Items, 2)

		// Terminal: no further mutation of any kind.
		_, err = session.GenerateGatepass("KA-01-1234", "loader")
		assert.Error(t, err)
		assert.Error(t, session.SelectInvoice(selection("INV-2", "Acme", 1, "R3")))
		_, err = session.RecordLoad(invoice.ScanResult{PartCode: "P", Quantity: "1", BinNumber: "B", RawValue: "X"}, "loader")
		assert.Error(t, err)
	})
}

func TestGatepass_Summary(t *testing.T) {
	items := []LoadedBin{
		{PartCode: "P-100", Quantity: 80, BinNumber: "B-1", RawValue: "R1"},
		{PartCode: "P-100", Quantity: 80, BinNumber: "B-2", RawValue: "R2"},
		{PartCode: "P-200", Quantity: 40, BinNumber: "B-2", RawValue: "R3"},
	}

	gatepass := NewGatepass("KA-01-1234", "loader", []string{"INV-1", "INV-2"}, items)

	assert.Equal(t, 3, gatepass.Summary.TotalItems)
	assert.Equal(t, 200, gatepass.Summary.TotalQuantity)
	assert.Equal(t, 2, gatepass.Summary.UniquePartCodes)
	assert.Equal(t, 2, gatepass.Summary.UniqueBinNumbers)
	assert.False(t, gatepass.DateTime.IsZero())
}
