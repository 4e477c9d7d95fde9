package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestInvoice(t *testing.T, totalQty int64, binCapacity int) *Invoice {
	items := []LineItem{
		{PartCode: "P-100", Quantity: decimal.NewFromInt(totalQty)},
	}
	inv, err := NewInvoice("INV-1", "Acme Motors", "ACM01", binCapacity, items, "uploader", nil)
	require.NoError(t, err)
	return inv
}

func validateBins(t *testing.T, inv *Invoice, n int) {
	for j := 0; j < n; j++ {
		bin := ValidatedBin{
			BinNumber:   "B-1",
			PartCode:    "P-100",
			Quantity:    80,
			CustomerRaw: "RAW",
			PlantRaw:    "RAW",
		}
		require.NoError(t, inv.RecordValidatedBin(bin, "auditor"))
	}
}

// ============================================
// Status Tests
// ============================================

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  Status
		isValid bool
	}{
		{StatusUploaded, true},
		{StatusAuditing, true},
		{StatusAuditComplete, true},
		{StatusLoading, true},
		{StatusDispatched, true},
		{Status("INVALID"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		canTrans bool
	}{
		// From UPLOADED
		{StatusUploaded, StatusAuditing, true},
		{StatusUploaded, StatusAuditComplete, false},
		{StatusUploaded, StatusDispatched, false},
		// From AUDITING
		{StatusAuditing, StatusAuditComplete, true},
		{StatusAuditing, StatusLoading, false},
		{StatusAuditing, StatusUploaded, false},
		// From AUDIT_COMPLETE
		{StatusAuditComplete, StatusLoading, true},
		{StatusAuditComplete, StatusDispatched, false},
		{StatusAuditComplete, StatusAuditing, false},
		// From LOADING
		{StatusLoading, StatusDispatched, true},
		{StatusLoading, StatusAuditComplete, true},
		{StatusLoading, StatusAuditing, false},
		// From DISPATCHED (terminal)
		{StatusDispatched, StatusUploaded, false},
		{StatusDispatched, StatusLoading, false},
		{StatusDispatched, StatusAuditComplete, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// NewInvoice Tests
// ============================================

func TestNewInvoice(t *testing.T) {
	t.Run("creates invoice with valid inputs", func(t *testing.T) {
		items := []LineItem{
			{PartCode: "P-100", Quantity: decimal.NewFromInt(150)},
			{PartCode: "P-200", Quantity: decimal.NewFromInt(90)},
		}
		inv, err := NewInvoice("INV-1", "Acme Motors", "ACM01", 80, items, "ravi", nil)
		require.NoError(t, err)
		require.NotNil(t, inv)

		assert.Equal(t, "INV-1", inv.Number)
		assert.Equal(t, "Acme Motors", inv.Customer)
		assert.Equal(t, "ACM01", inv.BillTo)
		assert.Equal(t, StatusUploaded, inv.Status)
		assert.True(t, decimal.NewFromInt(240).Equal(inv.TotalQuantity))
		assert.Equal(t, 3, inv.ExpectedBins)
		assert.Equal(t, 0, inv.ScannedBins)
		assert.Equal(t, 0, inv.BinsLoaded)
		assert.Equal(t, "ravi", inv.UploadedBy)
		assert.NotNil(t, inv.UploadedAt)
		assert.Len(t, inv.Items, 2)
		assert.Equal(t, inv.ID, inv.Items[0].InvoiceID)
	})

	t.Run("sums absolute quantities", func(t *testing.T) {
		items := []LineItem{
			{PartCode: "P-100", Quantity: decimal.NewFromInt(100)},
			{PartCode: "P-100", Quantity: decimal.NewFromInt(-20)},
		}
		inv, err := NewInvoice("INV-2", "Acme Motors", "ACM01", 40, items, "ravi", nil)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(120).Equal(inv.TotalQuantity))
		assert.Equal(t, 3, inv.ExpectedBins)
	})

	t.Run("rounds expected bins up", func(t *testing.T) {
		items := []LineItem{{PartCode: "P-100", Quantity: decimal.NewFromInt(81)}}
		inv, err := NewInvoice("INV-3", "Acme Motors", "ACM01", 80, items, "ravi", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, inv.ExpectedBins)
	})

	t.Run("accepts configured capacity override", func(t *testing.T) {
		items := []LineItem{{PartCode: "P-100", Quantity: decimal.NewFromInt(10)}}
		inv, err := NewInvoice("INV-4", "Acme Motors", "ACM01", 25, items, "ravi", []int{25, 50})
		require.NoError(t, err)
		assert.Equal(t, 25, inv.BinCapacity)
	})

	t.Run("fails with empty number", func(t *testing.T) {
		items := []LineItem{{PartCode: "P-100", Quantity: decimal.NewFromInt(10)}}
		_, err := NewInvoice("", "Acme Motors", "ACM01", 80, items, "ravi", nil)
		assert.Error(t, err)
	})

	t.Run("fails with empty customer", func(t *testing.T) {
		items := []LineItem{{PartCode: "P-100", Quantity: decimal.NewFromInt(10)}}
		_, err := NewInvoice("INV-5", "", "ACM01", 80, items, "ravi", nil)
		assert.Error(t, err)
	})

	t.Run("fails with no items", func(t *testing.T) {
		_, err := NewInvoice("INV-5", "Acme Motors", "ACM01", 80, nil, "ravi", nil)
		assert.Error(t, err)
	})

	t.Run("fails with unknown bin capacity", func(t *testing.T) {
		items := []LineItem{{PartCode: "P-100", Quantity: decimal.NewFromInt(10)}}
		_, err := NewInvoice("INV-5", "Acme Motors", "ACM01", 33, items, "ravi", nil)
		assert.Error(t, err)
	})

	t.Run("fails with zero total quantity", func(t *testing.T) {
		items := []LineItem{{PartCode: "P-100", Quantity: decimal.Zero}}
		_, err := NewInvoice("INV-5", "Acme Motors", "ACM01", 80, items, "ravi", nil)
		assert.Error(t, err)
	})
}

// ============================================
// RecordValidatedBin Tests
// ============================================

func TestInvoice_RecordValidatedBin(t *testing.T) {
	t.Run("progression to audit complete", func(t *testing.T) {
		inv := createTestInvoice(t, 240, 80)
		require.Equal(t, 3, inv.ExpectedBins)

		validateBins(t, inv, 1)
		assert.Equal(t, 1, inv.ScannedBins)
		assert.Equal(t, StatusAuditing, inv.Status)

		validateBins(t, inv, 1)
		assert.Equal(t, 2, inv.ScannedBins)
		assert.Equal(t, StatusAuditing, inv.Status)

		validateBins(t, inv, 1)
		assert.Equal(t, 3, inv.ScannedBins)
		assert.Equal(t, StatusAuditComplete, inv.Status)
		assert.Equal(t, "auditor", inv.AuditedBy)
		assert.NotNil(t, inv.AuditedAt)
		assert.Len(t, inv.ValidatedBins, 3)
	})

	t.Run("completion is idempotent", func(t *testing.T) {
		inv := createTestInvoice(t, 240, 80)
		validateBins(t, inv, 3)
		require.Equal(t, StatusAuditComplete, inv.Status)
		eventsBefore := len(inv.GetDomainEvents())

		// A fourth matching pair must change nothing.
		validateBins(t, inv, 1)
		assert.Equal(t, 3, inv.ScannedBins)
		assert.Equal(t, StatusAuditComplete, inv.Status)
		assert.Len(t, inv.ValidatedBins, 3)
		assert.Len(t, inv.GetDomainEvents(), eventsBefore)
	})

	t.Run("single bin invoice completes on first match", func(t *testing.T) {
		inv := createTestInvoice(t, 40, 40)
		require.Equal(t, 1, inv.ExpectedBins)
		validateBins(t, inv, 1)
		assert.Equal(t, StatusAuditComplete, inv.Status)
	})

	t.Run("rejected while blocked", func(t *testing.T) {
		inv := createTestInvoice(t, 240, 80)
		inv.Block()
		err := inv.RecordValidatedBin(ValidatedBin{BinNumber: "B-1", PartCode: "P-100"}, "auditor")
		assert.Error(t, err)
		assert.Equal(t, 0, inv.ScannedBins)
	})

	t.Run("rejected after dispatch", func(t *testing.T) {
		inv := createTestInvoice(t, 80, 80)
		validateBins(t, inv, 1)
		require.NoError(t, inv.StartLoading())
		require.NoError(t, inv.RecordLoadedBin())
		require.NoError(t, inv.MarkDispatched("dispatcher", "KA-01-1234"))

		err := inv.RecordValidatedBin(ValidatedBin{BinNumber: "B-1", PartCode: "P-100"}, "auditor")
		assert.Error(t, err)
	})

	t.Run("emits audit completed event exactly once", func(t *testing.T) {
		inv := createTestInvoice(t, 160, 80)
		validateBins(t, inv, 2)

		completed := 0
		for _, e := range inv.GetDomainEvents() {
			if e.EventType() == EventTypeAuditCompleted {
				completed++
			}
		}
		assert.Equal(t, 1, completed)
	})
}

// ============================================
// Loading and Dispatch Tests
// ============================================

func TestInvoice_Loading(t *testing.T) {
	t.Run("start loading requires audit complete", func(t *testing.T) {
		inv := createTestInvoice(t, 240, 80)
		assert.Error(t, inv.StartLoading())

		validateBins(t, inv, 3)
		assert.NoError(t, inv.StartLoading())
		assert.Equal(t, StatusLoading, inv.Status)
	})

	t.Run("start loading rejected while blocked", func(t *testing.T) {
		inv := createTestInvoice(t, 80, 80)
		validateBins(t, inv, 1)
		inv.Block()
		assert.Error(t, inv.StartLoading())
	})

	t.Run("loaded bins bounded by validated bins", func(t *testing.T) {
		inv := createTestInvoice(t, 160, 80)
		validateBins(t, inv, 2)
		require.NoError(t, inv.StartLoading())

		require.NoError(t, inv.RecordLoadedBin())
		require.NoError(t, inv.RecordLoadedBin())
		assert.Equal(t, 2, inv.BinsLoaded)
		assert.Error(t, inv.RecordLoadedBin())
	})

	t.Run("reset loading discards progress", func(t *testing.T) {
		inv := createTestInvoice(t, 160, 80)
		validateBins(t, inv, 2)
		require.NoError(t, inv.StartLoading())
		require.NoError(t, inv.RecordLoadedBin())

		require.NoError(t, inv.ResetLoading())
		assert.Equal(t, StatusAuditComplete, inv.Status)
		assert.Equal(t, 0, inv.BinsLoaded)
	})
}

func TestInvoice_MarkDispatched(t *testing.T) {
	t.Run("dispatches a fully loaded invoice", func(t *testing.T) {
		inv := createTestInvoice(t, 80, 80)
		validateBins(t, inv, 1)
		require.NoError(t, inv.StartLoading())
		require.NoError(t, inv.RecordLoadedBin())

		err := inv.MarkDispatched("dispatcher", "KA-01-1234")
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, inv.Status)
		assert.Equal(t, "dispatcher", inv.DispatchedBy)
		assert.Equal(t, "KA-01-1234", inv.VehicleNumber)
		assert.NotNil(t, inv.DispatchedAt)
		assert.True(t, inv.IsDispatched())
	})

	t.Run("rejected before loading", func(t *testing.T) {
		inv := createTestInvoice(t, 80, 80)
		validateBins(t, inv, 1)
		assert.Error(t, inv.MarkDispatched("dispatcher", "KA-01-1234"))
	})

	t.Run("rejected twice", func(t *testing.T) {
		inv := createTestInvoice(t, 80, 80)
		validateBins(t, inv, 1)
		require.NoError(t, inv.StartLoading())
		require.NoError(t, inv.MarkDispatched("dispatcher", "KA-01-1234"))
		assert.Error(t, inv.MarkDispatched("dispatcher", "KA-01-1234"))
	})

	t.Run("rejected without vehicle number", func(t *testing.T) {
		inv := createTestInvoice(t, 80, 80)
		validateBins(t, inv, 1)
		require.NoError(t, inv.StartLoading())
		assert.Error(t, inv.MarkDispatched("dispatcher", ""))
	})
}

// ============================================
// Block / Unblock Tests
// ============================================

func TestInvoice_BlockUnblock(t *testing.T) {
	inv := createTestInvoice(t, 240, 80)

	inv.Block()
	assert.True(t, inv.Blocked)
	assert.NotNil(t, inv.BlockedAt)

	// Blocking again is a no-op and emits no second event.
	inv.Block()
	blockedEvents := 0
	for _, e := range inv.GetDomainEvents() {
		if e.EventType() == EventTypeBlocked {
			blockedEvents++
		}
	}
	assert.Equal(t, 1, blockedEvents)

	inv.Unblock()
	assert.False(t, inv.Blocked)
	assert.Nil(t, inv.BlockedAt)

	// Unblocked invoices accept scans again.
	assert.NoError(t, inv.RecordValidatedBin(ValidatedBin{BinNumber: "B-1", PartCode: "P-100", CustomerRaw: "RAW", PlantRaw: "RAW"}, "auditor"))
	assert.Equal(t, 1, inv.ScannedBins)
}

func TestInvoice_IsDispatchable(t *testing.T) {
	inv := createTestInvoice(t, 80, 80)
	assert.False(t, inv.IsDispatchable())

	validateBins(t, inv, 1)
	assert.True(t, inv.IsDispatchable())

	inv.Block()
	assert.False(t, inv.IsDispatchable())
}

func TestInvoice_ExpectedLoadValues(t *testing.T) {
	inv := createTestInvoice(t, 160, 80)
	require.NoError(t, inv.RecordValidatedBin(ValidatedBin{BinNumber: "B-1", PartCode: "P-100", CustomerRaw: "C1", PlantRaw: "A1"}, "auditor"))
	require.NoError(t, inv.RecordValidatedBin(ValidatedBin{BinNumber: "B-2", PartCode: "P-100", CustomerRaw: "C2", PlantRaw: "A2"}, "auditor"))

	values := inv.ExpectedLoadValues()
	assert.Len(t, values, 4)
	_, ok := values["C1"]
	assert.True(t, ok)
	_, ok = values["A2"]
	assert.True(t, ok)
}
