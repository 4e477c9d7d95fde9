package integration

import (
	"context"
	"testing"

	auditapp "github.com/gatetrack/backend/internal/application/audit"
	dispatchapp "github.com/gatetrack/backend/internal/application/dispatch"
	"github.com/gatetrack/backend/internal/application/ingest"
	mismatchapp "github.com/gatetrack/backend/internal/application/mismatch"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/mismatch"
	"github.com/gatetrack/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestInvoiceLifecycle_Integration drives one invoice from upload through
// document audit and loading to dispatch, against a real PostgreSQL database
func TestInvoiceLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	log := zap.NewNop()

	invoiceRepo := persistence.NewGormInvoiceRepository(testDB.DB)
	alertRepo := persistence.NewGormAlertRepository(testDB.DB)
	scheduleRepo := persistence.NewGormScheduleRepository(testDB.DB)

	ingestService := ingest.NewService(invoiceRepo, scheduleRepo, invoice.DefaultBinCapacities, 120, log)
	auditService := auditapp.NewService(invoiceRepo, alertRepo, log)
	mismatchService := mismatchapp.NewService(alertRepo, invoiceRepo, log)
	dispatchService := dispatchapp.NewService(invoiceRepo, alertRepo, log)

	scan := func(raw string) invoice.ScanResult {
		return invoice.ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-" + raw, RawValue: raw}
	}

	// Upload: two bins worth of one part
	result, err := ingestService.UploadInvoices(ctx, []ingest.InvoiceRow{
		{Invoice: "FLOW-1", Customer: "Acme", BillTo: "ACM01", Part: "P-100", Quantity: decimal.NewFromInt(160), BinCapacity: 80},
	}, "uploader")
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)

	// Doc audit: first pair matches
	pair, err := auditService.SubmitScanPair(ctx, "FLOW-1", scan("R1"), scan("R1"), "auditor")
	require.NoError(t, err)
	assert.True(t, pair.Matched)
	assert.False(t, pair.AuditComplete)

	// Second pair mismatches: invoice blocks and an alert is raised
	pair, err = auditService.SubmitScanPair(ctx, "FLOW-1", scan("R2"), scan("R2-OTHER"), "auditor")
	require.NoError(t, err)
	assert.False(t, pair.Matched)
	require.NotNil(t, pair.AlertID)

	blocked, err := invoiceRepo.FindByNumber(ctx, "FLOW-1")
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	// Further audit scans are rejected while blocked
	_, err = auditService.SubmitScanPair(ctx, "FLOW-1", scan("R2"), scan("R2"), "auditor")
	assert.Error(t, err)

	// Admin approves the mismatch, unblocking the invoice
	alert, err := mismatchService.Resolve(ctx, *pair.AlertID, mismatch.AlertStatusApproved, "supervisor")
	require.NoError(t, err)
	assert.Equal(t, mismatch.AlertStatusApproved, alert.Status)

	// The second bin now validates and the audit completes
	pair, err = auditService.SubmitScanPair(ctx, "FLOW-1", scan("R2"), scan("R2"), "auditor")
	require.NoError(t, err)
	assert.True(t, pair.Matched)
	assert.True(t, pair.AuditComplete)

	audited, err := invoiceRepo.FindByNumber(ctx, "FLOW-1")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusAuditComplete, audited.Status)
	assert.False(t, audited.Blocked)

	// Loading: both validated bins must be scanned onto the vehicle
	session, err := dispatchService.StartSession(ctx, "loader")
	require.NoError(t, err)

	session, err = dispatchService.SelectInvoice(ctx, session.ID, "FLOW-1")
	require.NoError(t, err)
	assert.Equal(t, 2, session.ExpectedCount())

	_, err = dispatchService.GenerateGatepass(ctx, session.ID, "KA-01-1234", "loader")
	assert.Error(t, err, "gatepass must be rejected before the load completes")

	for _, raw := range []string{"R1", "R2"} {
		load, err := dispatchService.SubmitLoadScan(ctx, session.ID, scan(raw), scan(raw), "loader")
		require.NoError(t, err)
		assert.True(t, load.Matched)
	}

	gatepass, err := dispatchService.GenerateGatepass(ctx, session.ID, "KA-01-1234", "loader")
	require.NoError(t, err)
	assert.Equal(t, "KA-01-1234", gatepass.VehicleNumber)
	assert.Equal(t, []string{"FLOW-1"}, gatepass.InvoiceNumbers)
	assert.Equal(t, 2, gatepass.Summary.TotalItems)

	dispatched, err := invoiceRepo.FindByNumber(ctx, "FLOW-1")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusDispatched, dispatched.Status)
	assert.Equal(t, "KA-01-1234", dispatched.VehicleNumber)
	assert.Equal(t, "loader", dispatched.DispatchedBy)
}
