package activity

import (
	"context"
	"testing"

	"github.com/gatetrack/backend/internal/domain/activity"
	"github.com/gatetrack/backend/internal/domain/invoice"
	"github.com/gatetrack/backend/internal/domain/mismatch"
	"github.com/gatetrack/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockActivityRepository is a mock implementation of activity.Repository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Append(ctx context.Context, entry *activity.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityRepository) FindByType(ctx context.Context, typ activity.Type, filter shared.Filter) ([]activity.LogEntry, error) {
	args := m.Called(ctx, typ, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.LogEntry), args.Error(1)
}

func (m *MockActivityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]activity.LogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]activity.LogEntry), args.Error(1)
}

// recorderFixture wires a recorder service against a repository that captures
// the appended entry.
func recorderFixture() (*Service, *MockActivityRepository, *activity.LogEntry) {
	entries := new(MockActivityRepository)
	captured := new(activity.LogEntry)
	entries.On("Append", mock.Anything, mock.AnythingOfType("*activity.LogEntry")).
		Run(func(args mock.Arguments) { *captured = *args.Get(1).(*activity.LogEntry) }).
		Return(nil)
	return NewService(entries, zap.NewNop()), entries, captured
}

func testInvoice(t *testing.T, number string) *invoice.Invoice {
	items := []invoice.LineItem{{PartCode: "P-100", Quantity: decimal.NewFromInt(160)}}
	inv, err := invoice.NewInvoice(number, "Acme", "ACM01", 80, items, "uploader", nil)
	require.NoError(t, err)
	return inv
}

func testAlert(t *testing.T, step mismatch.Step) *mismatch.Alert {
	customerScan := invoice.ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "A"}
	plantScan := invoice.ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "B"}
	alert, err := mismatch.NewAlert("scanner", "Acme", "INV-1", step, customerScan, plantScan)
	require.NoError(t, err)
	return alert
}

func TestUploadRecorder_Handle(t *testing.T) {
	t.Run("records batch with skipped duplicates", func(t *testing.T) {
		service, entries, captured := recorderFixture()
		recorder := NewUploadRecorder(service, zap.NewNop())

		event := invoice.NewBatchUploadedEvent("ravi", []string{"INV-1", "INV-2"}, []string{"INV-3"})
		require.NoError(t, recorder.Handle(context.Background(), event))

		entries.AssertNumberOfCalls(t, "Append", 1)
		assert.Equal(t, "ravi", captured.User)
		assert.Equal(t, "Uploaded invoice batch", captured.Action)
		assert.Equal(t, activity.TypeUpload, captured.Type)
		assert.Contains(t, captured.Details, "2 invoices uploaded")
		assert.Contains(t, captured.Details, "INV-3")
	})

	t.Run("rejects foreign events", func(t *testing.T) {
		service, _, _ := recorderFixture()
		recorder := NewUploadRecorder(service, zap.NewNop())

		err := recorder.Handle(context.Background(), invoice.NewBlockedEvent(testInvoice(t, "INV-1")))
		assert.Error(t, err)
	})
}

func TestAuditRecorder_Handle(t *testing.T) {
	t.Run("bin validated", func(t *testing.T) {
		service, _, captured := recorderFixture()
		recorder := NewAuditRecorder(service, zap.NewNop())

		inv := testInvoice(t, "INV-1")
		bin := invoice.ValidatedBin{BinNumber: "B-7", PartCode: "P-100", ScannedBy: "auditor"}
		require.NoError(t, recorder.Handle(context.Background(), invoice.NewBinValidatedEvent(inv, bin)))

		assert.Equal(t, "auditor", captured.User)
		assert.Equal(t, "Validated bin", captured.Action)
		assert.Equal(t, activity.TypeAudit, captured.Type)
		assert.Contains(t, captured.Details, "B-7")
	})

	t.Run("audit completed", func(t *testing.T) {
		service, _, captured := recorderFixture()
		recorder := NewAuditRecorder(service, zap.NewNop())

		inv := testInvoice(t, "INV-1")
		inv.AuditedBy = "auditor"
		require.NoError(t, recorder.Handle(context.Background(), invoice.NewAuditCompletedEvent(inv)))

		assert.Equal(t, "Completed document audit", captured.Action)
		assert.Equal(t, activity.TypeAudit, captured.Type)
	})

	t.Run("blocked is attributed to system", func(t *testing.T) {
		service, _, captured := recorderFixture()
		recorder := NewAuditRecorder(service, zap.NewNop())

		require.NoError(t, recorder.Handle(context.Background(), invoice.NewBlockedEvent(testInvoice(t, "INV-1"))))

		assert.Equal(t, "system", captured.User)
		assert.Equal(t, "Blocked invoice", captured.Action)
	})

	t.Run("doc-audit alert files under audit", func(t *testing.T) {
		service, _, captured := recorderFixture()
		recorder := NewAuditRecorder(service, zap.NewNop())

		alert := testAlert(t, mismatch.StepDocAudit)
		require.NoError(t, recorder.Handle(context.Background(), mismatch.NewAlertRaisedEvent(alert)))

		assert.Equal(t, "Raised mismatch alert", captured.Action)
		assert.Equal(t, activity.TypeAudit, captured.Type)
	})

	t.Run("loading alert files under dispatch", func(t *testing.T) {
		service, _, captured := recorderFixture()
		recorder := NewAuditRecorder(service, zap.NewNop())

		alert := testAlert(t, mismatch.StepLoadingDispatch)
		require.NoError(t, recorder.Handle(context.Background(), mismatch.NewAlertRaisedEvent(alert)))

		assert.Equal(t, activity.TypeDispatch, captured.Type)
	})

	t.Run("alert resolved", func(t *testing.T) {
		service, _, captured := recorderFixture()
		recorder := NewAuditRecorder(service, zap.NewNop())

		alert := testAlert(t, mismatch.StepDocAudit)
		require.NoError(t, alert.Resolve(mismatch.AlertStatusApproved, "admin"))
		require.NoError(t, recorder.Handle(context.Background(), mismatch.NewAlertResolvedEvent(alert)))

		assert.Equal(t, "admin", captured.User)
		assert.Equal(t, "Resolved mismatch alert", captured.Action)
		assert.Contains(t, captured.Details, "approved")
	})
}

func TestDispatchRecorder_Handle(t *testing.T) {
	service, _, captured := recorderFixture()
	recorder := NewDispatchRecorder(service, zap.NewNop())

	inv := testInvoice(t, "INV-1")
	inv.DispatchedBy = "loader"
	inv.VehicleNumber = "KA-01-1234"
	inv.BinsLoaded = 2
	require.NoError(t, recorder.Handle(context.Background(), invoice.NewDispatchedEvent(inv)))

	assert.Equal(t, "loader", captured.User)
	assert.Equal(t, "Dispatched invoice", captured.Action)
	assert.Equal(t, activity.TypeDispatch, captured.Type)
	assert.Contains(t, captured.Details, "KA-01-1234")
}

func TestService_ByType_RejectsUnknownType(t *testing.T) {
	service := NewService(new(MockActivityRepository), zap.NewNop())
	_, err := service.ByType(context.Background(), activity.Type("bogus"), shared.DefaultFilter())
	assert.Error(t, err)
}
