package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanResult_Validate(t *testing.T) {
	tests := []struct {
		name    string
		scan    ScanResult
		wantErr bool
	}{
		{"valid scan", ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "P-100|80|B-1"}, false},
		{"missing raw value", ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1"}, true},
		{"whitespace raw value", ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "   "}, true},
		{"missing part code", ScanResult{Quantity: "80", BinNumber: "B-1", RawValue: "X"}, true},
		{"missing bin number", ScanResult{PartCode: "P-100", Quantity: "80", RawValue: "X"}, true},
		{"missing quantity is tolerated", ScanResult{PartCode: "P-100", BinNumber: "B-1", RawValue: "X"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scan.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScanResult_Matches(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		match bool
	}{
		{"identical", "ABC123", "ABC123", true},
		{"trims whitespace", "  ABC123 ", "ABC123\n", true},
		{"different", "ABC123", "ABC124", false},
		{"case sensitive", "abc123", "ABC123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ScanResult{RawValue: tt.a}
			b := ScanResult{RawValue: tt.b}
			assert.Equal(t, tt.match, a.Matches(b))
		})
	}
}

func TestScanResult_SameItem(t *testing.T) {
	base := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "label-raw"}

	t.Run("agrees on all three fields", func(t *testing.T) {
		other := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "tag-raw"}
		assert.True(t, base.SameItem(other))
	})

	t.Run("raw value divergence is allowed", func(t *testing.T) {
		other := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "completely-different"}
		assert.True(t, base.SameItem(other))
	})

	t.Run("part code divergence", func(t *testing.T) {
		other := ScanResult{PartCode: "P-999", Quantity: "80", BinNumber: "B-1"}
		assert.False(t, base.SameItem(other))
	})

	t.Run("quantity divergence", func(t *testing.T) {
		other := ScanResult{PartCode: "P-100", Quantity: "60", BinNumber: "B-1"}
		assert.False(t, base.SameItem(other))
	})

	t.Run("bin number divergence", func(t *testing.T) {
		other := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-2"}
		assert.False(t, base.SameItem(other))
	})
}

func TestScanResult_ParsedQuantity(t *testing.T) {
	tests := []struct {
		quantity string
		want     int
	}{
		{"80", 80},
		{" 40 ", 40},
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-5", 1},
	}

	for _, tt := range tests {
		t.Run(tt.quantity, func(t *testing.T) {
			s := ScanResult{Quantity: tt.quantity}
			assert.Equal(t, tt.want, s.ParsedQuantity())
		})
	}
}

func TestReconciler_ReconcileAudit(t *testing.T) {
	r := NewReconciler()

	t.Run("match yields validated bin", func(t *testing.T) {
		customer := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "SAME"}
		plant := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "SAME "}

		bin, ok := r.ReconcileAudit(customer, plant)
		require.True(t, ok)
		assert.Equal(t, "B-1", bin.BinNumber)
		assert.Equal(t, "P-100", bin.PartCode)
		assert.Equal(t, 80, bin.Quantity)
		assert.Equal(t, "SAME", bin.CustomerRaw)
		assert.Equal(t, "SAME ", bin.PlantRaw)
		assert.False(t, bin.ScannedAt.IsZero())
	})

	t.Run("mismatch yields no bin", func(t *testing.T) {
		customer := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "A"}
		plant := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "B"}

		_, ok := r.ReconcileAudit(customer, plant)
		assert.False(t, ok)
	})

	t.Run("quantity falls back to one", func(t *testing.T) {
		customer := ScanResult{PartCode: "P-100", Quantity: "n/a", BinNumber: "B-1", RawValue: "SAME"}
		plant := ScanResult{PartCode: "P-100", Quantity: "n/a", BinNumber: "B-1", RawValue: "SAME"}

		bin, ok := r.ReconcileAudit(customer, plant)
		require.True(t, ok)
		assert.Equal(t, 1, bin.Quantity)
	})
}

func TestReconciler_ReconcileLoading(t *testing.T) {
	r := NewReconciler()

	label := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "label"}
	tag := ScanResult{PartCode: "P-100", Quantity: "80", BinNumber: "B-1", RawValue: "tag"}
	assert.True(t, r.ReconcileLoading(label, tag))

	wrongQty := ScanResult{PartCode: "P-100", Quantity: "60", BinNumber: "B-1", RawValue: "tag"}
	assert.False(t, r.ReconcileLoading(label, wrongQty))
}
