package invoice

import "time"

// Reconciler decides whether two scan captures represent the same physical
// bin. It holds no state; all progress bookkeeping lives on the invoice.
type Reconciler struct{}

// NewReconciler creates a new Reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ReconcileAudit applies the doc-audit predicate to a customer-label scan and
// a plant-label scan. On match it returns the validated-bin record to append
// to the invoice; on mismatch it returns false and the caller raises an alert.
func (r *Reconciler) ReconcileAudit(customerScan, plantScan ScanResult) (ValidatedBin, bool) {
	if !customerScan.Matches(plantScan) {
		return ValidatedBin{}, false
	}
	return ValidatedBin{
		BinNumber:   customerScan.BinNumber,
		PartCode:    customerScan.PartCode,
		Quantity:    customerScan.ParsedQuantity(),
		CustomerRaw: customerScan.RawValue,
		PlantRaw:    plantScan.RawValue,
		ScannedAt:   time.Now(),
	}, true
}

// ReconcileLoading applies the loading-stage predicate: the two captures of
// one physical item must agree on part code, quantity and bin number.
func (r *Reconciler) ReconcileLoading(customerScan, matchedScan ScanResult) bool {
	return customerScan.SameItem(matchedScan)
}
