package app

import "purchase-ledger/internal/core"

// SavePurchaseRequest is the input for saving a finalized purchase.
type SavePurchaseRequest struct {
	Purchase       core.OriginalPurchase
	IdempotencyKey string
}

// ReverseVoucherRequest is the input for reversing a voucher.
type ReverseVoucherRequest struct {
	VoucherID      string
	Date           string // YYYY-MM-DD, empty means today
	IdempotencyKey string
}

// OptionsRequest selects the parents the dependent master-data lists are narrowed to.
type OptionsRequest struct {
	SupplierID     string
	OriginalTypeID string
	DivisionID     string
}
