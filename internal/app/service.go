package app

import (
	"context"

	"purchase-ledger/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println and no display logic of any kind.
type ApplicationService interface {
	// FinalizePurchase validates a draft and returns the purchase, its valuation
	// and the proposed voucher for confirmation. Nothing is stored.
	FinalizePurchase(ctx context.Context, draft core.PurchaseDraft) (*PreviewResult, error)

	// SavePurchase posts a previously finalized purchase. When IdempotencyKey is
	// set and a guard is configured, a replayed key fails with idempotency.ErrAlreadyProcessed.
	SavePurchase(ctx context.Context, req SavePurchaseRequest) (*PostedPurchaseResult, error)

	// ListPurchases returns all saved original purchases.
	ListPurchases(ctx context.Context) (*PurchaseListResult, error)

	// GetOptions returns master data with dependent lists narrowed to the given parents.
	GetOptions(ctx context.Context, req OptionsRequest) (*OptionsResult, error)

	// GetVoucher returns the entries of one voucher.
	GetVoucher(ctx context.Context, voucherID string) (*VoucherResult, error)

	// ReverseVoucher appends the mirror of a voucher.
	ReverseVoucher(ctx context.Context, req ReverseVoucherRequest) (*VoucherResult, error)

	// GetTrialBalance returns per-account totals over the whole journal.
	GetTrialBalance(ctx context.Context) (*TrialBalanceResult, error)

	// GetPayables returns the outstanding balance per supplier and agent.
	GetPayables(ctx context.Context) (*PayablesResult, error)
}
