package app

import (
	"github.com/shopspring/decimal"

	"purchase-ledger/internal/core"
)

// PreviewResult is returned by FinalizePurchase.
type PreviewResult struct {
	Preview *core.Preview `json:"preview"`
}

// PostedPurchaseResult is returned by SavePurchase.
type PostedPurchaseResult struct {
	Posted *core.PostedPurchase `json:"posted"`
}

// PurchaseListResult is returned by ListPurchases.
type PurchaseListResult struct {
	Purchases []core.OriginalPurchase `json:"purchases"`
}

// OptionsResult is returned by GetOptions.
type OptionsResult struct {
	MasterData core.MasterData `json:"master_data"`
}

// VoucherResult is returned by GetVoucher and ReverseVoucher.
type VoucherResult struct {
	VoucherID   string              `json:"voucher_id"`
	Entries     []core.JournalEntry `json:"entries"`
	TotalDebit  decimal.Decimal     `json:"total_debit"`
	TotalCredit decimal.Decimal     `json:"total_credit"`
}

// TrialBalanceResult is returned by GetTrialBalance.
type TrialBalanceResult struct {
	Currency    string                `json:"currency"`
	Accounts    []core.AccountBalance `json:"accounts"`
	TotalDebit  decimal.Decimal       `json:"total_debit"`
	TotalCredit decimal.Decimal       `json:"total_credit"`
}

// PayablesResult is returned by GetPayables.
type PayablesResult struct {
	Currency string               `json:"currency"`
	Balances []core.EntityBalance `json:"balances"`
}
