package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"purchase-ledger/internal/core"
	"purchase-ledger/internal/idempotency"
)

// Idempotency scopes.
const (
	scopeSavePurchase   = "save-purchase"
	scopeReverseVoucher = "reverse-voucher"
)

type appService struct {
	purchases core.PurchaseService
	guard     *idempotency.Guard
	logger    *slog.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// guard may be nil, in which case idempotency keys are ignored.
func NewAppService(purchases core.PurchaseService, guard *idempotency.Guard, logger *slog.Logger) ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &appService{
		purchases: purchases,
		guard:     guard,
		logger:    logger,
	}
}

// FinalizePurchase validates a draft and returns it for preview.
func (s *appService) FinalizePurchase(ctx context.Context, draft core.PurchaseDraft) (*PreviewResult, error) {
	preview, err := s.purchases.Finalize(ctx, draft)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Preview: preview}, nil
}

// SavePurchase posts a finalized purchase.
func (s *appService) SavePurchase(ctx context.Context, req SavePurchaseRequest) (*PostedPurchaseResult, error) {
	var posted *core.PostedPurchase
	err := s.guarded(ctx, scopeSavePurchase, req.IdempotencyKey, func() error {
		var err error
		posted, err = s.purchases.Save(ctx, req.Purchase)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PostedPurchaseResult{Posted: posted}, nil
}

// ListPurchases returns all saved original purchases.
func (s *appService) ListPurchases(ctx context.Context) (*PurchaseListResult, error) {
	purchases, err := s.purchases.ListPurchases(ctx)
	if err != nil {
		return nil, err
	}
	return &PurchaseListResult{Purchases: purchases}, nil
}

// GetOptions returns master data narrowed to the requested parents.
func (s *appService) GetOptions(ctx context.Context, req OptionsRequest) (*OptionsResult, error) {
	master, err := s.purchases.MasterData(ctx)
	if err != nil {
		return nil, err
	}
	return &OptionsResult{MasterData: master.Options(req.SupplierID, req.OriginalTypeID, req.DivisionID)}, nil
}

// GetVoucher returns the entries of one voucher.
func (s *appService) GetVoucher(ctx context.Context, voucherID string) (*VoucherResult, error) {
	entries, err := s.purchases.Voucher(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	return newVoucherResult(voucherID, entries), nil
}

// ReverseVoucher appends the mirror of a voucher.
func (s *appService) ReverseVoucher(ctx context.Context, req ReverseVoucherRequest) (*VoucherResult, error) {
	var entries []core.JournalEntry
	err := s.guarded(ctx, scopeReverseVoucher, req.IdempotencyKey, func() error {
		var err error
		entries, err = s.purchases.ReverseVoucher(ctx, req.VoucherID, req.Date)
		return err
	})
	if err != nil {
		return nil, err
	}
	return newVoucherResult(core.ReversalVoucherID(req.VoucherID), entries), nil
}

// GetTrialBalance returns per-account totals.
func (s *appService) GetTrialBalance(ctx context.Context) (*TrialBalanceResult, error) {
	balances, err := s.purchases.TrialBalance(ctx)
	if err != nil {
		return nil, err
	}
	res := &TrialBalanceResult{Currency: core.BaseCurrency, Accounts: balances}
	for _, b := range balances {
		res.TotalDebit = res.TotalDebit.Add(b.Debit)
		res.TotalCredit = res.TotalCredit.Add(b.Credit)
	}
	return res, nil
}

// GetPayables returns outstanding balances per entity.
func (s *appService) GetPayables(ctx context.Context) (*PayablesResult, error) {
	balances, err := s.purchases.Payables(ctx)
	if err != nil {
		return nil, err
	}
	return &PayablesResult{Currency: core.BaseCurrency, Balances: balances}, nil
}

// guarded runs fn once per idempotency key. The key is released when fn fails
// so the client can retry.
func (s *appService) guarded(ctx context.Context, scope, key string, fn func() error) error {
	if key == "" {
		return fn()
	}
	if err := s.guard.Claim(ctx, scope, key); err != nil {
		return fmt.Errorf("%s: %w", scope, err)
	}
	if err := fn(); err != nil {
		if relErr := s.guard.Release(ctx, scope, key); relErr != nil {
			s.logger.WarnContext(ctx, "failed to release idempotency key", "scope", scope, "error", relErr)
		}
		return err
	}
	return nil
}

func newVoucherResult(voucherID string, entries []core.JournalEntry) *VoucherResult {
	res := &VoucherResult{VoucherID: voucherID, Entries: entries, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, e := range entries {
		res.TotalDebit = res.TotalDebit.Add(e.Debit)
		res.TotalCredit = res.TotalCredit.Add(e.Credit)
	}
	return res
}
