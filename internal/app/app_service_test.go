package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"purchase-ledger/internal/app"
	"purchase-ledger/internal/core"
	"purchase-ledger/internal/idempotency"
	"purchase-ledger/internal/store"
)

func newTestApp(t *testing.T, withGuard bool) app.ApplicationService {
	t.Helper()
	seed, err := store.LoadSeedFile("../store/testdata/seed.yaml")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := core.NewPurchaseService(
		store.NewMemory(seed),
		core.NewStaticRuleEngine(core.DefaultAccounts()),
		nil,
		core.WithLogger(logger),
		core.WithClock(func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }),
	)

	var guard *idempotency.Guard
	if withGuard {
		mr := miniredis.RunT(t)
		guard = idempotency.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	}
	return app.NewAppService(svc, guard, logger)
}

func draft() core.PurchaseDraft {
	return core.PurchaseDraft{
		SupplierID:        "SUP-1",
		OriginalTypeID:    "OT-1",
		QuantityPurchased: "100",
		Rate:              "2.50",
		Freight:           core.CostDraft{AgentID: "FF-1", Amount: "50", ConversionRate: "1.2"},
	}
}

func TestAppService_FinalizeSaveReport(t *testing.T) {
	ctx := context.Background()
	svc := newTestApp(t, false)

	preview, err := svc.FinalizePurchase(ctx, draft())
	require.NoError(t, err)
	require.Equal(t, "310.00", preview.Preview.Valuation.GrandTotal.StringFixed(2))

	saved, err := svc.SavePurchase(ctx, app.SavePurchaseRequest{Purchase: preview.Preview.Purchase})
	require.NoError(t, err)
	require.Equal(t, "JV-OP-0001-150326-ACM", saved.Posted.VoucherID)

	voucher, err := svc.GetVoucher(ctx, saved.Posted.VoucherID)
	require.NoError(t, err)
	require.Len(t, voucher.Entries, 4)
	require.True(t, voucher.TotalDebit.Equal(voucher.TotalCredit))

	tb, err := svc.GetTrialBalance(ctx)
	require.NoError(t, err)
	require.Equal(t, "USD", tb.Currency)
	require.Equal(t, "310.00", tb.TotalDebit.StringFixed(2))
	require.True(t, tb.TotalDebit.Equal(tb.TotalCredit))

	payables, err := svc.GetPayables(ctx)
	require.NoError(t, err)
	require.Len(t, payables.Balances, 2)

	list, err := svc.ListPurchases(ctx)
	require.NoError(t, err)
	require.Len(t, list.Purchases, 1)

	rev, err := svc.ReverseVoucher(ctx, app.ReverseVoucherRequest{VoucherID: saved.Posted.VoucherID})
	require.NoError(t, err)
	require.Equal(t, "RJV-OP-0001-150326-ACM", rev.VoucherID)
	require.True(t, rev.TotalDebit.Equal(voucher.TotalDebit))
}

func TestAppService_IdempotencyKey(t *testing.T) {
	ctx := context.Background()
	svc := newTestApp(t, true)

	preview, err := svc.FinalizePurchase(ctx, draft())
	require.NoError(t, err)

	req := app.SavePurchaseRequest{Purchase: preview.Preview.Purchase, IdempotencyKey: "k-1"}
	_, err = svc.SavePurchase(ctx, req)
	require.NoError(t, err)

	_, err = svc.SavePurchase(ctx, req)
	require.ErrorIs(t, err, idempotency.ErrAlreadyProcessed)
}

func TestAppService_FailedSaveReleasesKey(t *testing.T) {
	ctx := context.Background()
	svc := newTestApp(t, true)

	preview, err := svc.FinalizePurchase(ctx, draft())
	require.NoError(t, err)

	bad := preview.Preview.Purchase
	bad.ContainerNumber = "CNT-001"
	_, err = svc.SavePurchase(ctx, app.SavePurchaseRequest{Purchase: bad, IdempotencyKey: "k-2"})
	require.ErrorIs(t, err, core.ErrDuplicateContainer)

	_, err = svc.SavePurchase(ctx, app.SavePurchaseRequest{Purchase: preview.Preview.Purchase, IdempotencyKey: "k-2"})
	require.NoError(t, err)
}

func TestAppService_GetOptions(t *testing.T) {
	svc := newTestApp(t, false)

	res, err := svc.GetOptions(context.Background(), app.OptionsRequest{SupplierID: "SUP-1", DivisionID: "DIV-1"})
	require.NoError(t, err)
	require.Len(t, res.MasterData.SubSuppliers, 1)
	require.Len(t, res.MasterData.SubDivisions, 1)
	require.Empty(t, res.MasterData.OriginalProducts)
	require.Len(t, res.MasterData.Suppliers, 2)
}
