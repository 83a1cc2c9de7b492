package core_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"purchase-ledger/internal/core"
)

var fixedNow = time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC)

func newTestService(store core.Store) core.PurchaseService {
	return core.NewPurchaseService(store,
		core.NewStaticRuleEngine(core.DefaultAccounts()),
		nil,
		core.WithClock(func() time.Time { return fixedNow }),
		core.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func validDraft() core.PurchaseDraft {
	return core.PurchaseDraft{
		SupplierID:        "SUP-1",
		OriginalTypeID:    "OT-1",
		QuantityPurchased: "100",
		Rate:              "2.50",
	}
}

func TestFinalize_HappyPath(t *testing.T) {
	svc := newTestService(newFakeStore())

	preview, err := svc.Finalize(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	p := preview.Purchase
	if p.ID != "OP-0001-150326-ACM" {
		t.Errorf("unexpected id %q", p.ID)
	}
	if p.Date != "2026-03-15" {
		t.Errorf("date should default to today, got %q", p.Date)
	}
	if p.Currency != "USD" || !p.ConversionRate.Equal(d("1")) {
		t.Errorf("unexpected currency %s rate %s", p.Currency, p.ConversionRate)
	}
	if p.BatchNumber != "106" {
		t.Errorf("batch should follow finished goods batch 105, got %q", p.BatchNumber)
	}
	if !preview.Valuation.GrandTotal.Equal(d("250")) {
		t.Errorf("grand total: got %s", preview.Valuation.GrandTotal)
	}
	if len(preview.Entries) != 2 {
		t.Errorf("expected 2 preview entries, got %d", len(preview.Entries))
	}
}

func TestFinalize_SupplierDefaultCurrency(t *testing.T) {
	svc := newTestService(newFakeStore())
	draft := validDraft()
	draft.SupplierID = "SUP-2"
	draft.ConversionRate = "1.08"

	preview, err := svc.Finalize(context.Background(), draft)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if preview.Purchase.Currency != "EUR" {
		t.Errorf("expected supplier default EUR, got %q", preview.Purchase.Currency)
	}
	if !preview.Valuation.ItemValue.Equal(d("270")) {
		t.Errorf("item value: got %s, want 270", preview.Valuation.ItemValue)
	}
	if !strings.HasSuffix(preview.Purchase.ID, "-EMI") {
		t.Errorf("unexpected id %q", preview.Purchase.ID)
	}
}

func TestFinalize_MissingRequiredFields(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Finalize(context.Background(), core.PurchaseDraft{Rate: "  "})
	if !errors.Is(err, core.ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	want := []string{"supplier_id", "original_type_id", "quantity_purchased", "rate"}
	got := verr.MissingFields()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("missing fields: got %v, want %v", got, want)
	}
}

func TestFinalize_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.PurchaseDraft)
		field  string
		target error
	}{
		{"non numeric quantity", func(d *core.PurchaseDraft) { d.QuantityPurchased = "ten" }, "quantity_purchased", core.ErrInvalidNumber},
		{"zero rate", func(d *core.PurchaseDraft) { d.Rate = "0" }, "rate", core.ErrInvalidNumber},
		{"negative conversion", func(d *core.PurchaseDraft) { d.ConversionRate = "-1" }, "conversion_rate", core.ErrInvalidNumber},
		{"bad freight amount", func(d *core.PurchaseDraft) { d.Freight.Amount = "1,000" }, "freight.amount", core.ErrInvalidNumber},
		{"bad date", func(d *core.PurchaseDraft) { d.Date = "15/03/2026" }, "date", core.ErrValidation},
		{"unknown supplier", func(d *core.PurchaseDraft) { d.SupplierID = "SUP-404" }, "supplier_id", core.ErrValidation},
		{"foreign sub supplier", func(d *core.PurchaseDraft) { d.SupplierID = "SUP-2"; d.SubSupplierID = "SS-1" }, "sub_supplier_id", core.ErrValidation},
		{"unknown product", func(d *core.PurchaseDraft) { d.OriginalProductID = "OP-404" }, "original_product_id", core.ErrValidation},
		{"sub division without division", func(d *core.PurchaseDraft) { d.SubDivisionID = "SD-1" }, "sub_division_id", core.ErrValidation},
		{"unknown currency", func(d *core.PurchaseDraft) { d.Currency = "XYZ" }, "currency", core.ErrValidation},
		{"unknown forwarder", func(d *core.PurchaseDraft) { d.Freight.AgentID = "CA-1" }, "freight.agent_id", core.ErrValidation},
		{"discount exceeds value", func(d *core.PurchaseDraft) { d.DiscountSurcharge = "-250" }, "discount_surcharge", core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeStore())
			draft := validDraft()
			tt.mutate(&draft)

			_, err := svc.Finalize(context.Background(), draft)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field %s in %v", tt.field, verr.Fields)
			}
		})
	}
}

func TestFinalize_DuplicateContainer(t *testing.T) {
	svc := newTestService(newFakeStore())
	draft := validDraft()
	draft.ContainerNumber = "cnt-001 "

	_, err := svc.Finalize(context.Background(), draft)
	if !errors.Is(err, core.ErrDuplicateContainer) {
		t.Fatalf("expected ErrDuplicateContainer, got %v", err)
	}
	var dup *core.DuplicateContainerError
	if !errors.As(err, &dup) || dup.Value != "cnt-001 " {
		t.Errorf("expected error naming the entered value, got %v", err)
	}
}

func TestFinalize_CostWithoutAgentWarns(t *testing.T) {
	svc := newTestService(newFakeStore())
	draft := validDraft()
	draft.Clearing.Amount = "30"

	preview, err := svc.Finalize(context.Background(), draft)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if len(preview.Warnings) != 1 || !strings.Contains(preview.Warnings[0], "Clearing") {
		t.Errorf("expected a clearing warning, got %v", preview.Warnings)
	}
	if len(preview.Entries) != 2 {
		t.Errorf("cost without agent must not be posted, got %d entries", len(preview.Entries))
	}
	if preview.Purchase.Clearing.Amount == nil {
		t.Error("amount should be kept on the record")
	}
}

func TestFinalize_ZeroOptionalNumbersAreUnset(t *testing.T) {
	svc := newTestService(newFakeStore())
	draft := validDraft()
	draft.DiscountSurcharge = "0"
	draft.Freight = core.CostDraft{AgentID: "FF-1", Amount: "0.00"}

	preview, err := svc.Finalize(context.Background(), draft)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if preview.Purchase.DiscountSurcharge != nil || preview.Purchase.Freight.Amount != nil {
		t.Errorf("zero values should be unset: %+v", preview.Purchase)
	}
}

func TestSave_PostsAndAdvancesSequence(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	draft := validDraft()
	draft.ContainerNumber = "MSCU-1"
	draft.Freight = core.CostDraft{AgentID: "FF-1", Amount: "50", ConversionRate: "1.2"}
	preview, err := svc.Finalize(ctx, draft)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	posted, err := svc.Save(ctx, preview.Purchase)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if posted.VoucherID != "JV-OP-0001-150326-ACM" || len(posted.Entries) != 4 {
		t.Errorf("unexpected posting %s with %d entries", posted.VoucherID, len(posted.Entries))
	}
	if !posted.Valuation.GrandTotal.Equal(d("310")) {
		t.Errorf("grand total: got %s", posted.Valuation.GrandTotal)
	}

	list, err := svc.ListPurchases(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListPurchases: %v %v", list, err)
	}

	next, err := svc.Finalize(ctx, validDraft())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if next.Purchase.ID != "OP-0002-150326-ACM" {
		t.Errorf("sequence did not advance: %q", next.Purchase.ID)
	}
	if next.Purchase.BatchNumber != "107" {
		t.Errorf("batch did not advance: %q", next.Purchase.BatchNumber)
	}

	if _, err := svc.Save(ctx, preview.Purchase); !errors.Is(err, core.ErrDuplicateContainer) {
		t.Errorf("second save of the same container: expected ErrDuplicateContainer, got %v", err)
	}
}

func TestSave_RechecksContainerAtSaveTime(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	draft := validDraft()
	draft.ContainerNumber = "TGHU-9"
	first, err := svc.Finalize(ctx, draft)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	second, err := svc.Finalize(ctx, draft)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if _, err := svc.Save(ctx, first.Purchase); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second.Purchase.ID = "OP-0002-150326-ACM"
	if _, err := svc.Save(ctx, second.Purchase); !errors.Is(err, core.ErrDuplicateContainer) {
		t.Errorf("expected ErrDuplicateContainer, got %v", err)
	}

	entries, _ := store.JournalEntries(ctx)
	if len(entries) != 2 {
		t.Errorf("rejected save must not append entries, journal has %d", len(entries))
	}
}

func TestSave_DuplicatePurchaseID(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	preview, err := svc.Finalize(ctx, validDraft())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := svc.Save(ctx, preview.Purchase); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := svc.Save(ctx, preview.Purchase); !errors.Is(err, core.ErrDuplicatePurchase) {
		t.Errorf("expected ErrDuplicatePurchase, got %v", err)
	}
}

func TestSave_RoutesCostsByField(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	draft := validDraft()
	draft.Freight = core.CostDraft{AgentID: "FF-1", Amount: "50", ConversionRate: "1.2"}
	preview, err := svc.Finalize(ctx, draft)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	edited := preview.Purchase
	edited.Freight.Category = ""
	posted, err := svc.Save(ctx, edited)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	var debit, credit *core.JournalEntry
	for i := range posted.Entries {
		switch posted.Entries[i].ID {
		case "je-d-freight-OP-0001-150326-ACM":
			debit = &posted.Entries[i]
		case "je-c-freight-OP-0001-150326-ACM":
			credit = &posted.Entries[i]
		}
	}
	if debit == nil || credit == nil {
		t.Fatalf("freight pair missing from %+v", posted.Entries)
	}
	if debit.Account != "EXP-005" || !debit.Debit.Equal(d("60")) {
		t.Errorf("freight debit: got %s %s", debit.Account, debit.Debit)
	}
	if credit.EntityType != core.EntityFreightForwarder || credit.EntityID != "FF-1" {
		t.Errorf("freight credit tagged %s/%s", credit.EntityType, credit.EntityID)
	}
}

func TestSave_RejectsEditedRecord(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(p *core.OriginalPurchase)
		field string
	}{
		{"unknown supplier", func(p *core.OriginalPurchase) { p.SupplierID = "NOPE" }, "supplier_id"},
		{"blank type", func(p *core.OriginalPurchase) { p.OriginalTypeID = "" }, "original_type_id"},
		{"zero quantity", func(p *core.OriginalPurchase) { p.QuantityPurchased = d("0") }, "quantity_purchased"},
		{"negative rate", func(p *core.OriginalPurchase) { p.Rate = d("-1") }, "rate"},
		{"bad date", func(p *core.OriginalPurchase) { p.Date = "15/03/2026" }, "date"},
		{"unknown currency", func(p *core.OriginalPurchase) { p.Currency = "XYZ" }, "currency"},
		{"agent from another list", func(p *core.OriginalPurchase) { p.Freight.AgentID = "CM-1" }, "freight.agent_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestService(store)

			draft := validDraft()
			draft.Freight = core.CostDraft{AgentID: "FF-1", Amount: "50"}
			preview, err := svc.Finalize(ctx, draft)
			if err != nil {
				t.Fatalf("Finalize: %v", err)
			}
			edited := preview.Purchase
			tt.edit(&edited)

			_, err = svc.Save(ctx, edited)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s to be rejected, got %+v", tt.field, verr.Fields)
			}
			if entries, _ := store.JournalEntries(ctx); len(entries) != 0 {
				t.Errorf("rejected save appended %d entries", len(entries))
			}
		})
	}
}

func TestReverseVoucher_Service(t *testing.T) {
	svc := newTestService(newFakeStore())
	ctx := context.Background()

	preview, err := svc.Finalize(ctx, validDraft())
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	posted, err := svc.Save(ctx, preview.Purchase)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := svc.ReverseVoucher(ctx, "JV-missing", ""); !errors.Is(err, core.ErrVoucherNotFound) {
		t.Errorf("expected ErrVoucherNotFound, got %v", err)
	}
	if _, err := svc.ReverseVoucher(ctx, posted.VoucherID, "yesterday"); err == nil {
		t.Error("expected error for invalid date")
	}

	rev, err := svc.ReverseVoucher(ctx, posted.VoucherID, "")
	if err != nil {
		t.Fatalf("ReverseVoucher: %v", err)
	}
	if rev[0].Date != "2026-03-15" {
		t.Errorf("reversal should default to today, got %s", rev[0].Date)
	}
	if _, err := svc.ReverseVoucher(ctx, posted.VoucherID, ""); !errors.Is(err, core.ErrAlreadyReversed) {
		t.Errorf("expected ErrAlreadyReversed, got %v", err)
	}

	got, err := svc.Voucher(ctx, "R"+posted.VoucherID)
	if err != nil || len(got) != 2 {
		t.Fatalf("Voucher: %v %v", got, err)
	}

	balances, err := svc.TrialBalance(ctx)
	if err != nil {
		t.Fatalf("TrialBalance: %v", err)
	}
	for _, b := range balances {
		if !b.Balance.IsZero() {
			t.Errorf("%s should net to zero after reversal, got %s", b.Code, b.Balance)
		}
	}

	payables, err := svc.Payables(ctx)
	if err != nil {
		t.Fatalf("Payables: %v", err)
	}
	if len(payables) != 1 || !payables[0].Balance.IsZero() {
		t.Errorf("unexpected payables %+v", payables)
	}
}

type failingRules struct{}

func (failingRules) ResolveAccount(context.Context, string) (string, error) {
	return "", errors.New("no rule")
}

func TestFinalize_RuleResolutionFailure(t *testing.T) {
	svc := core.NewPurchaseService(newFakeStore(), failingRules{}, nil, core.WithClock(func() time.Time { return fixedNow }))
	if _, err := svc.Finalize(context.Background(), validDraft()); err == nil {
		t.Error("expected error when account rules cannot be resolved")
	}
}
