package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Preview is the finalized purchase shown for confirmation before it is saved.
type Preview struct {
	Purchase  OriginalPurchase `json:"purchase"`
	Valuation Valuation        `json:"valuation"`
	Entries   []JournalEntry   `json:"entries"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// PostedPurchase is the result of a successful save.
type PostedPurchase struct {
	Purchase  OriginalPurchase `json:"purchase"`
	Valuation Valuation        `json:"valuation"`
	VoucherID string           `json:"voucher_id"`
	Entries   []JournalEntry   `json:"entries"`
}

// PurchaseService provides the original purchase capture and posting flow.
type PurchaseService interface {
	// Finalize validates a draft against the current state and returns the
	// fully populated purchase with its valuation and proposed voucher.
	// Nothing is stored.
	Finalize(ctx context.Context, draft PurchaseDraft) (*Preview, error)

	// Save posts a finalized purchase and appends it with its voucher.
	// Container uniqueness is checked again against the state at save time.
	Save(ctx context.Context, purchase OriginalPurchase) (*PostedPurchase, error)

	// ListPurchases returns every saved original purchase.
	ListPurchases(ctx context.Context) ([]OriginalPurchase, error)

	// MasterData returns the reference lists a draft is checked against.
	MasterData(ctx context.Context) (*MasterData, error)

	// Voucher returns the entries of one voucher.
	Voucher(ctx context.Context, voucherID string) ([]JournalEntry, error)

	// ReverseVoucher appends a mirror voucher dated date (today when empty).
	ReverseVoucher(ctx context.Context, voucherID, date string) ([]JournalEntry, error)

	// TrialBalance totals the journal per account.
	TrialBalance(ctx context.Context) ([]AccountBalance, error)

	// Payables returns outstanding balances per supplier and agent.
	Payables(ctx context.Context) ([]EntityBalance, error)
}

type purchaseService struct {
	store  Store
	rules  RuleEngine
	ids    IDGenerator
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a PurchaseService.
type Option func(*purchaseService)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *purchaseService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *purchaseService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPurchaseService constructs a PurchaseService. A nil ids uses DefaultIDGenerator.
func NewPurchaseService(store Store, rules RuleEngine, ids IDGenerator, opts ...Option) PurchaseService {
	if ids == nil {
		ids = DefaultIDGenerator
	}
	s := &purchaseService{
		store:  store,
		rules:  rules,
		ids:    ids,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *purchaseService) Finalize(ctx context.Context, draft PurchaseDraft) (*Preview, error) {
	draft.Normalize()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	purchase, warnings, err := buildPurchase(draft, snap, s.now())
	if err != nil {
		return nil, err
	}
	if err := checkContainer(purchase.ContainerNumber, snap); err != nil {
		return nil, err
	}

	date, _ := time.Parse(DateLayout, purchase.Date)
	supplierName := "Unknown"
	if sup, ok := snap.supplier(purchase.SupplierID); ok {
		supplierName = sup.Name
	}
	purchase.ID = s.ids.Generate(snap.NextOriginalPurchaseNumber, date, supplierName)

	accounts, err := ResolveAccounts(ctx, s.rules)
	if err != nil {
		return nil, fmt.Errorf("resolve accounts: %w", err)
	}
	commit, err := PostPurchase(*purchase, snap, accounts)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Purchase:  *purchase,
		Valuation: Valuate(purchase),
		Entries:   commit.Entries,
		Warnings:  warnings,
	}, nil
}

func (s *purchaseService) Save(ctx context.Context, purchase OriginalPurchase) (*PostedPurchase, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if err := validatePurchase(&purchase, snap); err != nil {
		return nil, err
	}
	if err := checkContainer(purchase.ContainerNumber, snap); err != nil {
		return nil, err
	}

	accounts, err := ResolveAccounts(ctx, s.rules)
	if err != nil {
		return nil, fmt.Errorf("resolve accounts: %w", err)
	}
	commit, err := PostPurchase(purchase, snap, accounts)
	if err != nil {
		return nil, err
	}

	for _, c := range purchase.Costs() {
		if c.AgentID == "" && c.Amount != nil && c.Amount.IsPositive() {
			s.logger.WarnContext(ctx, "ancillary cost excluded from posting: no agent assigned",
				"purchase_id", purchase.ID, "category", c.Category, "amount", c.Amount.String())
		}
	}

	if err := s.store.Append(ctx, commit); err != nil {
		return nil, fmt.Errorf("save purchase %s: %w", purchase.ID, err)
	}

	val := Valuate(&purchase)
	s.logger.InfoContext(ctx, "original purchase saved",
		"purchase_id", purchase.ID,
		"voucher_id", VoucherID(purchase.ID),
		"entries", len(commit.Entries),
		"grand_total_usd", val.GrandTotal.StringFixed(2))

	return &PostedPurchase{
		Purchase:  purchase,
		Valuation: val,
		VoucherID: VoucherID(purchase.ID),
		Entries:   commit.Entries,
	}, nil
}

func (s *purchaseService) ListPurchases(ctx context.Context) ([]OriginalPurchase, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return snap.OriginalPurchases, nil
}

func (s *purchaseService) MasterData(ctx context.Context) (*MasterData, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &snap.MasterData, nil
}

func (s *purchaseService) Voucher(ctx context.Context, voucherID string) ([]JournalEntry, error) {
	entries, err := s.store.JournalEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	voucher := GroupByVoucher(entries, voucherID)
	if len(voucher) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVoucherNotFound, voucherID)
	}
	return voucher, nil
}

func (s *purchaseService) ReverseVoucher(ctx context.Context, voucherID, date string) ([]JournalEntry, error) {
	if date == "" {
		date = s.now().Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid reversal date %q: %w", date, err)
	}

	entries, err := s.store.JournalEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	original := GroupByVoucher(entries, voucherID)
	if len(original) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVoucherNotFound, voucherID)
	}
	if len(GroupByVoucher(entries, ReversalVoucherID(voucherID))) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, voucherID)
	}

	reversal, err := ReverseVoucher(original, date)
	if err != nil {
		return nil, err
	}
	if err := s.store.AppendJournal(ctx, reversal); err != nil {
		if errors.Is(err, ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyReversed, voucherID)
		}
		return nil, fmt.Errorf("append reversal of %s: %w", voucherID, err)
	}

	s.logger.InfoContext(ctx, "voucher reversed", "voucher_id", voucherID, "reversal_id", ReversalVoucherID(voucherID))
	return reversal, nil
}

func (s *purchaseService) TrialBalance(ctx context.Context) ([]AccountBalance, error) {
	entries, err := s.store.JournalEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return TrialBalance(entries), nil
}

func (s *purchaseService) Payables(ctx context.Context) ([]EntityBalance, error) {
	entries, err := s.store.JournalEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	return PayablesByEntity(entries), nil
}
