package core

import "context"

// Store is the application state container the purchase flow reads from and
// appends to. Implementations must make Append all-or-nothing, re-check
// container uniqueness inside it (returning a *DuplicateContainerError), reject
// a purchase id that already exists with ErrDuplicatePurchase, and advance
// NextOriginalPurchaseNumber on success.
type Store interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
	Append(ctx context.Context, commit Commit) error
	// AppendJournal stores standalone vouchers such as reversals. Entry ids
	// that already exist are rejected with ErrDuplicateEntry.
	AppendJournal(ctx context.Context, entries []JournalEntry) error
	JournalEntries(ctx context.Context) ([]JournalEntry, error)
}
