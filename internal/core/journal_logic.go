package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateVoucher enforces double-entry rules on the entries of one voucher:
// at least two lines, a single voucher id, exactly one positive side per line,
// and total debits equal to total credits.
func ValidateVoucher(entries []JournalEntry) error {
	if len(entries) < 2 {
		return errors.New("journal: voucher must have at least 2 entries")
	}

	voucherID := entries[0].VoucherID
	if voucherID == "" {
		return errors.New("journal: voucher id is required")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for _, e := range entries {
		if e.VoucherID != voucherID {
			return fmt.Errorf("journal: entry %s belongs to voucher %s, expected %s", e.ID, e.VoucherID, voucherID)
		}
		if e.Account == "" {
			return fmt.Errorf("journal: entry %s has no account", e.ID)
		}
		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			return fmt.Errorf("journal: entry %s has a negative amount", e.ID)
		}
		if e.Debit.IsZero() == e.Credit.IsZero() {
			return fmt.Errorf("journal: entry %s must have exactly one of debit or credit", e.ID)
		}
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return fmt.Errorf("%w: debits %s != credits %s", ErrUnbalancedVoucher, totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}
	return nil
}

// ReversalVoucherID returns the voucher id used for the reversal of voucherID.
func ReversalVoucherID(voucherID string) string {
	return "R" + voucherID
}

// ReverseVoucher mirrors every entry of a voucher, swapping debit and credit,
// under a new voucher dated date. Subledger tags are kept so entity balances
// net to zero.
func ReverseVoucher(entries []JournalEntry, date string) ([]JournalEntry, error) {
	if err := ValidateVoucher(entries); err != nil {
		return nil, fmt.Errorf("reverse voucher: %w", err)
	}
	voucherID := entries[0].VoucherID
	if strings.HasPrefix(voucherID, "RJV-") {
		return nil, fmt.Errorf("reverse voucher: %s is itself a reversal", voucherID)
	}

	out := make([]JournalEntry, len(entries))
	for i, e := range entries {
		out[i] = JournalEntry{
			ID:          "rev-" + e.ID,
			VoucherID:   ReversalVoucherID(voucherID),
			Date:        date,
			EntryType:   EntryTypeReversal,
			Account:     e.Account,
			Debit:       e.Credit,
			Credit:      e.Debit,
			Description: "Reversal of " + voucherID + ": " + e.Description,
			EntityID:    e.EntityID,
			EntityType:  e.EntityType,
		}
	}
	return out, nil
}

// GroupByVoucher returns the entries of voucherID in their stored order.
func GroupByVoucher(entries []JournalEntry, voucherID string) []JournalEntry {
	var out []JournalEntry
	for _, e := range entries {
		if e.VoucherID == voucherID {
			out = append(out, e)
		}
	}
	return out
}
