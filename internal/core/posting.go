package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountMap holds the chart-of-accounts codes a purchase posts to.
type AccountMap struct {
	OriginalPurchase string `json:"original_purchase"`
	Payable          string `json:"payable"`
	Freight          string `json:"freight"`
	Clearing         string `json:"clearing"`
	Commission       string `json:"commission"`
}

// DefaultAccounts returns the standard chart mapping.
func DefaultAccounts() AccountMap {
	return AccountMap{
		OriginalPurchase: "EXP-004",
		Payable:          "AP-001",
		Freight:          "EXP-005",
		Clearing:         "EXP-006",
		Commission:       "EXP-008",
	}
}

func (m AccountMap) expenseFor(c CostCategory) string {
	switch c {
	case CostFreight:
		return m.Freight
	case CostClearing:
		return m.Clearing
	default:
		return m.Commission
	}
}

// Commit is the append command produced by posting a purchase: the purchase
// record and its voucher, stored together.
type Commit struct {
	Purchase OriginalPurchase `json:"purchase"`
	Entries  []JournalEntry   `json:"entries"`
}

// PostPurchase builds the voucher for a finalized purchase.
//
// The item pair debits the original-purchase expense with the item value plus
// discount/surcharge and credits payables tagged to the supplier. Each applicable
// ancillary cost adds one pair crediting payables tagged to its agent. The
// result always balances; an unbalanced voucher is reported as an error.
func PostPurchase(p OriginalPurchase, snap *Snapshot, accounts AccountMap) (Commit, error) {
	if p.ID == "" {
		return Commit{}, fmt.Errorf("post purchase: purchase has no id")
	}
	val := Valuate(&p)
	voucherID := VoucherID(p.ID)
	description := fmt.Sprintf("Original Purchase from %s", snap.SupplierName(p.SupplierID))

	entries := make([]JournalEntry, 0, 2+2*len(val.Costs))
	entries = append(entries, pair(
		voucherID, p.Date, "op", p.ID,
		accounts.OriginalPurchase, accounts.Payable,
		val.ItemDebit, description,
		p.SupplierID, EntitySupplier,
	)...)

	for _, cv := range val.Costs {
		agentName := "N/A"
		if a, ok := snap.Agent(cv.Category, cv.AgentID); ok {
			agentName = a.Name
		}
		entries = append(entries, pair(
			voucherID, p.Date, strings.ToLower(string(cv.Category)), p.ID,
			accounts.expenseFor(cv.Category), accounts.Payable,
			cv.Value, fmt.Sprintf("%s for INV %s from %s", cv.Category, p.ID, agentName),
			cv.AgentID, cv.Category.EntityType(),
		)...)
	}

	if err := ValidateVoucher(entries); err != nil {
		return Commit{}, fmt.Errorf("post purchase %s: %w", p.ID, err)
	}
	return Commit{Purchase: p, Entries: entries}, nil
}

// pair returns a debit entry and its offsetting credit entry. Only the credit
// carries the subledger entity.
func pair(voucherID, date, tag, purchaseID, debitAccount, creditAccount string,
	amount decimal.Decimal, description, entityID string, entityType EntityType) []JournalEntry {
	return []JournalEntry{
		{
			ID:          fmt.Sprintf("je-d-%s-%s", tag, purchaseID),
			VoucherID:   voucherID,
			Date:        date,
			EntryType:   EntryTypeJournal,
			Account:     debitAccount,
			Debit:       amount,
			Credit:      decimal.Zero,
			Description: description,
		},
		{
			ID:          fmt.Sprintf("je-c-%s-%s", tag, purchaseID),
			VoucherID:   voucherID,
			Date:        date,
			EntryType:   EntryTypeJournal,
			Account:     creditAccount,
			Debit:       decimal.Zero,
			Credit:      amount,
			Description: description,
			EntityID:    entityID,
			EntityType:  entityType,
		},
	}
}
