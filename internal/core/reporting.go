package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AccountBalance is one row of the trial balance. Balance is net debit
// (positive) or net credit (negative).
type AccountBalance struct {
	Code    string          `json:"code"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// TrialBalance totals entries per account, ordered by account code.
func TrialBalance(entries []JournalEntry) []AccountBalance {
	byCode := make(map[string]*AccountBalance)
	for _, e := range entries {
		b, ok := byCode[e.Account]
		if !ok {
			b = &AccountBalance{Code: e.Account}
			byCode[e.Account] = b
		}
		b.Debit = b.Debit.Add(e.Debit)
		b.Credit = b.Credit.Add(e.Credit)
	}

	out := make([]AccountBalance, 0, len(byCode))
	for _, b := range byCode {
		b.Balance = b.Debit.Sub(b.Credit)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// EntityBalance is the outstanding payable to one supplier or agent.
// Balance is net credit: positive means money is owed.
type EntityBalance struct {
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Balance    decimal.Decimal `json:"balance"`
}

// PayablesByEntity nets credits minus debits for every tagged entry.
func PayablesByEntity(entries []JournalEntry) []EntityBalance {
	type key struct {
		t  EntityType
		id string
	}
	totals := make(map[key]decimal.Decimal)
	for _, e := range entries {
		if e.EntityID == "" {
			continue
		}
		k := key{e.EntityType, e.EntityID}
		totals[k] = totals[k].Add(e.Credit).Sub(e.Debit)
	}

	out := make([]EntityBalance, 0, len(totals))
	for k, v := range totals {
		out = append(out, EntityBalance{EntityType: k.t, EntityID: k.id, Balance: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityType != out[j].EntityType {
			return out[i].EntityType < out[j].EntityType
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}
