package core_test

import (
	"context"
	"sync"

	"purchase-ledger/internal/core"
)

func testMasterData() core.MasterData {
	return core.MasterData{
		Suppliers: []core.Supplier{
			{ID: "SUP-1", Name: "Acme Trading", DefaultCurrency: "USD"},
			{ID: "SUP-2", Name: "Émile Textiles", DefaultCurrency: "EUR"},
		},
		SubSuppliers:      []core.SubSupplier{{ID: "SS-1", SupplierID: "SUP-1", Name: "Acme Karachi"}},
		FreightForwarders: []core.Agent{{ID: "FF-1", Name: "Oceanic Freight"}},
		ClearingAgents:    []core.Agent{{ID: "CA-1", Name: "Port Clear"}},
		CommissionAgents:  []core.Agent{{ID: "CM-1", Name: "Broker One"}},
		Divisions:         []core.Division{{ID: "DIV-1", Name: "Sorting"}},
		SubDivisions:      []core.SubDivision{{ID: "SD-1", DivisionID: "DIV-1", Name: "Line A"}},
		OriginalTypes:     []core.OriginalType{{ID: "OT-1", Name: "Mixed Rags"}},
		OriginalProducts:  []core.OriginalProduct{{ID: "OP-1", OriginalTypeID: "OT-1", Name: "Cream"}},
	}
}

func testSnapshot() *core.Snapshot {
	return &core.Snapshot{
		MasterData: testMasterData(),
		FinishedGoodsPurchases: []core.FinishedGoodsPurchase{
			{ID: "FG-1", Date: "2026-01-10", SupplierID: "SUP-1", BatchNumber: "105", ContainerNumber: "CNT-001"},
		},
		NextOriginalPurchaseNumber: 1,
	}
}

// fakeStore is a minimal in-memory core.Store for service tests.
type fakeStore struct {
	mu      sync.Mutex
	snap    *core.Snapshot
	journal []core.JournalEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{snap: testSnapshot()}
}

func (s *fakeStore) Snapshot(context.Context) (*core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.snap
	cp.OriginalPurchases = append([]core.OriginalPurchase(nil), s.snap.OriginalPurchases...)
	return &cp, nil
}

func (s *fakeStore) Append(_ context.Context, c core.Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.snap.OriginalPurchases {
		if p.ID == c.Purchase.ID {
			return core.ErrDuplicatePurchase
		}
	}
	if core.IsDuplicateContainer(c.Purchase.ContainerNumber, s.snap.OriginalPurchases, s.snap.FinishedGoodsPurchases) {
		return &core.DuplicateContainerError{Value: c.Purchase.ContainerNumber}
	}
	s.snap.OriginalPurchases = append(s.snap.OriginalPurchases, c.Purchase)
	s.snap.NextOriginalPurchaseNumber++
	s.journal = append(s.journal, c.Entries...)
	return nil
}

func (s *fakeStore) AppendJournal(_ context.Context, entries []core.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(s.journal))
	for _, e := range s.journal {
		seen[e.ID] = true
	}
	for _, e := range entries {
		if seen[e.ID] {
			return core.ErrDuplicateEntry
		}
	}
	s.journal = append(s.journal, entries...)
	return nil
}

func (s *fakeStore) JournalEntries(context.Context) ([]core.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.JournalEntry(nil), s.journal...), nil
}
