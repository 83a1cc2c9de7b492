package store

import (
	"context"
	"sync"

	"purchase-ledger/internal/core"
)

// Memory is a process-local core.Store. All state lives behind one mutex, so
// the container re-check and the append of a Commit happen atomically.
type Memory struct {
	mu        sync.Mutex
	master    core.MasterData
	originals []core.OriginalPurchase
	finished  []core.FinishedGoodsPurchase
	journal   []core.JournalEntry
	entryIDs  map[string]struct{}
	next      int64
}

// NewMemory returns a store holding the seed's master data and finished goods
// purchases. The purchase counter starts at 1.
func NewMemory(seed Seed) *Memory {
	return &Memory{
		master:   seed.MasterData,
		finished: append([]core.FinishedGoodsPurchase(nil), seed.FinishedGoodsPurchases...),
		entryIDs: make(map[string]struct{}),
		next:     1,
	}
}

func (m *Memory) Snapshot(_ context.Context) (*core.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &core.Snapshot{
		MasterData:                 m.master,
		OriginalPurchases:          append([]core.OriginalPurchase(nil), m.originals...),
		FinishedGoodsPurchases:     append([]core.FinishedGoodsPurchase(nil), m.finished...),
		NextOriginalPurchaseNumber: m.next,
	}, nil
}

func (m *Memory) Append(_ context.Context, c core.Commit) error {
	if err := core.ValidateVoucher(c.Entries); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.originals {
		if p.ID == c.Purchase.ID {
			return core.ErrDuplicatePurchase
		}
	}
	if core.IsDuplicateContainer(c.Purchase.ContainerNumber, m.originals, m.finished) {
		return &core.DuplicateContainerError{Value: c.Purchase.ContainerNumber}
	}
	if err := m.checkEntryIDs(c.Entries); err != nil {
		return err
	}

	m.originals = append(m.originals, c.Purchase)
	m.appendEntries(c.Entries)
	m.next++
	return nil
}

func (m *Memory) AppendJournal(_ context.Context, entries []core.JournalEntry) error {
	if err := core.ValidateVoucher(entries); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkEntryIDs(entries); err != nil {
		return err
	}
	m.appendEntries(entries)
	return nil
}

func (m *Memory) JournalEntries(_ context.Context) ([]core.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.JournalEntry(nil), m.journal...), nil
}

func (m *Memory) checkEntryIDs(entries []core.JournalEntry) error {
	for _, e := range entries {
		if _, ok := m.entryIDs[e.ID]; ok {
			return core.ErrDuplicateEntry
		}
	}
	return nil
}

func (m *Memory) appendEntries(entries []core.JournalEntry) {
	for _, e := range entries {
		m.entryIDs[e.ID] = struct{}{}
	}
	m.journal = append(m.journal, entries...)
}
