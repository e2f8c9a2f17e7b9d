package testutil

import (
	"context"
	"sync"

	"github.com/yhlin/autotyper/internal/ledger"
)

// MemoryLedger is an in-memory ledger.Ledger for engine tests. It applies
// the same success-uniqueness rule as the SQLite store.
type MemoryLedger struct {
	mu      sync.Mutex
	entries []ledger.Entry

	// AppendErr, when set, is returned from every Append.
	AppendErr error
	// ReadErr, when set, is returned from every SuccessfulIDs.
	ReadErr error
}

func (m *MemoryLedger) SuccessfulIDs(ctx context.Context, table, target string) (map[string]struct{}, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]struct{})
	for _, e := range m.entries {
		if e.Table == table && e.Target == target && e.Status == ledger.StatusSuccess {
			ids[e.RecordID] = struct{}{}
		}
	}
	return ids, nil
}

func (m *MemoryLedger) Append(ctx context.Context, e ledger.Entry) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Status == ledger.StatusSuccess {
		for _, have := range m.entries {
			if have.Status == ledger.StatusSuccess &&
				have.Table == e.Table && have.RecordID == e.RecordID && have.Target == e.Target {
				return nil
			}
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryLedger) Close() error { return nil }

// Entries returns a copy of everything appended, in order.
func (m *MemoryLedger) Entries() []ledger.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
