package journal

import (
	"bytes"
	"sync"
)

// MemoryStore keeps the journal in memory. Entries are lost when the
// process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	lastSeq int64
	closed  bool
}

// NewMemoryStore creates an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (m *MemoryStore) Append(e Entry) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}

	m.lastSeq++
	e.Seq = m.lastSeq
	// Copy payload to avoid retaining caller's slice
	e.Payload = bytes.Clone(e.Payload)
	m.entries = append(m.entries, e)
	return e, nil
}

// Get implements Store.
func (m *MemoryStore) Get(seq int64) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}

	for _, e := range m.entries {
		if e.Seq == seq {
			return cloneEntry(e), nil
		}
	}
	return Entry{}, ErrNotFound
}

// List implements Store.
func (m *MemoryStore) List(q Query) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	out := make([]Entry, 0)
	for _, e := range m.entries {
		if e.Seq <= q.AfterSeq || (q.Name != "" && e.Name != q.Name) {
			continue
		}
		out = append(out, cloneEntry(e))
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.entries), nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	m.entries = nil
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}

func cloneEntry(e Entry) Entry {
	e.Payload = bytes.Clone(e.Payload)
	return e
}
