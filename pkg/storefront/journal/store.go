// Package journal records broker traffic for diagnosis.
//
// A Recorder subscribes to every event with OnAll and appends one Entry
// per emission to a Store. The journal describes what happened on the bus;
// it is not a persistence layer for storefront data.
package journal

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is one journaled emission.
type Entry struct {
	Seq        int64           // Assigned by the store, starting at 1
	EmissionID string          // event.Event.ID
	Name       string          // Event name
	Payload    json.RawMessage // JSON-encoded payload, nil when not encodable
	Depth      int             // Re-entrancy depth of the emission
	Timestamp  time.Time
}

// Query filters List results. The zero Query returns every entry.
type Query struct {
	Name     string // Only entries with this name
	AfterSeq int64  // Only entries with Seq > AfterSeq
	Limit    int    // At most Limit entries (0: no limit)
}

// Store keeps journal entries in append order.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores e and returns it with Seq set.
	Append(e Entry) (Entry, error)

	// Get returns the entry with the given sequence number.
	// Returns ErrNotFound if it doesn't exist.
	Get(seq int64) (Entry, error)

	// List returns matching entries ordered by Seq.
	// Returns an empty slice (not error) when nothing matches.
	List(q Query) ([]Entry, error)

	// Count returns the number of stored entries.
	Count() (int, error)

	// Clear removes every entry. Sequence numbers keep increasing.
	Clear() error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates an entry doesn't exist.
	ErrNotFound = errors.New("journal entry not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("journal store closed")
)
