package kvtable

import (
	"fmt"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// InsertMode controls how Insert treats an already present key.
type InsertMode int

const (
	// InsertIfAbsent fails with ErrKeyExists if the key is already present.
	InsertIfAbsent InsertMode = iota
	// InsertOverwrite replaces any present value.
	InsertOverwrite
)

// ErrKeyExists is returned by Insert with InsertIfAbsent when another
// value is already stored under the key.
var ErrKeyExists = fmt.Errorf("kvtable: key already exists")

// DisplayFunc formats an entry for debug output.
type DisplayFunc[K comparable, V any] func(key K, value V) string

// Stats is a point-in-time snapshot of a table's counters.
// The counters are maintained with atomic operations and the snapshot
// is not taken under a single lock, so the values are individually
// accurate but not mutually consistent.
type Stats struct {
	Name       string `json:"name"`
	Entries    int    `json:"entries"`
	Inserts    uint64 `json:"inserts"`
	Overwrites uint64 `json:"overwrites"`
	Updates    uint64 `json:"updates"`
	Deletes    uint64 `json:"deletes"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: entries=%d inserts=%d overwrites=%d updates=%d deletes=%d hits=%d misses=%d",
		s.Name, s.Entries, s.Inserts, s.Overwrites, s.Updates, s.Deletes, s.Hits, s.Misses)
}

// --------------------------------------------------------------------------
// Table
// --------------------------------------------------------------------------

// Table is a thread-safe associative store parameterized per instance
// with a hash function and a display formatter. All single-key
// operations are atomic; no operation spans two keys atomically.
type Table[K comparable, V any] struct {
	name    string
	data    *xsync.MapOf[K, V]
	display DisplayFunc[K, V]

	inserts    atomic.Uint64
	overwrites atomic.Uint64
	updates    atomic.Uint64
	deletes    atomic.Uint64
	hits       atomic.Uint64
	misses     atomic.Uint64
}

// New creates a table with the given per-instance hash function.
// sizeHint presizes the underlying map and may be zero.
//
// Thread-safety: the returned table is safe for concurrent use; New
// itself should only be called during initialization.
func New[K comparable, V any](name string, hasher func(K, uint64) uint64, display DisplayFunc[K, V], sizeHint int) *Table[K, V] {
	opts := make([]func(*xsync.MapConfig), 0, 1)
	if sizeHint > 0 {
		opts = append(opts, xsync.WithPresize(sizeHint))
	}
	return &Table[K, V]{
		name:    name,
		data:    xsync.NewMapOfWithHasher[K, V](hasher, opts...),
		display: display,
	}
}

// Name returns the table name given at construction.
func (t *Table[K, V]) Name() string { return t.name }

// DisplayEntry formats an entry with the table's display function.
func (t *Table[K, V]) DisplayEntry(key K, value V) string {
	if t.display == nil {
		return fmt.Sprintf("%v->%v", key, value)
	}
	return t.display(key, value)
}

// --------------------------------------------------------------------------
// Single-Key Operations
// --------------------------------------------------------------------------

// Get returns the value stored under key.
//
// Thread-safety: this method is thread-safe and can be called concurrently.
func (t *Table[K, V]) Get(key K) (V, bool) {
	value, ok := t.data.Load(key)
	if ok {
		t.hits.Add(1)
	} else {
		t.misses.Add(1)
	}
	return value, ok
}

// Insert stores value under key according to mode. With InsertIfAbsent
// exactly one of several racing inserts for the same key wins; the
// losers receive ErrKeyExists.
//
// Thread-safety: this method is thread-safe and can be called concurrently.
func (t *Table[K, V]) Insert(key K, value V, mode InsertMode) error {
	switch mode {
	case InsertIfAbsent:
		if _, loaded := t.data.LoadOrStore(key, value); loaded {
			return ErrKeyExists
		}
		t.inserts.Add(1)
		return nil
	case InsertOverwrite:
		if _, loaded := t.data.LoadAndStore(key, value); loaded {
			t.overwrites.Add(1)
		} else {
			t.inserts.Add(1)
		}
		return nil
	default:
		return fmt.Errorf("kvtable: unknown insert mode %d", mode)
	}
}

// Update atomically replaces the value stored under key. fn receives
// the current value (zero value if absent) and returns the value to
// store. fn runs under the per-key critical section of the underlying
// map and must not call back into the table.
//
// Thread-safety: this method is thread-safe and can be called concurrently.
func (t *Table[K, V]) Update(key K, fn func(old V, loaded bool) V) {
	var existed bool
	t.data.Compute(key, func(old V, loaded bool) (V, bool) {
		existed = loaded
		return fn(old, loaded), false
	})
	if existed {
		t.updates.Add(1)
	} else {
		t.inserts.Add(1)
	}
}

// Take atomically removes and returns the value stored under key.
//
// Thread-safety: this method is thread-safe and can be called concurrently.
func (t *Table[K, V]) Take(key K) (V, bool) {
	value, ok := t.data.LoadAndDelete(key)
	if ok {
		t.deletes.Add(1)
	}
	return value, ok
}

// Delete removes the entry stored under key and reports whether an
// entry was present.
//
// Thread-safety: this method is thread-safe and can be called concurrently.
func (t *Table[K, V]) Delete(key K) bool {
	_, ok := t.data.LoadAndDelete(key)
	if ok {
		t.deletes.Add(1)
	}
	return ok
}

// --------------------------------------------------------------------------
// Bulk Operations
// --------------------------------------------------------------------------

// DeleteAll removes every entry, invoking fn for each removed pair.
// Entries inserted concurrently with DeleteAll may survive the sweep.
//
// Thread-safety: this method is thread-safe and can be called concurrently.
func (t *Table[K, V]) DeleteAll(fn func(key K, value V)) int {
	removed := 0
	t.data.Range(func(key K, _ V) bool {
		if value, ok := t.data.LoadAndDelete(key); ok {
			t.deletes.Add(1)
			if fn != nil {
				fn(key, value)
			}
			removed++
		}
		return true
	})
	return removed
}

// Size returns the current number of entries.
func (t *Table[K, V]) Size() int {
	return t.data.Size()
}

// Stats returns a snapshot of the table's counters.
func (t *Table[K, V]) Stats() Stats {
	return Stats{
		Name:       t.name,
		Entries:    t.data.Size(),
		Inserts:    t.inserts.Load(),
		Overwrites: t.overwrites.Load(),
		Updates:    t.updates.Load(),
		Deletes:    t.deletes.Load(),
		Hits:       t.hits.Load(),
		Misses:     t.misses.Load(),
	}
}
