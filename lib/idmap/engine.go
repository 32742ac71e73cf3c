package idmap

import (
	"errors"
	"strings"
	"time"

	"github.com/nfslabs/idmapd/lib/kvtable"
)

// --------------------------------------------------------------------------
// Entry Types
// --------------------------------------------------------------------------

// The payload variant of an entry is fixed by its type, never inferred
// from the table it came out of: forward tables hold idEntry, reverse
// tables hold nameEntry.

// idEntry is the value of a forward (name -> id) table.
type idEntry struct {
	at time.Time
	id uint32
}

// nameEntry is the value of a reverse (id -> name) table. The entry
// owns its name string; addName decides on overwrite whether the
// stored string can be kept.
type nameEntry struct {
	at   time.Time
	name string
}

// fresh reports whether an entry written at the given time is still
// within the configured timeout.
func (c *Cache) fresh(at time.Time) bool {
	return c.now().Sub(at) <= c.timeout
}

// --------------------------------------------------------------------------
// String-Keyed Engine (principal name -> numeric id)
// --------------------------------------------------------------------------

// addID caches a name->id mapping. With overwrite set, an existing
// entry is rewritten in place under the table's per-key critical
// section: the stored key is untouched and the freshness window
// restarts. Without overwrite, losing an insert race to a concurrent
// writer is treated as success; first inserts are idempotent.
func (c *Cache) addID(t idTable, key string, id uint32, overwrite bool) error {
	if t.tab == nil || key == "" {
		return NewError(RetCInvalidArgument, "nil table or empty principal name")
	}

	entry := idEntry{at: c.now(), id: id}

	if overwrite {
		t.tab.Update(key, func(idEntry, bool) idEntry { return entry })
		plog.Debugf("caching principal->id mapping: %s", t.tab.DisplayEntry(key, entry))
		return nil
	}

	if err := t.tab.Insert(key, entry, kvtable.InsertIfAbsent); err != nil {
		if errors.Is(err, kvtable.ErrKeyExists) {
			// A concurrent writer won the first insert. Nothing lost,
			// report success.
			return nil
		}
		return NewError(RetCInsertError, err.Error())
	}

	plog.Debugf("caching principal->id mapping: %s", t.tab.DisplayEntry(key, entry))
	return nil
}

// getID resolves a principal name to a numeric id. An entry older
// than the timeout is reported as expired but left cached; the caller
// is expected to re-resolve and refresh it with overwrite.
func (c *Cache) getID(t idTable, key string) (uint32, error) {
	if t.tab == nil || key == "" {
		return 0, NewError(RetCInvalidArgument, "nil table or empty principal name")
	}

	entry, ok := t.tab.Get(key)
	if !ok {
		t.met.misses.Inc()
		return 0, NewError(RetCNotFound, "no mapping for principal "+key)
	}

	if !c.fresh(entry.at) {
		t.met.expired.Inc()
		plog.Debugf("cache entry expired: %s", t.tab.DisplayEntry(key, entry))
		return 0, NewError(RetCCacheExpired, "mapping for principal "+key+" is stale")
	}

	t.met.hits.Inc()
	return entry.id, nil
}

// removeID drops a name->id mapping together with its key storage.
func (c *Cache) removeID(t idTable, key string) error {
	if t.tab == nil || key == "" {
		return NewError(RetCInvalidArgument, "nil table or empty principal name")
	}
	if _, ok := t.tab.Take(key); !ok {
		return NewError(RetCNotFound, "no mapping for principal "+key)
	}
	return nil
}

// --------------------------------------------------------------------------
// Numeric-Keyed Engine (numeric id -> principal name)
// --------------------------------------------------------------------------

// addName caches an id->name mapping. In the common case an overwrite
// does not change the name, only the timestamp; the stored string is
// then kept as is. Only when the mapping really changed is a fresh
// copy of the caller's string stored. Both outcomes are counted for
// diagnostics.
func (c *Cache) addName(t nameTable, id uint32, name string, overwrite bool) error {
	if t.tab == nil || name == "" {
		return NewError(RetCInvalidArgument, "nil table or empty principal name")
	}

	now := c.now()

	if overwrite {
		t.tab.Update(id, func(old nameEntry, loaded bool) nameEntry {
			if loaded && old.name == name {
				c.nameReuses.Add(1)
				return nameEntry{at: now, name: old.name}
			}
			c.nameClones.Add(1)
			return nameEntry{at: now, name: strings.Clone(name)}
		})
		plog.Debugf("caching id->principal mapping: %d->%s", id, name)
		return nil
	}

	c.nameClones.Add(1)
	entry := nameEntry{at: now, name: strings.Clone(name)}
	if err := t.tab.Insert(id, entry, kvtable.InsertIfAbsent); err != nil {
		if errors.Is(err, kvtable.ErrKeyExists) {
			return nil
		}
		return NewError(RetCInsertError, err.Error())
	}

	plog.Debugf("caching id->principal mapping: %s", t.tab.DisplayEntry(id, entry))
	return nil
}

// getName resolves a numeric id to the cached principal name.
func (c *Cache) getName(t nameTable, id uint32) (string, error) {
	if t.tab == nil {
		return "", NewError(RetCInvalidArgument, "nil table")
	}

	entry, ok := t.tab.Get(id)
	if !ok {
		t.met.misses.Inc()
		return "", NewError(RetCNotFound, "no principal for id")
	}

	if !c.fresh(entry.at) {
		t.met.expired.Inc()
		plog.Debugf("cache entry expired: %s", t.tab.DisplayEntry(id, entry))
		return "", NewError(RetCCacheExpired, "principal mapping is stale")
	}

	t.met.hits.Inc()
	return entry.name, nil
}

// removeName drops an id->name mapping.
func (c *Cache) removeName(t nameTable, id uint32) error {
	if t.tab == nil {
		return NewError(RetCInvalidArgument, "nil table")
	}
	if _, ok := t.tab.Take(id); !ok {
		return NewError(RetCNotFound, "no principal for id")
	}
	return nil
}

// --------------------------------------------------------------------------
// Bulk Clearing
// --------------------------------------------------------------------------

func (c *Cache) clearIDTable(t idTable, what string) error {
	if t.tab == nil {
		return NewError(RetCInvalidArgument, "nil table")
	}
	plog.Infof("clearing all %s map entries", what)
	t.tab.DeleteAll(func(key string, e idEntry) {
		plog.Debugf("freeing %s mapping: %s", what, t.tab.DisplayEntry(key, e))
	})
	return nil
}

func (c *Cache) clearNameTable(t nameTable, what string) error {
	if t.tab == nil {
		return NewError(RetCInvalidArgument, "nil table")
	}
	plog.Infof("clearing all %s map entries", what)
	t.tab.DeleteAll(func(key uint32, e nameEntry) {
		plog.Debugf("freeing %s mapping: %s", what, t.tab.DisplayEntry(key, e))
	})
	return nil
}
