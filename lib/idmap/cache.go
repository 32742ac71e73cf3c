package idmap

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"

	"github.com/nfslabs/idmapd/lib/kvtable"
)

var plog = logger.GetLogger("idmap")

// DefaultTimeout is the freshness window applied when Config.Timeout
// is unset. A stale entry is reported as expired on read but stays
// cached until a caller refreshes it with an overwrite write.
const DefaultTimeout = 600 * time.Second

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// Config configures the cache during initialization.
type Config struct {
	// Timeout is the TTL of cached mappings (0 = DefaultTimeout).
	Timeout time.Duration
	// SizeHint presizes each table (0 = no presizing).
	SizeHint int
	// Clock supplies the wall clock used for entry timestamps and
	// freshness checks (nil = time.Now). Freshness is wall-clock based
	// on purpose; entries do not survive clock adjustments gracefully.
	Clock func() time.Time
}

// --------------------------------------------------------------------------
// Table Wiring
// --------------------------------------------------------------------------

// tableMetrics are the process-wide read counters exported per table.
type tableMetrics struct {
	hits    *metrics.Counter
	misses  *metrics.Counter
	expired *metrics.Counter
}

func newTableMetrics(table string) tableMetrics {
	return tableMetrics{
		hits:    metrics.GetOrCreateCounter(fmt.Sprintf(`idmap_cache_hits_total{table=%q}`, table)),
		misses:  metrics.GetOrCreateCounter(fmt.Sprintf(`idmap_cache_misses_total{table=%q}`, table)),
		expired: metrics.GetOrCreateCounter(fmt.Sprintf(`idmap_cache_expired_total{table=%q}`, table)),
	}
}

// idTable is a forward table: principal name -> numeric id.
type idTable struct {
	tab *kvtable.Table[string, idEntry]
	met tableMetrics
}

// nameTable is a reverse table: numeric id -> principal name.
type nameTable struct {
	tab *kvtable.Table[uint32, nameEntry]
	met tableMetrics
}

func newIDTable(name string, sizeHint int) idTable {
	display := func(key string, e idEntry) string {
		return fmt.Sprintf("%s->%d", key, e.id)
	}
	return idTable{
		tab: kvtable.New[string, idEntry](name, kvtable.StringHasher(), display, sizeHint),
		met: newTableMetrics(name),
	}
}

func newNameTable(name string, sizeHint int) nameTable {
	display := func(key uint32, e nameEntry) string {
		return fmt.Sprintf("%d->%s", key, e.name)
	}
	return nameTable{
		tab: kvtable.New[uint32, nameEntry](name, kvtable.UintHasher(), display, sizeHint),
		met: newTableMetrics(name),
	}
}

// --------------------------------------------------------------------------
// Cache
// --------------------------------------------------------------------------

// Cache bundles the five mapping tables of the identity cache. It is
// created once during process initialization and passed explicitly to
// every caller; there is no ambient global state.
//
// The cache layer holds no locks of its own. All atomicity comes from
// the per-key operations of the underlying tables, and no invariant
// spans two tables atomically: a forward/reverse pair is kept loosely
// consistent only by callers that opt into propagation.
type Cache struct {
	timeout time.Duration
	now     func() time.Time

	userIDs    idTable   // principal name -> uid
	userNames  nameTable // uid -> principal name
	groupIDs   idTable   // principal name -> gid
	groupNames nameTable // gid -> principal name

	// uid -> gid association, no timestamps, always-overwrite
	userGroups *kvtable.Table[uint32, uint32]

	// reverse-table string accounting, see addName
	nameClones atomic.Uint64
	nameReuses atomic.Uint64
}

// New constructs the five tables of the identity mapping cache.
//
// Thread-safety: the returned cache is safe for concurrent use; New
// itself should only be called once during initialization.
func New(cfg Config) *Cache {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	plog.Debugf("building identity mapping cache")

	c := &Cache{
		timeout:    cfg.Timeout,
		now:        cfg.Clock,
		userIDs:    newIDTable("uname2uid", cfg.SizeHint),
		userNames:  newNameTable("uid2uname", cfg.SizeHint),
		groupIDs:   newIDTable("gname2gid", cfg.SizeHint),
		groupNames: newNameTable("gid2gname", cfg.SizeHint),
		userGroups: kvtable.New[uint32, uint32]("uid2gid", kvtable.UintHasher(),
			func(uid, gid uint32) string { return fmt.Sprintf("%d->%d", uid, gid) },
			cfg.SizeHint),
	}

	plog.Infof("identity mapping cache initialized (timeout %v)", cfg.Timeout)
	return c
}

// Timeout returns the configured freshness window.
func (c *Cache) Timeout() time.Duration { return c.timeout }
