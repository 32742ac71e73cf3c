package idmap

import (
	"fmt"

	"github.com/nfslabs/idmapd/lib/kvtable"
)

// DomainStats returns snapshots of the forward and reverse table of a
// domain, straight from the tables' own counters.
func (c *Cache) DomainStats(domain Domain) (forward, reverse kvtable.Stats, err error) {
	switch domain {
	case DomainUser:
		return c.userIDs.tab.Stats(), c.userNames.tab.Stats(), nil
	case DomainGroup:
		return c.groupIDs.tab.Stats(), c.groupNames.tab.Stats(), nil
	default:
		return kvtable.Stats{}, kvtable.Stats{}, NewError(RetCInvalidArgument, fmt.Sprintf("unknown domain %d", domain))
	}
}

// DirectStats returns a snapshot of the uid->gid table.
func (c *Cache) DirectStats() kvtable.Stats {
	return c.userGroups.Stats()
}

// AllocStats reports the reverse-table string accounting: how many
// overwrites could keep the stored name untouched and how many had to
// store a fresh copy.
type AllocStats struct {
	NameClones uint64 `json:"name_clones"`
	NameReuses uint64 `json:"name_reuses"`
}

// AllocStats returns the current string accounting counters.
func (c *Cache) AllocStats() AllocStats {
	return AllocStats{
		NameClones: c.nameClones.Load(),
		NameReuses: c.nameReuses.Load(),
	}
}
