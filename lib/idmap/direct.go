package idmap

import (
	"fmt"

	"github.com/nfslabs/idmapd/lib/kvtable"
)

// The direct map is a flat uid -> gid association: no entry wrapper,
// no timestamp, no TTL. Writes always overwrite.

// SetUserGroup associates a uid with its primary gid.
func (c *Cache) SetUserGroup(uid, gid uint32) error {
	if err := c.userGroups.Insert(uid, gid, kvtable.InsertOverwrite); err != nil {
		return NewError(RetCInsertError, err.Error())
	}
	plog.Debugf("caching uid->gid mapping: %d->%d", uid, gid)
	return nil
}

// UserGroup returns the gid associated with a uid. With RPCSEC_GSS it
// is possible that uid 0 was never mapped; root is then taken to map
// to gid 0. This convention is specific to the direct map and does not
// apply to any of the principal tables.
func (c *Cache) UserGroup(uid uint32) (uint32, error) {
	if gid, ok := c.userGroups.Get(uid); ok {
		return gid, nil
	}
	if uid == 0 {
		return 0, nil
	}
	return 0, NewError(RetCNotFound, fmt.Sprintf("no gid mapping for uid %d", uid))
}

// RemoveUserGroup drops the uid -> gid association.
func (c *Cache) RemoveUserGroup(uid uint32) error {
	if !c.userGroups.Delete(uid) {
		return NewError(RetCNotFound, fmt.Sprintf("no gid mapping for uid %d", uid))
	}
	return nil
}

// ClearUserGroups drops every uid -> gid association.
func (c *Cache) ClearUserGroups() error {
	plog.Infof("clearing all uid->gid map entries")
	c.userGroups.DeleteAll(func(uid, gid uint32) {
		plog.Debugf("freeing uid->gid mapping: %d->%d", uid, gid)
	})
	return nil
}
