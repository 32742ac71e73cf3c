package idmap

// Principal-level wrappers. Each write entry point takes the primary
// direction first and, when propagate is set, also writes the
// reciprocal direction. The two writes are not atomic as a pair: a
// reader racing between them may observe the primary direction updated
// and the reciprocal not yet updated. Error precedence is fixed — the
// primary write's error is returned regardless of the reciprocal
// outcome, otherwise the reciprocal's error.

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// AddUserName caches a user principal -> uid mapping.
func (c *Cache) AddUserName(name string, uid uint32, propagate, overwrite bool) error {
	err := c.addID(c.userIDs, name, uid, overwrite)
	var rerr error
	if propagate {
		rerr = c.addName(c.userNames, uid, name, overwrite)
	}
	if err != nil {
		return err
	}
	return rerr
}

// AddUserID caches a uid -> user principal mapping.
func (c *Cache) AddUserID(uid uint32, name string, propagate, overwrite bool) error {
	err := c.addName(c.userNames, uid, name, overwrite)
	var rerr error
	if propagate {
		rerr = c.addID(c.userIDs, name, uid, overwrite)
	}
	if err != nil {
		return err
	}
	return rerr
}

// AddGroupName caches a group principal -> gid mapping.
func (c *Cache) AddGroupName(name string, gid uint32, propagate, overwrite bool) error {
	err := c.addID(c.groupIDs, name, gid, overwrite)
	var rerr error
	if propagate {
		rerr = c.addName(c.groupNames, gid, name, overwrite)
	}
	if err != nil {
		return err
	}
	return rerr
}

// AddGroupID caches a gid -> group principal mapping.
func (c *Cache) AddGroupID(gid uint32, name string, propagate, overwrite bool) error {
	err := c.addName(c.groupNames, gid, name, overwrite)
	var rerr error
	if propagate {
		rerr = c.addID(c.groupIDs, name, gid, overwrite)
	}
	if err != nil {
		return err
	}
	return rerr
}

// AddGroupIDAuthoritative caches a gid -> group principal mapping and
// always writes both directions. It is used when the numeric id is
// ground truth (a gid reported by the kernel) and the cached name may
// be stale. The reverse write's error takes precedence.
func (c *Cache) AddGroupIDAuthoritative(gid uint32, name string, overwrite bool) error {
	err := c.addName(c.groupNames, gid, name, overwrite)
	ferr := c.addID(c.groupIDs, name, gid, overwrite)
	if err != nil {
		return err
	}
	return ferr
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// LookupUserID resolves a user principal to a uid.
func (c *Cache) LookupUserID(name string) (uint32, error) {
	return c.getID(c.userIDs, name)
}

// LookupUserName resolves a uid to the cached user principal.
func (c *Cache) LookupUserName(uid uint32) (string, error) {
	return c.getName(c.userNames, uid)
}

// LookupGroupID resolves a group principal to a gid.
func (c *Cache) LookupGroupID(name string) (uint32, error) {
	return c.getID(c.groupIDs, name)
}

// LookupGroupName resolves a gid to the cached group principal.
func (c *Cache) LookupGroupName(gid uint32) (string, error) {
	return c.getName(c.groupNames, gid)
}

// --------------------------------------------------------------------------
// Remove Operations
// --------------------------------------------------------------------------

// RemoveUserName uncaches a user principal -> uid mapping.
func (c *Cache) RemoveUserName(name string) error {
	return c.removeID(c.userIDs, name)
}

// RemoveUserID uncaches a uid -> user principal mapping.
func (c *Cache) RemoveUserID(uid uint32) error {
	return c.removeName(c.userNames, uid)
}

// RemoveGroupName uncaches a group principal -> gid mapping.
func (c *Cache) RemoveGroupName(name string) error {
	return c.removeID(c.groupIDs, name)
}

// RemoveGroupID uncaches a gid -> group principal mapping.
func (c *Cache) RemoveGroupID(gid uint32) error {
	return c.removeName(c.groupNames, gid)
}

// --------------------------------------------------------------------------
// Bulk Clearing
// --------------------------------------------------------------------------

// ClearUserNames drops every principal->uid mapping.
func (c *Cache) ClearUserNames() error {
	return c.clearIDTable(c.userIDs, "principal->uid")
}

// ClearUserIDs drops every uid->principal mapping.
func (c *Cache) ClearUserIDs() error {
	return c.clearNameTable(c.userNames, "uid->principal")
}

// ClearGroupNames drops every principal->gid mapping.
func (c *Cache) ClearGroupNames() error {
	return c.clearIDTable(c.groupIDs, "principal->gid")
}

// ClearGroupIDs drops every gid->principal mapping.
func (c *Cache) ClearGroupIDs() error {
	return c.clearNameTable(c.groupNames, "gid->principal")
}
