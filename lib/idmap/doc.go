// Package idmap implements the identity-mapping cache of a user-space
// NFS server: the translation between wire-level principal strings
// (NFSv4 owner/group strings, RPCSEC_GSS principals) and local numeric
// user/group ids, and between uids and gids directly.
//
// The package focuses on:
//   - Five independent tables bundled in one Cache: name->uid,
//     uid->name, name->gid, gid->name and the flat uid->gid direct map
//   - Lazy, wall-clock TTL: reads of stale entries return a
//     CacheExpired soft miss; no background sweeper reclaims them
//   - Optional propagation of a write into the reciprocal direction,
//     with primary-error precedence and tolerated transient skew
//   - Bulk population from a YAML resource at startup (fail-fast)
//
// Key Components:
//
//   - Cache: the context object constructed once by New and passed to
//     every caller. It holds no locks of its own; atomicity comes from
//     the per-key operations of the underlying kvtable instances.
//
//   - Error System: typed return codes wrapped in *Error. Callers must
//     branch on RetCNotFound and RetCCacheExpired separately — an
//     expired entry stays cached and wants an overwrite refresh after
//     re-resolving through the name service, a missing one wants a
//     plain insert.
//
//   - Principal API: AddUserName, AddUserID, AddGroupName, AddGroupID
//     (each with propagate/overwrite), AddGroupIDAuthoritative (always
//     writes both directions), plus lookups, removals and bulk clears.
//
// Memory behavior: expired entries persist until overwritten or
// removed, so a domain with an unbounded principal space grows without
// bound unless cleared. This mirrors the deliberate absence of an
// eviction pass; callers needing a bound must clear explicitly.
package idmap
