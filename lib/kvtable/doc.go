// Package kvtable provides the generic, thread-safe associative store
// underneath the identity-mapping cache. Each Table instance is
// parameterized with its own hash function and debug formatter and
// offers atomic single-key operations: Get, Insert (if-absent or
// overwrite), Update (atomic read-modify-write), Take (get-and-delete),
// Delete and DeleteAll.
//
// The package focuses on:
//   - Per-key atomicity without any table-wide locking
//   - Per-instance hashing (seeded FNV-1a for strings, identity for ids)
//   - Cheap occupancy and operation counters for diagnostics
//
// No invariant spans two keys or two tables atomically: callers that
// maintain related tables (such as a forward and a reverse mapping)
// must tolerate transient skew between them.
//
// The implementation builds on xsync.MapOf, whose Compute primitive
// gives every Update a single per-key critical section. This is what
// lets an overwrite mutate an entry in place instead of removing and
// reinserting it.
package kvtable
