package kvtable

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// StringHasher returns the hash function used by string-keyed tables.
// It uses the FNV-1a hash algorithm, which is fast and has good
// distribution, and folds in the per-map seed for uniqueness between
// table instances.
func StringHasher() func(string, uint64) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	return func(s string, seed uint64) uint64 {
		hash := uint64(offset64) ^ seed
		for i := 0; i < len(s); i++ {
			hash ^= uint64(s[i])
			hash *= prime64
		}
		return hash
	}
}

// UintHasher returns the identity hash function used by numeric-keyed
// tables. The id value itself is the hash, combined with the map seed.
func UintHasher() func(uint32, uint64) uint64 {
	return func(key uint32, seed uint64) uint64 {
		return uint64(key) ^ seed
	}
}
