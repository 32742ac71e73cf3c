package idmap

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Labels of the mapping blocks in a population resource.
const (
	confLabelUsers  = "users"
	confLabelGroups = "groups"
)

// Populate bulk-loads the principal mappings of one domain from a YAML
// resource and inserts each pair into both lookup directions without
// overwriting, bypassing the propagation wrappers.
//
// Population is fail-fast startup policy, unlike the soft-miss policy
// of steady-state reads: the first malformed entry, a missing block or
// an unreadable file aborts the load with RetCInvalidArgument. Entries
// inserted before the failure stay cached; partial population is not
// rolled back.
func (c *Cache) Populate(path string, domain Domain) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		plog.Errorf("cannot open mapping file %s: %v", path, err)
		return NewError(RetCInvalidArgument, fmt.Sprintf("cannot open mapping file %s", path))
	}

	// MapSlice keeps document order, so the first malformed entry is
	// deterministic.
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		plog.Errorf("cannot parse mapping file %s: %v", path, err)
		return NewError(RetCInvalidArgument, fmt.Sprintf("cannot parse mapping file %s", path))
	}

	var (
		label   string
		forward idTable
		reverse nameTable
	)
	switch domain {
	case DomainUser:
		label, forward, reverse = confLabelUsers, c.userIDs, c.userNames
	case DomainGroup:
		label, forward, reverse = confLabelGroups, c.groupIDs, c.groupNames
	default:
		return NewError(RetCInvalidArgument, fmt.Sprintf("unknown domain %d", domain))
	}

	block, ok := findBlock(doc, label)
	if !ok {
		plog.Errorf("cannot find block %q in %s", label, path)
		return NewError(RetCInvalidArgument, fmt.Sprintf("no %q block in %s", label, path))
	}

	for i, item := range block {
		name, ok := item.Key.(string)
		if !ok || name == "" {
			return NewError(RetCInvalidArgument,
				fmt.Sprintf("entry %d of block %q: key is not a principal name", i, label))
		}
		id, err := parseID(item.Value)
		if err != nil {
			plog.Errorf("error reading entry %d (%s) of block %q: %v", i, name, label, err)
			return NewError(RetCInvalidArgument,
				fmt.Sprintf("entry %d (%s) of block %q: %v", i, name, label, err))
		}
		if err := c.addID(forward, name, id, false); err != nil {
			return err
		}
		if err := c.addName(reverse, id, name, false); err != nil {
			return err
		}
	}

	plog.Infof("populated %d %s mappings from %s", len(block), domain, path)
	return nil
}

// findBlock locates a top-level mapping block by label.
func findBlock(doc yaml.MapSlice, label string) (yaml.MapSlice, bool) {
	for _, item := range doc {
		key, ok := item.Key.(string)
		if !ok || key != label {
			continue
		}
		block, ok := item.Value.(yaml.MapSlice)
		return block, ok
	}
	return nil, false
}

// parseID converts a block value into a u32 id, rejecting non-numeric,
// negative and out-of-range input.
func parseID(v interface{}) (uint32, error) {
	switch n := v.(type) {
	case int:
		if n < 0 || int64(n) > math.MaxUint32 {
			return 0, fmt.Errorf("id %d out of range", n)
		}
		return uint32(n), nil
	case int64:
		if n < 0 || n > math.MaxUint32 {
			return 0, fmt.Errorf("id %d out of range", n)
		}
		return uint32(n), nil
	case uint64:
		if n > math.MaxUint32 {
			return 0, fmt.Errorf("id %d out of range", n)
		}
		return uint32(n), nil
	case string:
		id, err := strconv.ParseUint(n, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("non-numeric id %q", n)
		}
		return uint32(id), nil
	default:
		return 0, fmt.Errorf("unsupported id value %v", v)
	}
}
