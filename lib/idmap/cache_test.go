package idmap

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move the wall clock by hand.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(timeout time.Duration) (*Cache, *fakeClock) {
	clock := newFakeClock()
	cache := New(Config{Timeout: timeout, Clock: clock.Now})
	return cache, clock
}

func TestAddAndGet(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	if err := cache.AddUserName("alice", 1000, false, false); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	uid, err := cache.LookupUserID("alice")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if uid != 1000 {
		t.Errorf("expected uid 1000, got %d", uid)
	}

	if _, err := cache.LookupUserID("nobody"); CodeOf(err) != RetCNotFound {
		t.Errorf("expected NotFound for unknown principal, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	cache, clock := newTestCache(time.Minute)

	if err := cache.AddUserName("alice", 1000, true, false); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// at exactly the timeout the entry is still fresh
	clock.Advance(time.Minute)
	if _, err := cache.LookupUserID("alice"); err != nil {
		t.Fatalf("entry at timeout boundary should be fresh: %v", err)
	}

	clock.Advance(time.Second)
	if _, err := cache.LookupUserID("alice"); CodeOf(err) != RetCCacheExpired {
		t.Fatalf("expected CacheExpired, got %v", err)
	}
	if _, err := cache.LookupUserName(1000); CodeOf(err) != RetCCacheExpired {
		t.Fatalf("expected CacheExpired on reverse direction, got %v", err)
	}

	// no silent self-healing: a second read still reports expired
	if _, err := cache.LookupUserID("alice"); CodeOf(err) != RetCCacheExpired {
		t.Errorf("expected CacheExpired on repeated read, got %v", err)
	}

	// the entry persists physically until overwritten or removed
	forward, reverse, err := cache.DomainStats(DomainUser)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if forward.Entries != 1 || reverse.Entries != 1 {
		t.Errorf("expired entries should stay cached, got %d/%d entries", forward.Entries, reverse.Entries)
	}
}

func TestOverwriteResetsFreshness(t *testing.T) {
	cache, clock := newTestCache(time.Minute)

	if err := cache.AddUserName("alice", 1000, false, false); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// close to expiry, the caller re-resolves and refreshes
	clock.Advance(59 * time.Second)
	if err := cache.AddUserName("alice", 2000, false, true); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	clock.Advance(30 * time.Second)
	uid, err := cache.LookupUserID("alice")
	if err != nil {
		t.Fatalf("expected fresh entry after overwrite, got %v", err)
	}
	if uid != 2000 {
		t.Errorf("expected refreshed uid 2000, got %d", uid)
	}
}

func TestOverwriteWithoutPriorEntry(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	if err := cache.AddGroupName("staff", 500, false, true); err != nil {
		t.Fatalf("overwrite on empty table failed: %v", err)
	}
	gid, err := cache.LookupGroupID("staff")
	if err != nil || gid != 500 {
		t.Errorf("expected staff->500, got %d (%v)", gid, err)
	}
}

func TestNameReuseOnOverwrite(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	if err := cache.AddUserID(1000, "alice", false, false); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	base := cache.AllocStats()

	// overwrite with the unchanged name keeps the stored string
	if err := cache.AddUserID(1000, "alice", false, true); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	after := cache.AllocStats()
	if after.NameReuses != base.NameReuses+1 {
		t.Errorf("expected one name reuse, got %d -> %d", base.NameReuses, after.NameReuses)
	}
	if after.NameClones != base.NameClones {
		t.Errorf("unchanged name must not be recloned: %d -> %d", base.NameClones, after.NameClones)
	}

	// overwrite with a different name stores exactly one fresh copy
	if err := cache.AddUserID(1000, "alicia", false, true); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	final := cache.AllocStats()
	if final.NameClones != after.NameClones+1 {
		t.Errorf("expected exactly one clone for changed name, got %d -> %d", after.NameClones, final.NameClones)
	}
	if final.NameReuses != after.NameReuses {
		t.Errorf("changed name must not count as reuse")
	}

	name, err := cache.LookupUserName(1000)
	if err != nil || name != "alicia" {
		t.Errorf("expected alicia, got %q (%v)", name, err)
	}
}

func TestRemove(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	if err := cache.AddUserName("alice", 1000, true, false); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := cache.RemoveUserName("alice"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := cache.LookupUserID("alice"); CodeOf(err) != RetCNotFound {
		t.Errorf("expected NotFound after removal, got %v", err)
	}
	if err := cache.RemoveUserName("alice"); CodeOf(err) != RetCNotFound {
		t.Errorf("expected NotFound on double removal, got %v", err)
	}

	// the reverse direction is untouched by a forward removal
	if _, err := cache.LookupUserName(1000); err != nil {
		t.Errorf("reverse entry should survive forward removal: %v", err)
	}
	if err := cache.RemoveUserID(1000); err != nil {
		t.Fatalf("reverse removal failed: %v", err)
	}
	if _, err := cache.LookupUserName(1000); CodeOf(err) != RetCNotFound {
		t.Errorf("expected NotFound after reverse removal, got %v", err)
	}
}

func TestInvalidArguments(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	if err := cache.AddUserName("", 1000, false, false); CodeOf(err) != RetCInvalidArgument {
		t.Errorf("expected InvalidArgument for empty name, got %v", err)
	}
	if err := cache.AddUserID(1000, "", false, false); CodeOf(err) != RetCInvalidArgument {
		t.Errorf("expected InvalidArgument for empty reverse name, got %v", err)
	}
	if _, err := cache.LookupUserID(""); CodeOf(err) != RetCInvalidArgument {
		t.Errorf("expected InvalidArgument for empty lookup, got %v", err)
	}
	if err := cache.RemoveGroupName(""); CodeOf(err) != RetCInvalidArgument {
		t.Errorf("expected InvalidArgument for empty removal, got %v", err)
	}
	if _, _, err := cache.DomainStats(Domain(42)); CodeOf(err) != RetCInvalidArgument {
		t.Errorf("expected InvalidArgument for unknown domain, got %v", err)
	}
}

func TestClear(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	for i := uint32(0); i < 5; i++ {
		name := string(rune('a'+i)) + "user"
		if err := cache.AddUserName(name, 1000+i, true, false); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	if err := cache.ClearUserNames(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	forward, reverse, _ := cache.DomainStats(DomainUser)
	if forward.Entries != 0 {
		t.Errorf("expected cleared forward table, got %d entries", forward.Entries)
	}
	if reverse.Entries != 5 {
		t.Errorf("reverse table should be untouched, got %d entries", reverse.Entries)
	}

	if err := cache.ClearUserIDs(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	_, reverse, _ = cache.DomainStats(DomainUser)
	if reverse.Entries != 0 {
		t.Errorf("expected cleared reverse table, got %d entries", reverse.Entries)
	}
}

func TestConcurrentFirstInsert(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	const writers = 64
	var wg sync.WaitGroup
	wg.Add(writers)

	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func(uid uint32) {
			defer wg.Done()
			if err := cache.AddUserName("alice", uid, false, false); err != nil {
				errs <- err
			}
		}(uint32(i))
	}
	wg.Wait()
	close(errs)

	// losing the first-insert race is still success for every writer
	for err := range errs {
		t.Errorf("concurrent add failed: %v", err)
	}

	uid, err := cache.LookupUserID("alice")
	if err != nil {
		t.Fatalf("lookup after concurrent adds failed: %v", err)
	}
	if uid >= writers {
		t.Errorf("winner uid %d was never written", uid)
	}

	forward, _, _ := cache.DomainStats(DomainUser)
	if forward.Entries != 1 {
		t.Errorf("expected a single entry, got %d", forward.Entries)
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	const workers = 16
	const rounds = 200

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(seed uint32) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				uid := uint32(i % 10)
				name := "user" + string(rune('0'+uid))
				switch i % 4 {
				case 0:
					_ = cache.AddUserName(name, uid, true, true)
				case 1:
					_, _ = cache.LookupUserID(name)
				case 2:
					_, _ = cache.LookupUserName(uid)
				case 3:
					_ = cache.SetUserGroup(uid, seed)
				}
			}
		}(uint32(w))
	}
	wg.Wait()

	for uid := uint32(0); uid < 10; uid++ {
		name, err := cache.LookupUserName(uid)
		if err != nil {
			t.Fatalf("lookup %d failed: %v", uid, err)
		}
		want := "user" + string(rune('0'+uid))
		if name != want {
			t.Errorf("expected %q, got %q", want, name)
		}
	}
}
