package phpengine

import "sync"

// sapiCache implements the process-wide weak-cache pattern from §4.6:
// ensureSapi() upgrades the cached instance if live, else constructs a new
// one under the write lock. Unlike Rust's Weak<T>, Go has no first-class
// weak reference outside the experimental weak package, so liveness is
// tracked with an explicit refcount instead of a weak pointer upgrade —
// functionally equivalent for this single-process-wide resource, since the
// only holders of a strong reference are Handler values that call release
// on Close.
var (
	cacheMu  sync.Mutex
	cached   *Sapi
	refcount int
)

// acquireSapi returns the cached Sapi, constructing one via build if none
// is live, and increments the refcount. Mirrors ensure_sapi() in
// original_source/crates/php/src/sapi.rs.
func acquireSapi(build func() (*Sapi, error)) (*Sapi, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached != nil {
		refcount++
		return cached, nil
	}

	s, err := build()
	if err != nil {
		return nil, err
	}
	cached = s
	refcount = 1
	return s, nil
}

// releaseSapi decrements the refcount and tears down via teardown when it
// reaches zero, in reverse order of construction (module shutdown, sapi
// shutdown, per-process shutdown).
func releaseSapi(teardown func() error) error {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if refcount == 0 {
		return nil
	}
	refcount--
	if refcount > 0 {
		return nil
	}
	cached = nil
	return teardown()
}
