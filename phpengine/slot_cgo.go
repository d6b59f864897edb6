//go:build php_embed

package phpengine

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Under ZTS, the interpreter's server-context pointer lives in
// thread-local engine globals, one per OS thread. Go cannot pin a cgo call
// to an OS thread without runtime.LockOSThread. phpengine does not call it
// itself: the goroutine calling Handler.Handle must already be locked (as
// internal/workerpool's worker.run is, for its whole lifetime).
// sadewadee-maboo's internal/phpengine/callbacks.go keys its
// requestContexts map by an integer thread index rather than a real TLS
// slot. We key by the
// kernel thread id (unix.Gettid) instead of a synthetic index, since it is
// stable for the lifetime of a locked OS thread and unique across threads.
var (
	slotsMu sync.Mutex
	slots   = make(map[int]*RequestContext)
)

func installContext(ctx *RequestContext) {
	tid := unix.Gettid()
	slotsMu.Lock()
	defer slotsMu.Unlock()
	if _, exists := slots[tid]; exists {
		panic("phpengine: context already installed on this thread")
	}
	slots[tid] = ctx
}

func currentInstalledContext() *RequestContext {
	tid := unix.Gettid()
	slotsMu.Lock()
	defer slotsMu.Unlock()
	return slots[tid]
}

func reclaimInstalledContext() *RequestContext {
	tid := unix.Gettid()
	slotsMu.Lock()
	defer slotsMu.Unlock()
	ctx := slots[tid]
	delete(slots, tid)
	return ctx
}
