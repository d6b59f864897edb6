//go:build !php_embed

package phpengine

import "sync"

// The fallback engine (sapi_nocgo.go) never runs real interpreter
// threads, so there is no OS thread-local storage to key off. A single
// guarded slot is enough to support the tests and demos this build is
// for; see slot_cgo.go for the real per-OS-thread slot used under
// php_embed.
var (
	slotMu  sync.Mutex
	slotPtr *RequestContext
)

func installContext(ctx *RequestContext) {
	slotMu.Lock()
	defer slotMu.Unlock()
	if slotPtr != nil {
		panic("phpengine: context already installed on this slot")
	}
	slotPtr = ctx
}

func currentInstalledContext() *RequestContext {
	slotMu.Lock()
	defer slotMu.Unlock()
	return slotPtr
}

func reclaimInstalledContext() *RequestContext {
	slotMu.Lock()
	defer slotMu.Unlock()
	ctx := slotPtr
	slotPtr = nil
	return ctx
}
