//go:build php_embed

package phpengine

/*
#cgo CFLAGS: -I${SRCDIR}/sapi
#cgo LDFLAGS: -L${SRCDIR}/lib -lphp -lm -ldl

#include "sapi/embedphp_sapi.h"
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Sapi is the real libphp-backed implementation of the interpreter
// lifecycle (C6) and SAPI module (C5), built only with -tags php_embed.
// Grounded directly on original_source/crates/php/src/sapi.rs: a single
// boxed descriptor table pinned at a stable address (here, the C struct
// allocated by embedphp_sapi_new and owned for the process lifetime), a
// startup that performs per-thread init before invoking module startup,
// and a drop/teardown that undoes engine init in reverse order.
type Sapi struct {
	module *C.embedphp_sapi_module
}

// dupCString copies s into a transient C buffer, hands it to
// embedphp_sapi_strdup for the interpreter's own copy, and frees the
// transient buffer before returning — embedphp_sapi_strdup never takes
// ownership of the pointer it's given, so the caller must free it itself.
func dupCString(s string) *C.char {
	tmp := C.CString(s)
	defer C.free(unsafe.Pointer(tmp))
	return C.embedphp_sapi_strdup(tmp)
}

// ensureSapi constructs (or reuses) the process-wide Sapi. iniOverrides is
// only consulted the first time this builds a new Sapi — see
// WithIniOverrides.
func ensureSapi(iniOverrides map[string]string) (*Sapi, error) {
	return acquireSapi(func() (*Sapi, error) {
		exe, err := os.Executable()
		if err != nil {
			return nil, &StartError{Kind: ExeLocationNotFound}
		}
		cexe := C.CString(exe)
		defer C.free(unsafe.Pointer(cexe))

		mod := C.embedphp_sapi_new(cexe)
		if mod == nil {
			return nil, &StartError{Kind: SapiNotInitialized}
		}
		cini := C.CString(iniBlob(iniOverrides))
		defer C.free(unsafe.Pointer(cini))
		C.embedphp_sapi_configure_ini(mod, cini)
		if C.embedphp_sapi_startup(mod) != 0 {
			C.embedphp_sapi_free(mod)
			return nil, &StartError{Kind: SapiNotInitialized}
		}
		if C.embedphp_sapi_module_startup(mod) != 0 {
			C.embedphp_sapi_shutdown(mod)
			C.embedphp_sapi_free(mod)
			return nil, &StartError{Kind: SapiNotInitialized}
		}
		return &Sapi{module: mod}, nil
	})
}

// release decrements the process-wide refcount, tearing down in reverse
// construction order (module shutdown, sapi shutdown, per-process free)
// once the last Handler referencing this Sapi is closed.
func (s *Sapi) release() error {
	return releaseSapi(func() error {
		C.embedphp_sapi_module_shutdown(s.module)
		C.embedphp_sapi_shutdown(s.module)
		C.embedphp_sapi_free(s.module)
		return nil
	})
}

// startup performs the per-thread ZTS init the first time it runs on the
// calling OS thread, then invokes the module's request-type startup hook.
// Must be called with the goroutine locked to its OS thread (the Handler's
// caller is expected to have done this, matching the constraint in §4.8
// that handle() on one thread is the caller's responsibility to serialize).
func (s *Sapi) startup() error {
	if C.embedphp_thread_init(s.module, C.int(unix.Gettid())) != 0 {
		return fmt.Errorf("per-thread init failed")
	}
	return nil
}

type requestScope struct {
	module *C.embedphp_sapi_module
}

// newRequestScope calls php_request_startup; its close always calls
// php_request_shutdown with a null context argument, matching §4.7's
// RequestScope, and runs even if execute bails out because Handle defers
// scope.close() immediately after a successful newRequestScope.
func (s *Sapi) newRequestScope() (*requestScope, error) {
	if C.embedphp_request_startup(s.module) != 0 {
		return nil, fmt.Errorf("request startup failed")
	}
	return &requestScope{module: s.module}, nil
}

func (rs *requestScope) close() {
	C.embedphp_request_shutdown(rs.module)
}

type fileHandleScope struct {
	handle *C.embedphp_file_handle
	path   *C.char
}

// newFileHandleScope duplicates path into interpreter memory (estrdup,
// via embedphp_sapi_strdup) and initializes a zend_file_handle-equivalent
// struct marked as the primary script, per §4.7.
func (s *Sapi) newFileHandleScope(path string) (*fileHandleScope, error) {
	cpath := dupCString(path)
	h := C.embedphp_file_handle_new(cpath)
	if h == nil {
		C.embedphp_sapi_strfree(cpath)
		return nil, fmt.Errorf("failed to initialize file handle")
	}
	return &fileHandleScope{handle: h, path: cpath}, nil
}

func (fhs *fileHandleScope) close() {
	C.embedphp_file_handle_free(fhs.handle)
	C.embedphp_sapi_strfree(fhs.path)
}

// execute runs the script wrapped in the interpreter's bailout-catching
// primitive (zend_try/zend_catch equivalent), returning true if a bailout
// occurred. RequestContext must already be installed via forRequest.
func (s *Sapi) execute(fhs *fileHandleScope) (bailout bool) {
	return C.embedphp_execute_script(s.module, fhs.handle) != 0
}

func (s *Sapi) resultStatus() int {
	ctx := currentContext()
	if ctx == nil {
		return 200
	}
	return ctx.ResponseStatus()
}

func (s *Sapi) resultContentType() (string, bool) {
	ctx := currentContext()
	if ctx == nil {
		return "", false
	}
	return ctx.responseHeaders().Get("Content-Type")
}

func (s *Sapi) defaultContentType() string {
	return C.GoString(C.embedphp_default_mimetype(s.module))
}

func (s *Sapi) pendingException() (string, bool) {
	cmsg := C.embedphp_pending_exception(s.module)
	if cmsg == nil {
		return "", false
	}
	defer C.embedphp_sapi_strfree(cmsg)
	return C.GoString(cmsg), true
}

// setRequestInfo duplicates every request-info string into interpreter
// memory (C2) and installs the resulting request-info struct, matching
// §4.8 steps 5-7. The duplicated strings are owned by the interpreter
// until the deactivate callback frees them (§4.5 deactivate) — never here.
func (s *Sapi) setRequestInfo(ctx *RequestContext, info requestInfo) error {
	ctx.applyRequestInfo(info)

	cMethod := dupCString(info.requestMethod)
	cQuery := dupCString(info.queryString)
	cURI := dupCString(info.requestURI)
	cPathTranslated := dupCString(info.pathTranslated)
	var cContentType, cCookie *C.char
	if info.contentType != "" {
		cContentType = dupCString(info.contentType)
	}
	if info.cookieData != "" {
		cCookie = dupCString(info.cookieData)
	}

	argv := make([]*C.char, len(info.argv))
	for i, a := range info.argv {
		argv[i] = dupCString(a)
	}
	var argvPtr **C.char
	if len(argv) > 0 {
		argvPtr = &argv[0]
	}

	ret := C.embedphp_set_request_info(s.module,
		C.int(info.protoNum), C.int(info.argc), argvPtr,
		cMethod, cQuery, cURI, cPathTranslated, cContentType, cCookie,
		C.int(info.contentLength))
	if ret != 0 {
		return fmt.Errorf("failed to populate request info")
	}
	return nil
}
