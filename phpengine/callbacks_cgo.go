//go:build php_embed

package phpengine

/*
#include "sapi/embedphp_sapi.h"
*/
import "C"

import (
	"log/slog"
	"strings"
	"unsafe"
)

// These //export functions are the Go side of the SAPI callback table
// (C5), registered with the interpreter by embedphp_sapi_new. Each
// resolves the current thread's RequestContext and must behave as a
// benign no-op when none is installed (invariant 4) — grounded on
// sadewadee-maboo/internal/phpengine/callbacks.go's
// requestContexts-map-keyed-by-thread routing, adapted to the
// current()/reclaim() accessor pair from context.go instead of a
// package-private map.

//export embedphp_go_ub_write
func embedphp_go_ub_write(buf *C.char, length C.size_t) C.size_t {
	ctx := currentContext()
	if ctx == nil || buf == nil || length == 0 {
		return 0
	}
	b := C.GoBytes(unsafe.Pointer(buf), C.int(length))
	ctx.WriteResponseBody(b)
	return length
}

//export embedphp_go_flush
func embedphp_go_flush() {
	// Header emission is triggered by the interpreter's own send_headers;
	// the core keeps accumulating subsequent writes (§4.5 flush).
}

//export embedphp_go_send_header
func embedphp_go_send_header(name *C.char, value *C.char) {
	ctx := currentContext()
	if ctx == nil || name == nil || value == nil {
		return
	}
	_ = ctx.AddResponseHeader(C.GoString(name), C.GoString(value))
}

//export embedphp_go_read_post
func embedphp_go_read_post(buf *C.char, length C.size_t) C.size_t {
	ctx := currentContext()
	if ctx == nil || buf == nil || length == 0 {
		return 0
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(length))
	n := ctx.ReadPost(dst)
	return C.size_t(n)
}

//export embedphp_go_read_cookies
func embedphp_go_read_cookies() *C.char {
	ctx := currentContext()
	if ctx == nil {
		return nil
	}
	cookie, ok := ctx.Request().Headers().Get("Cookie")
	if !ok {
		return nil
	}
	return C.CString(cookie)
}

//export embedphp_go_register_server_variables
func embedphp_go_register_server_variables(setVar func(name, value *C.char) C.int) C.int {
	ctx := currentContext()
	if ctx == nil {
		return 0
	}
	vars := computeServerVars(ctx, "embedphp", "")
	for k, v := range vars {
		ck := C.CString(k)
		cv := C.CString(v)
		setVar(ck, cv)
		C.free(unsafe.Pointer(ck))
		C.free(unsafe.Pointer(cv))
	}
	// Best-effort population: individual registration failures are
	// swallowed per §4.5, so this callback always reports success.
	return 0
}

//export embedphp_go_log_message
func embedphp_go_log_message(message *C.char) {
	ctx := currentContext()
	if message == nil {
		return
	}
	msg := C.GoString(message)
	if ctx != nil {
		ctx.WriteResponseLog([]byte(msg))
	}
	logPHPMessage(msg)
}

// logPHPMessage mirrors sadewadee-maboo/internal/phpengine/callbacks.go's
// logPHPMessage: additive slog instrumentation alongside the response log
// buffer the core contract actually specifies.
func logPHPMessage(msg string) {
	level := slog.LevelInfo
	switch {
	case strings.Contains(msg, "PHP Fatal error"), strings.Contains(msg, "PHP Parse error"):
		level = slog.LevelError
	case strings.Contains(msg, "PHP Warning"):
		level = slog.LevelWarn
	case strings.Contains(msg, "PHP Deprecated"), strings.Contains(msg, "PHP Notice"):
		level = slog.LevelDebug
	}
	slog.Log(nil, level, "php log", slog.String("message", msg))
}

//export embedphp_go_apache_request_headers
func embedphp_go_apache_request_headers(setVar func(name, value *C.char) C.int) {
	ctx := currentContext()
	if ctx == nil {
		return
	}
	for k, v := range apacheRequestHeaders(ctx) {
		ck := C.CString(k)
		cv := C.CString(v)
		setVar(ck, cv)
		C.free(unsafe.Pointer(ck))
		C.free(unsafe.Pointer(cv))
	}
}
