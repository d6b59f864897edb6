// Package phpengine hosts a PHP interpreter inside the calling process and
// dispatches HTTP-shaped requests to PHP scripts through a custom SAPI.
//
// The public entrypoint is Handler:
//
//	h, err := phpengine.New("/var/www/html")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	resp, err := h.Handle(req)
//
// Two builds exist behind the php_embed build tag: with it, Sapi talks to
// a real linked libphp over cgo (sapi_cgo.go, callbacks_cgo.go); without
// it, Sapi runs a minimal pure-Go script interpreter sufficient to
// exercise the handler pipeline and its tests (sapi_nocgo.go, miniphp.go).
package phpengine
