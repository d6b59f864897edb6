// Package httpvalue provides the HTTP value types the embedded PHP core
// consumes: request/response carriers, a header multi-map, and URLs. It is
// intentionally independent of the core's SAPI machinery so it can be
// reused by any façade embedding phpengine.Handler.
package httpvalue

import (
	"net/textproto"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Headers is a case-insensitive multi-map preserving insertion order of
// values within a key. Mirrors the semantics of lang_handler's Headers
// type: get returns the last value, get_all returns all values, get_line
// joins them with ", ".
type Headers struct {
	order []string
	vals  map[string][]string
}

// NewHeaders builds an empty Headers multi-map.
func NewHeaders() *Headers {
	return &Headers{vals: make(map[string][]string)}
}

func canonical(name string) string {
	return textproto.CanonicalMIMEHeaderKey(name)
}

// Add appends a value, preserving any existing values for name.
func (h *Headers) Add(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return &InvalidHeaderError{Name: name}
	}
	key := canonical(name)
	if _, ok := h.vals[key]; !ok {
		h.order = append(h.order, key)
	}
	h.vals[key] = append(h.vals[key], value)
	return nil
}

// Set replaces all values for name with a single value.
func (h *Headers) Set(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return &InvalidHeaderError{Name: name}
	}
	key := canonical(name)
	if _, ok := h.vals[key]; !ok {
		h.order = append(h.order, key)
	}
	h.vals[key] = []string{value}
	return nil
}

// Get returns the last value for name, or "" with ok=false if absent.
func (h *Headers) Get(name string) (string, bool) {
	vs, ok := h.vals[canonical(name)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

// GetAll returns all values for name in insertion order.
func (h *Headers) GetAll(name string) []string {
	vs := h.vals[canonical(name)]
	out := make([]string, len(vs))
	copy(out, vs)
	return out
}

// GetLine returns all values for name joined by ", ".
func (h *Headers) GetLine(name string) (string, bool) {
	vs, ok := h.vals[canonical(name)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return strings.Join(vs, ", "), true
}

// Has reports whether name has at least one value.
func (h *Headers) Has(name string) bool {
	return len(h.vals[canonical(name)]) > 0
}

// Remove deletes all values for name.
func (h *Headers) Remove(name string) {
	key := canonical(name)
	if _, ok := h.vals[key]; !ok {
		return
	}
	delete(h.vals, key)
	for i, k := range h.order {
		if k == key {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Clear removes every header.
func (h *Headers) Clear() {
	h.order = nil
	h.vals = make(map[string][]string)
}

// Len returns the number of distinct header names.
func (h *Headers) Len() int {
	return len(h.order)
}

// Each calls fn once per (name, value) pair in insertion order, a value at
// a time, matching lang_handler's iter() semantics used by
// apache_request_headers() and register_server_variables.
func (h *Headers) Each(fn func(name, value string)) {
	for _, key := range h.order {
		for _, v := range h.vals[key] {
			fn(key, v)
		}
	}
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	out := NewHeaders()
	h.Each(func(name, value string) {
		_ = out.Add(name, value)
	})
	return out
}

// InvalidHeaderError reports a header name rejected by RFC 7230 token
// rules, the Go-side analogue of lang_handler's Header::try_from failure.
type InvalidHeaderError struct {
	Name string
}

func (e *InvalidHeaderError) Error() string {
	return "httpvalue: invalid header name " + e.Name
}
