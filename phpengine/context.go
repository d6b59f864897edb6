package phpengine

import (
	"github.com/embedphp/embedphp/httpvalue"
)

// RequestContext is the per-request state object (C4): owned request
// parts, a consumable copy of the request body, and the accumulated
// response under construction. It is installed into the engine's
// thread-local server-context slot for the lifetime of one handle() call
// and must never be held across a call back into the engine.
type RequestContext struct {
	request       *httpvalue.Request
	remainingBody []byte
	response      *httpvalue.ResponseBuilder
	docroot       string
	info          requestInfo
}

// forRequest constructs a new context and installs it into the current
// thread's server-context slot, transferring ownership to the engine for
// the duration of the call. Panics if a context is already installed on
// this thread — that would indicate reentrant use of one thread, a defect
// per §4.6's "any attempt at reentrancy is a defect".
func forRequest(req *httpvalue.Request, docroot string) *RequestContext {
	ctx := &RequestContext{
		request:       req,
		remainingBody: append([]byte(nil), req.Body()...),
		response:      httpvalue.NewResponseBuilder(),
		docroot:       docroot,
	}
	installContext(ctx)
	return ctx
}

// currentContext returns the context installed on the calling thread, or
// nil if none is installed. Safe to call from any SAPI callback.
func currentContext() *RequestContext {
	return currentInstalledContext()
}

// reclaim swaps the server-context slot to nil and returns the owning
// context, or nil if none was installed. Called exactly once, after the
// bailout-catching primitive returns (§4.8 step 13, invariant 3).
func reclaim() *RequestContext {
	return reclaimInstalledContext()
}

// Request returns the (possibly rewritten) request this context was built
// from.
func (c *RequestContext) Request() *httpvalue.Request { return c.request }

// Docroot returns the docroot this request is being served from.
func (c *RequestContext) Docroot() string { return c.docroot }

// RequestBodyLen returns the number of unread body bytes remaining.
// Monotonically non-increasing across ReadPost calls (invariant 2).
func (c *RequestContext) RequestBodyLen() int { return len(c.remainingBody) }

// ReadPost consumes up to len(buf) bytes from the front of the remaining
// request body into buf, returning the number of bytes copied. Exhaustion
// returns 0. This is the only path request body data flows through to the
// running script (§4.5 read_post).
func (c *RequestContext) ReadPost(buf []byte) int {
	if c == nil || len(buf) == 0 || len(c.remainingBody) == 0 {
		return 0
	}
	n := copy(buf, c.remainingBody)
	c.remainingBody = c.remainingBody[n:]
	return n
}

// WriteResponseBody appends to the accumulated response body (ub_write).
func (c *RequestContext) WriteResponseBody(p []byte) {
	if c == nil {
		return
	}
	c.response.WriteBody(p)
}

// WriteResponseLog appends a line to the accumulated response log
// (log_message), followed by a newline.
func (c *RequestContext) WriteResponseLog(p []byte) {
	if c == nil {
		return
	}
	c.response.WriteLog(p)
}

// AddResponseHeader appends a response header, preserving multi-valued
// headers (send_header).
func (c *RequestContext) AddResponseHeader(name, value string) error {
	if c == nil {
		return nil
	}
	return c.response.AddHeader(name, value)
}

// SetResponseHeader replaces all values of a response header. Used by the
// handler's own finalization step (§4.8 step 12) rather than the send_header
// callback, which always appends.
func (c *RequestContext) SetResponseHeader(name, value string) error {
	if c == nil {
		return nil
	}
	return c.response.SetHeader(name, value)
}

// SetResponseStatus replaces the response status. Callable repeatedly;
// only the final call's value is observed (invariant 8).
func (c *RequestContext) SetResponseStatus(status int) {
	if c == nil {
		return
	}
	c.response.SetStatus(status)
}

// ResponseStatus returns the currently accumulated status.
func (c *RequestContext) ResponseStatus() int {
	if c == nil {
		return 0
	}
	return c.response.Status()
}

// SetResponseException records the pending exception's message.
func (c *RequestContext) SetResponseException(msg string) {
	if c == nil {
		return
	}
	c.response.SetException(msg)
}

// BuildResponse consumes the context's accumulated response state into a
// Response value.
func (c *RequestContext) BuildResponse() *httpvalue.Response {
	return c.response.Build()
}

// applyRequestInfo stores the populated request-info struct (§4.8 step 7)
// on the context so register_server_variables can read it without
// re-deriving request_uri/path_translated from the (possibly rewritten)
// request.
func (c *RequestContext) applyRequestInfo(info requestInfo) {
	c.info = info
}

// fullRemainingBody drains and returns every remaining request body byte,
// for callers (like the mini interpreter's file_get_contents("php://input"))
// that want the whole body rather than a bounded read_post chunk.
func (c *RequestContext) fullRemainingBody() []byte {
	buf := make([]byte, len(c.remainingBody))
	c.ReadPost(buf)
	return buf
}

// responseHeaders exposes the accumulated response header multi-map, from
// which the Content-Type finalization step reads any script-set
// Content-Type. apache_request_headers() reads the *request* headers
// instead.
func (c *RequestContext) responseHeaders() *httpvalue.Headers {
	return c.response.Headers()
}
