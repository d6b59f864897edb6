package httpvalue

import "net/url"

// Socket identifies one endpoint of a connection, used to populate
// SERVER_ADDR/SERVER_PORT and REMOTE_ADDR/REMOTE_PORT.
type Socket struct {
	Address string
	Port    int
}

// Request is the immutable external request carrier the core consumes. It
// is never mutated in place; RequestBuilder produces modified copies, the
// way lang_handler's RequestBuilder.extend() does.
type Request struct {
	method       string
	url          *url.URL
	headers      *Headers
	body         []byte
	localSocket  *Socket
	remoteSocket *Socket
}

// NewRequest constructs a Request. url must be absolute (scheme+host+path).
func NewRequest(method string, u *url.URL, headers *Headers, body []byte) *Request {
	if headers == nil {
		headers = NewHeaders()
	}
	return &Request{method: method, url: u, headers: headers, body: body}
}

func (r *Request) Method() string   { return r.method }
func (r *Request) URL() *url.URL    { return r.url }
func (r *Request) Headers() *Headers { return r.headers }
func (r *Request) Body() []byte     { return r.body }
func (r *Request) LocalSocket() *Socket  { return r.localSocket }
func (r *Request) RemoteSocket() *Socket { return r.remoteSocket }

// RequestBuilder mutates a copy of a Request, used by rewriters to produce
// a rewritten request without touching the original.
type RequestBuilder struct {
	req Request
}

// NewRequestBuilder seeds a builder from an existing request (or a zero
// value if base is nil).
func NewRequestBuilder(base *Request) *RequestBuilder {
	b := &RequestBuilder{}
	if base != nil {
		b.req = *base
		b.req.headers = base.headers.Clone()
	} else {
		b.req.headers = NewHeaders()
	}
	return b
}

func (b *RequestBuilder) Method(m string) *RequestBuilder { b.req.method = m; return b }
func (b *RequestBuilder) URL(u *url.URL) *RequestBuilder  { b.req.url = u; return b }
func (b *RequestBuilder) Headers(h *Headers) *RequestBuilder {
	b.req.headers = h
	return b
}
func (b *RequestBuilder) Body(body []byte) *RequestBuilder { b.req.body = body; return b }
func (b *RequestBuilder) LocalSocket(s *Socket) *RequestBuilder {
	b.req.localSocket = s
	return b
}
func (b *RequestBuilder) RemoteSocket(s *Socket) *RequestBuilder {
	b.req.remoteSocket = s
	return b
}

// Build produces the Request.
func (b *RequestBuilder) Build() *Request {
	out := b.req
	return &out
}
