package httpvalue

// Response is the value built from a RequestContext once a script has run.
// Mirrors lang_handler's Response: status, headers, body, log, and an
// optional exception message.
type Response struct {
	Status    int
	Headers   *Headers
	Body      []byte
	Log       []byte
	Exception string
}

// ResponseBuilder accumulates response state across SAPI callbacks. It is
// owned by phpengine.RequestContext; append operations mirror lang_handler's
// ResponseBuilder::body_write/log_write (append-only, never truncate).
type ResponseBuilder struct {
	status    int
	headers   *Headers
	body      []byte
	log       []byte
	exception string
}

// NewResponseBuilder starts a builder with the default status (200), the
// way §4.5 specifies the interpreter's default response code.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{status: 200, headers: NewHeaders()}
}

func (b *ResponseBuilder) SetStatus(status int) { b.status = status }
func (b *ResponseBuilder) Status() int          { return b.status }

func (b *ResponseBuilder) AddHeader(name, value string) error {
	return b.headers.Add(name, value)
}

func (b *ResponseBuilder) SetHeader(name, value string) error {
	return b.headers.Set(name, value)
}

func (b *ResponseBuilder) Headers() *Headers { return b.headers }

func (b *ResponseBuilder) WriteBody(p []byte) {
	b.body = append(b.body, p...)
}

func (b *ResponseBuilder) WriteLog(p []byte) {
	b.log = append(b.log, p...)
	b.log = append(b.log, '\n')
}

func (b *ResponseBuilder) SetException(msg string) {
	b.exception = msg
}

func (b *ResponseBuilder) Exception() string { return b.exception }

// Build consumes the builder into a Response value.
func (b *ResponseBuilder) Build() *Response {
	return &Response{
		Status:    b.status,
		Headers:   b.headers,
		Body:      b.body,
		Log:       b.log,
		Exception: b.exception,
	}
}
