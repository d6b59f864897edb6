package phpengine

import (
	"os"
	"path/filepath"

	"github.com/embedphp/embedphp/httpvalue"
	"github.com/embedphp/embedphp/rewrite"
)

// Handler is the public entrypoint (C8): owns a canonicalized docroot, an
// argv vector, a shared Sapi handle, and an optional rewriter. One Handler
// may be shared across threads; Handle blocks the calling thread for the
// duration of one request (§4.8 concurrency contract).
type Handler struct {
	docroot            string
	argv               []string
	rewriter           rewrite.Rewriter
	sapi               *Sapi
	throwRequestErrors bool
	iniOverrides       map[string]string
}

// Option configures a Handler at construction.
type Option func(*Handler)

// WithRewriter attaches a rewrite.Rewriter applied once per request before
// path translation. A nil rewriter (the default) is the identity.
func WithRewriter(r rewrite.Rewriter) Option {
	return func(h *Handler) { h.rewriter = r }
}

// WithArgv sets the argv vector exposed to the script via $_SERVER/argv
// handling. Defaults to empty.
func WithArgv(argv []string) Option {
	return func(h *Handler) { h.argv = argv }
}

// WithThrowRequestErrors controls the error-translation mode (§7). When
// false (the default mirrors "throw_request_errors=false" from the spec's
// discussion), ScriptNotFound becomes a synthetic 404 and any other
// request-time error becomes a synthetic 500; when true, Handle returns
// the typed *RequestError as-is.
func WithThrowRequestErrors(v bool) Option {
	return func(h *Handler) { h.throwRequestErrors = v }
}

// WithIniOverrides merges the given php.ini directives over iniDefaults
// (§4.5) when the process-wide interpreter is first constructed. Because
// the interpreter is a process-wide singleton (C6), only the overrides
// passed to whichever Handler first triggers construction take effect;
// later Handlers sharing the already-running Sapi get no chance to
// change its ini.
func WithIniOverrides(overrides map[string]string) Option {
	return func(h *Handler) { h.iniOverrides = overrides }
}

// New constructs a Handler. docroot is canonicalized and must already
// exist as a directory; the shared Sapi handle is acquired via the
// process-wide weak cache (C6).
func New(docroot string, opts ...Option) (*Handler, error) {
	abs, err := filepath.Abs(docroot)
	if err != nil {
		return nil, &StartError{Kind: DocRootNotFound, Path: docroot}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, &StartError{Kind: DocRootNotFound, Path: docroot}
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return nil, &StartError{Kind: DocRootNotFound, Path: docroot}
	}

	h := &Handler{docroot: resolved, throwRequestErrors: false}
	for _, opt := range opts {
		opt(h)
	}

	sapi, err := ensureSapi(h.iniOverrides)
	if err != nil {
		return nil, &StartError{Kind: SapiNotInitialized}
	}
	h.sapi = sapi
	return h, nil
}

// Docroot returns the canonicalized docroot this handler serves from.
func (h *Handler) Docroot() string { return h.docroot }

// Close releases this handler's reference on the shared Sapi handle. Once
// the last Handler referencing a Sapi is closed, the interpreter and SAPI
// are torn down (C6 drop order).
func (h *Handler) Close() error {
	return h.sapi.release()
}

// Handle runs one request end-to-end through the 13-step pipeline
// described in §4.8: sapi startup, rewrite, path translation, string
// duplication, context installation, request-info population, request
// scope entry, bailout-wrapped script execution, exception/content-type
// finalization, context reclaim, response assembly.
func (h *Handler) Handle(req *httpvalue.Request) (*httpvalue.Response, error) {
	resp, err := h.handle(req)
	if err == nil || h.throwRequestErrors {
		return resp, err
	}

	reqErr, ok := err.(*RequestError)
	if !ok {
		return resp, err
	}
	switch reqErr.Kind {
	case ScriptNotFound:
		return syntheticResponse(404, "Not Found"), nil
	default:
		return syntheticResponse(500, "Internal Server Error"), nil
	}
}

func syntheticResponse(status int, body string) *httpvalue.Response {
	headers := httpvalue.NewHeaders()
	_ = headers.Set("Content-Type", "text/plain")
	return &httpvalue.Response{Status: status, Headers: headers, Body: []byte(body)}
}

func (h *Handler) handle(req *httpvalue.Request) (*httpvalue.Response, error) {
	// Step 1: per-thread/per-request sapi startup.
	if err := h.sapi.startup(); err != nil {
		return nil, &RequestError{Kind: SapiNotStarted, Err: err}
	}

	// Step 2: capture pre-rewrite URI; this is what REQUEST_URI reflects,
	// per §9's normative resolution of the original-vs-rewritten question.
	originalURI := req.URL().Path
	if req.URL().RawQuery != "" {
		originalURI = req.URL().Path + "?" + req.URL().RawQuery
	}

	// Step 3: apply optional rewriter.
	rewritten := req
	if h.rewriter != nil {
		r, err := h.rewriter.Rewrite(req, h.docroot)
		if err != nil {
			return nil, &RequestError{Kind: RequestRewriteError, Message: err.Error(), Err: err}
		}
		rewritten = r
	}

	// Step 4: translate the rewritten URI to an on-disk script.
	scriptPath, err := translatePath(h.docroot, rewritten.URL().Path)
	if err != nil {
		return nil, err
	}

	// Step 5/6/7: install context, populate request-info. String
	// duplication into interpreter memory happens inside setRequestInfo on
	// the cgo build; the nocgo build has no separate allocator step.
	ctx := forRequest(rewritten, h.docroot)

	contentType, _ := rewritten.Headers().Get("Content-Type")
	cookie, _ := rewritten.Headers().Get("Cookie")
	contentLength := 0
	if cl, ok := rewritten.Headers().Get("Content-Length"); ok {
		if n, convErr := parseContentLength(cl); convErr == nil {
			contentLength = n
		}
	}

	info := requestInfo{
		protoNum:       httpProto11,
		argc:           len(h.argv),
		argv:           h.argv,
		headersRead:    false,
		requestMethod:  rewritten.Method(),
		queryString:    rewritten.URL().RawQuery,
		contentType:    contentType,
		cookieData:     cookie,
		requestURI:     originalURI,
		pathTranslated: scriptPath,
		contentLength:  contentLength,
	}
	if err := h.sapi.setRequestInfo(ctx, info); err != nil {
		reclaim()
		return nil, &RequestError{Kind: FailedToSetRequestInfo, Name: "request_info", Err: err}
	}

	// Step 8: enter request scope (RAII-style, paired teardown guaranteed
	// even on bailout).
	scope, err := h.sapi.newRequestScope()
	if err != nil {
		reclaim()
		return nil, &RequestError{Kind: SapiRequestNotStarted, Err: err}
	}
	defer scope.close()

	// Step 9: file handle scope + bailout-wrapped execution.
	fhs, err := h.sapi.newFileHandleScope(scriptPath)
	if err != nil {
		reclaim()
		return nil, &RequestError{Kind: ResponseBuildError, Err: err}
	}
	bailout := h.sapi.execute(fhs)
	fhs.close()

	if bailout {
		ctx.SetResponseStatus(500)
		built := reclaim()
		if built == nil {
			return nil, &RequestError{Kind: Bailout}
		}
		return nil, &RequestError{Kind: Bailout}
	}

	// Step 10: pending exception.
	if msg, hasExc := h.sapi.pendingException(); hasExc {
		ctx.SetResponseStatus(500)
		ctx.SetResponseException(msg)
		reclaim()
		return nil, &RequestError{Kind: Exception, Message: msg}
	}

	// Step 11: status + content type.
	status := h.sapi.resultStatus()
	contentTypeOut, ok := h.sapi.resultContentType()
	if !ok {
		contentTypeOut = h.sapi.defaultContentType()
	}
	if contentTypeOut == "" {
		reclaim()
		return nil, &RequestError{Kind: FailedToDetermineContentType}
	}

	// Step 12: finalize status + Content-Type on the context.
	ctx.SetResponseStatus(status)
	_ = ctx.SetResponseHeader("Content-Type", contentTypeOut)

	// Step 13: reclaim + build response.
	built := reclaim()
	if built == nil {
		return nil, &RequestError{Kind: RequestContextUnavailable}
	}
	return built.BuildResponse(), nil
}

func parseContentLength(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, &RequestError{Kind: CStringEncodeFailed, Message: s}
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
