//go:build !php_embed

package phpengine

import "sync"

// Sapi is the fallback, pure-Go stand-in for the real libphp SAPI used
// when the php_embed build tag is absent — the same role
// sadewadee-maboo/internal/phpengine/engine_nocgo.go plays for its Engine
// type: it lets the rest of the module build and be tested without a
// linked interpreter. Rather than returning a static placeholder, it runs
// a minimal PHP-script interpreter (miniphp.go) that understands exactly
// the handful of constructs the spec's literal scenarios exercise (echo,
// http_response_code, header, file_get_contents("php://input"),
// apache_request_headers()). It is not, and does not attempt to be, a PHP
// engine.
type Sapi struct {
	mu         sync.Mutex
	exception  string
	hasExcept  bool
}

// ensureSapi constructs (or reuses) the process-wide Sapi. iniOverrides is
// accepted for signature parity with the php_embed build but ignored here:
// the mini interpreter has no ini subsystem to configure.
func ensureSapi(iniOverrides map[string]string) (*Sapi, error) {
	return acquireSapi(func() (*Sapi, error) {
		return &Sapi{}, nil
	})
}

func (s *Sapi) release() error {
	return releaseSapi(func() error { return nil })
}

// startup performs the per-thread-then-per-request init §4.6 describes.
// The stub has no per-thread state to initialize.
func (s *Sapi) startup() error {
	return nil
}

type requestScope struct{}

func (s *Sapi) newRequestScope() (*requestScope, error) {
	return &requestScope{}, nil
}

func (rs *requestScope) close() {}

type fileHandleScope struct {
	path string
}

func (s *Sapi) newFileHandleScope(path string) (*fileHandleScope, error) {
	return &fileHandleScope{path: path}, nil
}

func (fhs *fileHandleScope) close() {}

func (s *Sapi) setRequestInfo(ctx *RequestContext, info requestInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasExcept = false
	s.exception = ""
	ctx.applyRequestInfo(info)
	ctx.SetResponseStatus(200)
	return nil
}

// execute runs the translated script through the mini interpreter,
// routing apache_request_headers()/$_SERVER reads and echo/header/
// http_response_code writes through the currently installed
// RequestContext exactly as the real SAPI callbacks would.
func (s *Sapi) execute(fhs *fileHandleScope) (bailout bool) {
	ctx := currentContext()
	if ctx == nil {
		return false
	}
	err := runMiniPHP(fhs.path, ctx)
	if err == nil {
		return false
	}
	if err == errBailout {
		return true
	}
	s.mu.Lock()
	s.hasExcept = true
	s.exception = err.Error()
	s.mu.Unlock()
	return false
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
	return "text/html; charset=UTF-8"
}

func (s *Sapi) pendingException() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exception, s.hasExcept
}
