// Package rewrite provides the contract the embedded PHP core consumes
// from an external rewrite engine (C3), plus a handful of concrete
// rewriters and combinators grounded on original_source's
// lang_handler::rewrite and http_rewriter crates. None of this is part of
// the core's contract surface; phpengine only calls the Rewriter interface.
package rewrite

import "github.com/embedphp/embedphp/httpvalue"

// Rewriter rewrites a request before path translation. docroot is passed so
// path-based rewriters can inspect the filesystem (e.g. "does this path
// exist under docroot").
type Rewriter interface {
	Rewrite(req *httpvalue.Request, docroot string) (*httpvalue.Request, error)
}

// Error reports a rewrite failure; the core wraps it as
// phpengine.RequestRewriteError.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Func adapts a plain function to the Rewriter interface, the Go analogue
// of lang_handler's blanket impl<F: Fn(Request) -> Request> Rewriter for F.
type Func func(req *httpvalue.Request, docroot string) (*httpvalue.Request, error)

func (f Func) Rewrite(req *httpvalue.Request, docroot string) (*httpvalue.Request, error) {
	return f(req, docroot)
}

// Condition decides whether a Rewriter should apply, mirroring
// lang_handler's Condition trait (PathCondition, HeaderCondition,
// MethodCondition, Existence/NonExistenceCondition).
type Condition interface {
	Matches(req *httpvalue.Request, docroot string) bool
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func(req *httpvalue.Request, docroot string) bool

func (f ConditionFunc) Matches(req *httpvalue.Request, docroot string) bool {
	return f(req, docroot)
}
