package rewrite

import (
	"regexp"

	"github.com/embedphp/embedphp/httpvalue"
)

// PathRewriter replaces a request's URL path when it matches Pattern,
// rewriting to Replacement (supports $1-style capture group references via
// regexp.ReplaceAllString). Grounded on
// original_source/crates/php/src/rewriter_impl.rs's re-exported
// PathRewriter from http_rewriter.
type PathRewriter struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// NewPathRewriter compiles pattern and builds a PathRewriter.
func NewPathRewriter(pattern, replacement string) (*PathRewriter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &Error{Message: "rewrite: invalid path pattern: " + err.Error()}
	}
	return &PathRewriter{Pattern: re, Replacement: replacement}, nil
}

func (p *PathRewriter) Rewrite(req *httpvalue.Request, _ string) (*httpvalue.Request, error) {
	if !p.Pattern.MatchString(req.URL().Path) {
		return req, nil
	}
	newPath := p.Pattern.ReplaceAllString(req.URL().Path, p.Replacement)
	u := *req.URL()
	u.Path = newPath
	return httpvalue.NewRequestBuilder(req).URL(&u).Build(), nil
}

// PathCondition matches when the request path matches Pattern.
type PathCondition struct {
	Pattern *regexp.Regexp
}

func (c *PathCondition) Matches(req *httpvalue.Request, _ string) bool {
	return c.Pattern.MatchString(req.URL().Path)
}
