package rewrite

import "github.com/embedphp/embedphp/httpvalue"

// HeaderRewriter sets or replaces a single header on the request.
type HeaderRewriter struct {
	Name  string
	Value string
}

func (h *HeaderRewriter) Rewrite(req *httpvalue.Request, _ string) (*httpvalue.Request, error) {
	headers := req.Headers().Clone()
	if err := headers.Set(h.Name, h.Value); err != nil {
		return nil, &Error{Message: "rewrite: " + err.Error()}
	}
	return httpvalue.NewRequestBuilder(req).Headers(headers).Build(), nil
}

// HeaderCondition matches when Name is present (Value empty) or equals
// Value exactly.
type HeaderCondition struct {
	Name  string
	Value string
}

func (c *HeaderCondition) Matches(req *httpvalue.Request, _ string) bool {
	v, ok := req.Headers().Get(c.Name)
	if !ok {
		return false
	}
	if c.Value == "" {
		return true
	}
	return v == c.Value
}

// MethodRewriter replaces the request method.
type MethodRewriter struct {
	Method string
}

func (m *MethodRewriter) Rewrite(req *httpvalue.Request, _ string) (*httpvalue.Request, error) {
	return httpvalue.NewRequestBuilder(req).Method(m.Method).Build(), nil
}

// MethodCondition matches when the request method equals Method.
type MethodCondition struct {
	Method string
}

func (c *MethodCondition) Matches(req *httpvalue.Request, _ string) bool {
	return req.Method() == c.Method
}
