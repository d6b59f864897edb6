package rewrite

import "github.com/embedphp/embedphp/httpvalue"

// Conditional pairs a Condition with a Rewriter, applying the rewrite only
// when the condition matches. Grounded on
// original_source/crates/lang_handler/src/rewrite/conditional_rewriter.rs.
type Conditional struct {
	Cond     Condition
	Rewriter Rewriter
}

func (c *Conditional) Rewrite(req *httpvalue.Request, docroot string) (*httpvalue.Request, error) {
	if c.Cond != nil && !c.Cond.Matches(req, docroot) {
		return req, nil
	}
	return c.Rewriter.Rewrite(req, docroot)
}

// Chain applies rewriters in order, first-match-wins: the first whose
// Condition (when it is a *Conditional) matches is applied and the chain
// stops; an unconditional entry always matches. Grounded on
// original_source/crates/lang_handler/src/rewrite/mod.rs's RewriterSet.
type Chain []Rewriter

func (c Chain) Rewrite(req *httpvalue.Request, docroot string) (*httpvalue.Request, error) {
	for _, r := range c {
		if cond, ok := r.(*Conditional); ok {
			if cond.Cond != nil && !cond.Cond.Matches(req, docroot) {
				continue
			}
			return cond.Rewriter.Rewrite(req, docroot)
		}
		out, err := r.Rewrite(req, docroot)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return req, nil
}

// And combines conditions: all must match.
type And []Condition

func (a And) Matches(req *httpvalue.Request, docroot string) bool {
	for _, c := range a {
		if !c.Matches(req, docroot) {
			return false
		}
	}
	return true
}

// Or combines conditions: any may match.
type Or []Condition

func (o Or) Matches(req *httpvalue.Request, docroot string) bool {
	for _, c := range o {
		if c.Matches(req, docroot) {
			return true
		}
	}
	return false
}
