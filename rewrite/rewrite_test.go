package rewrite_test

import (
	"net/url"
	"testing"

	"github.com/embedphp/embedphp/httpvalue"
	"github.com/embedphp/embedphp/rewrite"
)

func mustRequest(t *testing.T, raw string) *httpvalue.Request {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return httpvalue.NewRequest("GET", u, httpvalue.NewHeaders(), nil)
}

func TestPathRewriterReplacesMatchingPath(t *testing.T) {
	pr, err := rewrite.NewPathRewriter(`^/old$`, "/new.php")
	if err != nil {
		t.Fatal(err)
	}
	req := mustRequest(t, "http://h/old")
	out, err := pr.Rewrite(req, "/docroot")
	if err != nil {
		t.Fatal(err)
	}
	if out.URL().Path != "/new.php" {
		t.Fatalf("path = %q, want /new.php", out.URL().Path)
	}
}

func TestPathRewriterIdentityWhenNoMatch(t *testing.T) {
	pr, err := rewrite.NewPathRewriter(`^/old$`, "/new.php")
	if err != nil {
		t.Fatal(err)
	}
	req := mustRequest(t, "http://h/other")
	out, err := pr.Rewrite(req, "/docroot")
	if err != nil {
		t.Fatal(err)
	}
	if out.URL().Path != "/other" {
		t.Fatalf("path = %q, want unchanged /other", out.URL().Path)
	}
}

// TestIdentityRewriteMatchesNoRewriter covers invariant 7: applying an
// identity rewriter yields the same translated path as no rewriter at all.
func TestIdentityRewriteMatchesNoRewriter(t *testing.T) {
	identity := rewrite.Func(func(req *httpvalue.Request, _ string) (*httpvalue.Request, error) {
		return req, nil
	})
	req := mustRequest(t, "http://h/same")
	out, err := identity.Rewrite(req, "/docroot")
	if err != nil {
		t.Fatal(err)
	}
	if out.URL().Path != req.URL().Path {
		t.Fatalf("identity rewrite changed path: %q -> %q", req.URL().Path, out.URL().Path)
	}
}

func TestConditionalOnlyAppliesWhenConditionMatches(t *testing.T) {
	cond := &rewrite.MethodCondition{Method: "POST"}
	inner := &rewrite.PathRewriter{}
	re, err := rewrite.NewPathRewriter(`.*`, "/posted.php")
	if err != nil {
		t.Fatal(err)
	}
	inner = re
	c := &rewrite.Conditional{Cond: cond, Rewriter: inner}

	getReq := mustRequest(t, "http://h/x")
	out, err := c.Rewrite(getReq, "/docroot")
	if err != nil {
		t.Fatal(err)
	}
	if out.URL().Path != "/x" {
		t.Fatalf("expected GET request untouched, got %q", out.URL().Path)
	}

	postReq := httpvalue.NewRequestBuilder(getReq).Method("POST").Build()
	out, err = c.Rewrite(postReq, "/docroot")
	if err != nil {
		t.Fatal(err)
	}
	if out.URL().Path != "/posted.php" {
		t.Fatalf("expected POST request rewritten, got %q", out.URL().Path)
	}
}

func TestChainFirstMatchWins(t *testing.T) {
	first, _ := rewrite.NewPathRewriter(`^/a$`, "/first.php")
	second, _ := rewrite.NewPathRewriter(`^/a$`, "/second.php")
	chain := rewrite.Chain{
		&rewrite.Conditional{Cond: &rewrite.PathCondition{Pattern: first.Pattern}, Rewriter: first},
		&rewrite.Conditional{Cond: &rewrite.PathCondition{Pattern: second.Pattern}, Rewriter: second},
	}

	out, err := chain.Rewrite(mustRequest(t, "http://h/a"), "/docroot")
	if err != nil {
		t.Fatal(err)
	}
	if out.URL().Path != "/first.php" {
		t.Fatalf("expected first match to win, got %q", out.URL().Path)
	}
}
