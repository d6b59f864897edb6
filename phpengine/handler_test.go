//go:build !php_embed

package phpengine_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/embedphp/embedphp/httpvalue"
	"github.com/embedphp/embedphp/phpengine"
	"github.com/embedphp/embedphp/rewrite"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// TestHelloWorld covers S1.
func TestHelloWorld(t *testing.T) {
	dir := mockRoot(t, map[string]string{
		"index.php": `<?php echo "Hello, World!"; ?>`,
	})
	h, err := phpengine.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	req := httpvalue.NewRequest("GET", mustURL(t, "http://h/"), httpvalue.NewHeaders(), nil)
	resp, err := h.Handle(req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != "Hello, World!" {
		t.Errorf("body = %q, want %q", resp.Body, "Hello, World!")
	}
	if !resp.Headers.Has("Content-Type") {
		t.Error("expected Content-Type header to be present")
	}
}

// TestEchoBody covers S2.
func TestEchoBody(t *testing.T) {
	dir := mockRoot(t, map[string]string{
		"echo.php": `<?php echo file_get_contents("php://input"); ?>`,
	})
	h, err := phpengine.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	headers := httpvalue.NewHeaders()
	_ = headers.Set("Content-Length", "13")
	req := httpvalue.NewRequest("POST", mustURL(t, "http://h/echo.php"), headers, []byte("Hello, World!"))
	resp, err := h.Handle(req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != "Hello, World!" {
		t.Errorf("body = %q, want %q", resp.Body, "Hello, World!")
	}
}

// TestStatusAndCustomHeader covers S3.
func TestStatusAndCustomHeader(t *testing.T) {
	dir := mockRoot(t, map[string]string{
		"t.php": `<?php http_response_code(418); header("X-Teapot: yes"); echo "short"; ?>`,
	})
	h, err := phpengine.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	req := httpvalue.NewRequest("GET", mustURL(t, "http://h/t.php"), httpvalue.NewHeaders(), nil)
	resp, err := h.Handle(req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != 418 {
		t.Errorf("status = %d, want 418", resp.Status)
	}
	if v, ok := resp.Headers.Get("X-Teapot"); !ok || v != "yes" {
		t.Errorf("X-Teapot header = %q, %v", v, ok)
	}
	if string(resp.Body) != "short" {
		t.Errorf("body = %q, want %q", resp.Body, "short")
	}
}

// TestNotFound covers S4, both error-translation modes.
func TestNotFound(t *testing.T) {
	dir := mockRoot(t, map[string]string{})

	h, err := phpengine.New(dir, phpengine.WithThrowRequestErrors(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	req := httpvalue.NewRequest("GET", mustURL(t, "http://h/missing.php"), httpvalue.NewHeaders(), nil)
	_, err = h.Handle(req)
	reqErr, ok := err.(*phpengine.RequestError)
	if !ok || reqErr.Kind != phpengine.ScriptNotFound {
		t.Fatalf("expected ScriptNotFound in throw mode, got %v", err)
	}

	h2, err := phpengine.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h2.Close()

	resp, err := h2.Handle(req)
	if err != nil {
		t.Fatalf("Handle (synthetic mode): %v", err)
	}
	if resp.Status != 404 {
		t.Errorf("status = %d, want 404", resp.Status)
	}
	if string(resp.Body) != "Not Found" {
		t.Errorf("body = %q, want %q", resp.Body, "Not Found")
	}
}

// TestRewriter covers S5: REQUEST_URI reflects the original, pre-rewrite
// path even though the rewritten script is what actually runs.
func TestRewriter(t *testing.T) {
	dir := mockRoot(t, map[string]string{
		"new.php": `<?php echo $_SERVER["REQUEST_URI"]; ?>`,
	})

	pathRewriter, err := rewrite.NewPathRewriter(`^/old$`, "/new.php")
	if err != nil {
		t.Fatalf("NewPathRewriter: %v", err)
	}
	h, err := phpengine.New(dir, phpengine.WithRewriter(pathRewriter))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	req := httpvalue.NewRequest("GET", mustURL(t, "http://h/old"), httpvalue.NewHeaders(), nil)
	resp, err := h.Handle(req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if resp.Status != 200 {
		t.Errorf("status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != "/old" {
		t.Errorf("body = %q, want %q", resp.Body, "/old")
	}
}

// TestMultiValuedHeader covers S6.
func TestMultiValuedHeader(t *testing.T) {
	dir := mockRoot(t, map[string]string{
		"headers.php": `<?php foreach (apache_request_headers() as $k=>$v) echo "$k:$v\n"; ?>`,
	})
	h, err := phpengine.New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	headers := httpvalue.NewHeaders()
	_ = headers.Add("Accept", "text/html")
	_ = headers.Add("Accept", "application/json")
	req := httpvalue.NewRequest("GET", mustURL(t, "http://h/headers.php"), headers, nil)
	resp, err := h.Handle(req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(string(resp.Body), "Accept:") {
		t.Errorf("expected Accept header reflected in output, got %q", resp.Body)
	}
}
