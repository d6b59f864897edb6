package httpvalue_test

import (
	"reflect"
	"testing"

	"github.com/embedphp/embedphp/httpvalue"
)

func TestHeadersAddPreservesOrder(t *testing.T) {
	h := httpvalue.NewHeaders()
	_ = h.Add("X", "a")
	_ = h.Add("X", "b")

	if got := h.GetAll("X"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("GetAll = %v, want [a b]", got)
	}
	if got, ok := h.Get("X"); !ok || got != "b" {
		t.Fatalf("Get = %q, %v, want b, true", got, ok)
	}
	if got, ok := h.GetLine("X"); !ok || got != "a, b" {
		t.Fatalf("GetLine = %q, %v, want \"a, b\", true", got, ok)
	}
}

func TestHeadersSetReplaces(t *testing.T) {
	h := httpvalue.NewHeaders()
	_ = h.Add("X", "a")
	_ = h.Set("X", "b")
	if got := h.GetAll("X"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("GetAll after Set = %v, want [b]", got)
	}
}

func TestHeadersCaseInsensitive(t *testing.T) {
	h := httpvalue.NewHeaders()
	_ = h.Add("content-type", "text/plain")
	if !h.Has("Content-Type") {
		t.Fatal("expected case-insensitive Has to find content-type")
	}
}

func TestHeadersRemoveAndClear(t *testing.T) {
	h := httpvalue.NewHeaders()
	_ = h.Add("X", "a")
	_ = h.Add("Y", "b")
	h.Remove("X")
	if h.Has("X") {
		t.Fatal("expected X removed")
	}
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", h.Len())
	}
}

func TestHeadersRejectsInvalidName(t *testing.T) {
	h := httpvalue.NewHeaders()
	if err := h.Add("bad name\x00", "v"); err == nil {
		t.Fatal("expected error for invalid header name")
	}
}

func TestHeadersEachYieldsEveryPair(t *testing.T) {
	h := httpvalue.NewHeaders()
	_ = h.Add("Accept", "text/html")
	_ = h.Add("Accept", "application/json")
	_ = h.Add("Host", "example.com")

	var pairs [][2]string
	h.Each(func(name, value string) {
		pairs = append(pairs, [2]string{name, value})
	})
	if len(pairs) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(pairs))
	}
}
