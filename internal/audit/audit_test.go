package audit

import (
	"context"
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	first := NewID()
	second := NewID()
	if !strings.HasPrefix(first, "audit-") {
		t.Fatalf("unexpected id %q", first)
	}
	if first == second {
		t.Fatal("ids should be unique")
	}
}

func TestDigestJSON(t *testing.T) {
	if got := DigestJSON(nil); got != "" {
		t.Fatalf("empty payload should digest to empty, got %q", got)
	}
	payload := []byte(`{"license":"AB-123-C"}`)
	first := DigestJSON(payload)
	if len(first) != 64 {
		t.Fatalf("expected a sha256 hex digest, got %q", first)
	}
	if DigestJSON(payload) != first {
		t.Fatal("digest should be deterministic")
	}
	if DigestJSON([]byte(`{"license":"XY-987-Z"}`)) == first {
		t.Fatal("different payloads should not collide")
	}
}

func TestNopLogger(t *testing.T) {
	if err := (Nop{}).Log(context.Background(), Entry{Action: "session.start"}); err != nil {
		t.Fatalf("nop logger should never fail: %v", err)
	}
}
