package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entry records one mutating operation on the parking API.
type Entry struct {
	ID            string
	Action        string
	License       string
	ResourceType  string
	ResourceID    string
	Metadata      json.RawMessage
	PayloadDigest string
	CreatedAt     time.Time
}

// Logger writes audit entries. Audit is best effort: callers log failures
// and carry on, they never fail the operation being audited.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	return "audit-" + uuid.NewString()
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Nop discards entries. Used when auditing is disabled and in tests.
type Nop struct{}

// Log implements Logger.
func (Nop) Log(ctx context.Context, entry Entry) error { return nil }
