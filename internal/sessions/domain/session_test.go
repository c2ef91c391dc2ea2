package sessions

import (
	"testing"
	"time"
)

func TestSessionCovers(t *testing.T) {
	start := time.Date(2024, time.February, 12, 12, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	open := Session{ID: "s1", License: "AB-123-C", Street: "Hoofdstraat", StartAt: start}
	closed := open
	closed.EndAt = &end

	cases := []struct {
		name    string
		session Session
		at      time.Time
		want    bool
	}{
		{"open covers after start", open, start.Add(time.Hour), true},
		{"open excludes the start instant", open, start, false},
		{"open excludes before start", open, start.Add(-time.Minute), false},
		{"closed covers inside", closed, start.Add(time.Hour), true},
		{"closed covers the end instant", closed, end, true},
		{"closed excludes after end", closed, end.Add(time.Minute), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.session.Covers(tc.at); got != tc.want {
				t.Fatalf("Covers(%s) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestSessionOpen(t *testing.T) {
	start := time.Date(2024, time.February, 12, 12, 0, 0, 0, time.UTC)
	session := Session{ID: "s1", StartAt: start}
	if !session.Open() {
		t.Fatal("session without an end should be open")
	}
	end := start.Add(time.Hour)
	session.EndAt = &end
	if session.Open() {
		t.Fatal("session with an end should be closed")
	}
}
