package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit", "trail.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entries := []Entry{
		{Actor: "admin@example.com", Action: "user.ban", Target: "7", Outcome: OutcomeOK},
		{Actor: "admin@example.com", Action: "product.delete", Target: "p-1", Outcome: OutcomeFailed, Detail: "server refused deletion"},
	}
	for i, e := range entries {
		e.Timestamp = time.Date(2026, 8, 1, 10, i, 0, 0, time.UTC)
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record(%d) error = %v", i, err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent() returned %d entries, want 2", len(got))
	}
	// Newest first.
	if got[0].Action != "product.delete" || got[1].Action != "user.ban" {
		t.Errorf("Recent() order = [%s, %s], want newest first", got[0].Action, got[1].Action)
	}
	if got[0].Outcome != OutcomeFailed || got[0].Detail == "" {
		t.Errorf("failed entry = %+v, want outcome failed with detail", got[0])
	}
}

func TestRecordFillsTimestamp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, Entry{Actor: "a", Action: "x", Target: "t", Outcome: OutcomeOK}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	got, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].Timestamp.IsZero() {
		t.Errorf("Recent() = %+v, want one entry with a timestamp", got)
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, Entry{Actor: "a", Action: "x", Target: "t", Outcome: OutcomeOK}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	got, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Recent(3) returned %d entries", len(got))
	}

	// Non-positive limit falls back to the default.
	got, err = s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0) error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("Recent(0) returned %d entries, want all 5", len(got))
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "audit.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}
