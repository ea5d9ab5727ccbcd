package journal

import (
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	ID    int
	Value string
}

func TestAppendAndReplayRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := Open(StreamConfig{Root: dir, Name: "widgets", Mode: ModeFileBased, RollByDay: false})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := []record{{1, "a"}, {2, "b"}, {3, "c"}}
	for _, r := range want {
		if _, err := s.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(StreamConfig{Root: dir, Name: "widgets", Mode: ModeFileBased, RollByDay: false})
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	var got []record
	err = s2.ReplayAll(func() interface{} { return &record{} }, func(seq uint64, v interface{}) error {
		got = append(got, *v.(*record))
		return nil
	})
	if err != nil {
		t.Fatalf("ReplayAll: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("replayed %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReplayDiscardsTruncatedTailRecord(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := Open(StreamConfig{Root: dir, Name: "widgets", Mode: ModeFileBased, RollByDay: false})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Append(record{1, "a"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(dir, "widgets", "widgets.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Simulate a crash mid-write: append a frame header announcing a 99-byte
	// payload that never follows.
	truncated := append(data, []byte{0, 0, 0, 99, 1}...)
	if err := os.WriteFile(path, truncated, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s2, err := Open(StreamConfig{Root: dir, Name: "widgets", Mode: ModeFileBased, RollByDay: false})
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	var got []record
	err = s2.ReplayAll(func() interface{} { return &record{} }, func(seq uint64, v interface{}) error {
		got = append(got, *v.(*record))
		return nil
	})
	if err != nil {
		t.Fatalf("ReplayAll should discard a truncated tail, not error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the one well-formed record to survive, got %d", len(got))
	}
}

func TestStrategiesStreamDoesNotRollByDay(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := Open(StreamConfig{Root: dir, Name: "strategies", Mode: ModeFileBased, RollByDay: false})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	path := s.currentPath()
	if filepath.Base(path) != "strategies.log" {
		t.Fatalf("expected a fixed strategies.log filename, got %s", filepath.Base(path))
	}
}
