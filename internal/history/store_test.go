package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	entries := []Entry{
		{CreatedAt: base, Reference: "song.wav", User: "take1.wav", Score: 40, Accuracy: 0.4, Compared: 10, Matches: 4, Complete: true, ToleranceHz: 50, SampleRate: 44100},
		{CreatedAt: base.Add(time.Minute), Reference: "song.wav", User: "take2.wav", Score: 80, Accuracy: 0.8, Compared: 10, Matches: 8, Complete: true, ToleranceHz: 50, SampleRate: 44100},
		{CreatedAt: base.Add(2 * time.Minute), Reference: "other.wav", User: "take1.wav", Score: 95, Accuracy: 0.95, Compared: 20, Matches: 19, Complete: false, ToleranceHz: 30, SampleRate: 48000},
	}
	for i, e := range entries {
		id, err := s.Save(ctx, e)
		if err != nil {
			t.Fatalf("Save(%d) error = %v", i, err)
		}
		if id != int64(i+1) {
			t.Fatalf("Save(%d) id = %d", i, id)
		}
	}

	got, err := s.Recent(ctx, Query{})
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d entries", len(got))
	}
	if got[0].User != "take1.wav" || got[0].Reference != "other.wav" || got[0].Complete {
		t.Fatalf("newest entry = %+v", got[0])
	}
	want := entries[1]
	want.ID = 2
	if !got[1].CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", got[1].CreatedAt, want.CreatedAt)
	}
	got[1].CreatedAt = want.CreatedAt
	if got[1] != want {
		t.Fatalf("entry = %+v, want %+v", got[1], want)
	}

	filtered, err := s.Recent(ctx, Query{Reference: "song.wav", Limit: 1})
	if err != nil {
		t.Fatalf("Recent(filter) error = %v", err)
	}
	if len(filtered) != 1 || filtered[0].User != "take2.wav" {
		t.Fatalf("filtered = %+v", filtered)
	}
}

func TestSaveDefaultsCreatedAt(t *testing.T) {
	s := openStore(t)
	fixed := time.UnixMilli(1_650_000_000_123)
	s.now = func() time.Time { return fixed }

	if _, err := s.Save(context.Background(), Entry{Reference: "r", User: "u"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Recent(context.Background(), Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].CreatedAt.Equal(fixed) {
		t.Fatalf("entries = %+v", got)
	}
}

func TestBest(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if _, ok, err := s.Best(ctx, "song.wav"); err != nil || ok {
		t.Fatalf("Best() on empty store = %v, %v", ok, err)
	}

	for _, e := range []Entry{
		{Reference: "song.wav", User: "a", Score: 70, Complete: true},
		{Reference: "song.wav", User: "b", Score: 99, Complete: false},
		{Reference: "song.wav", User: "c", Score: 85, Complete: true},
		{Reference: "other.wav", User: "d", Score: 100, Complete: true},
	} {
		if _, err := s.Save(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	best, ok, err := s.Best(ctx, "song.wav")
	if err != nil || !ok {
		t.Fatalf("Best() = %v, %v", ok, err)
	}
	if best.User != "c" || best.Score != 85 {
		t.Fatalf("Best() = %+v, want take c with 85", best)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(context.Background(), Entry{Reference: "r", User: "u", Score: 12}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Recent(context.Background(), Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Score != 12 {
		t.Fatalf("entries after reopen = %+v", got)
	}
}
