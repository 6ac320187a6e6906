package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func openTestDB(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saves.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpenSQLite_Migrates(t *testing.T) {
	s, path := openTestDB(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query: %v", err)
	}
	testutil.AssertEqual(t, "schema version", version, currentSchemaVersion)

	// Reopening an up to date database is a no-op.
	s.Close()
	s2, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2.Close()
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestDB(t)
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	_, err := s.Load(ctx, "main")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = s.Previous(ctx, "main")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for previous, got %v", err)
	}

	if err := s.Save(ctx, "main", []byte("first")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err = s.Previous(ctx, "main")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no previous after one save, got %v", err)
	}

	if err := s.Save(ctx, "main", []byte("second")); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := s.Load(ctx, "main")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	testutil.AssertEqual(t, "data", string(data), "second")

	prev, err := s.Previous(ctx, "main")
	if err != nil {
		t.Fatalf("previous: %v", err)
	}
	testutil.AssertEqual(t, "previous", string(prev), "first")

	testutil.AssertErrorContains(t, s.Save(ctx, "../x", []byte("{}")), "must be alphanumeric")
}

func TestSQLiteStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestDB(t)
	s.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	for _, slot := range []string{"beta", "alpha"} {
		if err := s.Save(ctx, slot, []byte("{}")); err != nil {
			t.Fatalf("save %s: %v", slot, err)
		}
	}

	slots, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	testutil.AssertEqual(t, "count", len(slots), 2)
	testutil.AssertEqual(t, "ordered", slots[0].Name, "alpha")
	testutil.AssertEqual(t, "size", slots[0].Size, 2)
	testutil.AssertEqual(t, "updated", slots[0].Updated.UnixMilli(), int64(1_700_000_000_000))

	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	slots, _ = s.List(ctx)
	testutil.AssertEqual(t, "count after delete", len(slots), 1)
}
