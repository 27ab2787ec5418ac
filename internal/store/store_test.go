package store

import (
	"context"
	"path/filepath"
	"testing"

	"bitstorm/internal/config"
	"bitstorm/internal/database"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, zerolog.Nop())
}

func TestGet_MissingKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	value, found, err := s.Get(ctx, "never_set")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found || value != "" {
		t.Fatalf("expected absent, got found=%v value=%q", found, value)
	}
}

func TestSetGet_Roundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", `{"a":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, found, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || value != `{"a":1}` {
		t.Fatalf("got found=%v value=%q", found, value)
	}
}

func TestSet_Overwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", "second"); err != nil {
		t.Fatalf("set again: %v", err)
	}
	value, _, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "second" {
		t.Fatalf("got %q want %q", value, "second")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Fatal("key still present after delete")
	}

	// deleting again is fine
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete absent key: %v", err)
	}
}
