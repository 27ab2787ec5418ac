package service

import (
	"context"
	"path/filepath"
	"testing"

	"bitstorm/internal/config"
	"bitstorm/internal/constants"
	"bitstorm/internal/database"
	"bitstorm/internal/store"

	"github.com/rs/zerolog"
)

func newVisitorService(t *testing.T) (*VisitorService, *store.Store) {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	st := store.New(db, zerolog.Nop())
	return NewVisitorService(st, zerolog.Nop()), st
}

func TestCount_NewAndRepeatSessions(t *testing.T) {
	svc, _ := newVisitorService(t)
	ctx := context.Background()

	total, isNew, err := svc.Count(ctx, "session-a")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 || !isNew {
		t.Fatalf("total=%d new=%v", total, isNew)
	}

	total, isNew, err = svc.Count(ctx, "session-a")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 || isNew {
		t.Fatalf("repeat session counted again: total=%d new=%v", total, isNew)
	}

	total, isNew, err = svc.Count(ctx, "session-b")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 || !isNew {
		t.Fatalf("total=%d new=%v", total, isNew)
	}
}

func TestCount_CorruptStoredTotalResets(t *testing.T) {
	svc, st := newVisitorService(t)
	ctx := context.Background()

	if err := st.Set(ctx, constants.StoreKeyVisitorCount, "not-a-number"); err != nil {
		t.Fatalf("set: %v", err)
	}

	total, _, err := svc.Count(ctx, "session-a")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Fatalf("total = %d, want reset to 1", total)
	}
}

func TestFormatCount(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1532, "1.5K"},
		{999999, "1000.0K"},
		{1000000, "1.0M"},
		{2100000, "2.1M"},
	}
	for _, c := range cases {
		if got := FormatCount(c.in); got != c.want {
			t.Errorf("FormatCount(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
