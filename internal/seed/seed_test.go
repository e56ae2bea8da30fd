package seed

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/abira1/Academy-Management-System/internal/auth"
	"github.com/abira1/Academy-Management-System/internal/mirror"
	"github.com/abira1/Academy-Management-System/internal/storage"
	"github.com/abira1/Academy-Management-System/internal/storage/memory"
)

func startSet(t *testing.T, store storage.RecordStore) *mirror.Set {
	t.Helper()
	set := mirror.NewSet(store, auth.Hasher{Cost: 4}, mirror.Options{})
	if err := set.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(set.Stop)
	return set
}

func TestIfEmpty(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	set := startSet(t, store)

	seeded, err := IfEmpty(ctx, set, logger)
	if err != nil {
		t.Fatalf("IfEmpty() error: %v", err)
	}
	if !seeded {
		t.Fatal("IfEmpty() did not seed an empty ledger")
	}

	snap, err := store.Get(ctx, storage.Students)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range snap {
		if rec["studentId"] == "S-001" && rec["due"] != 5000.0 {
			t.Errorf("S-001 due = %v, want 5000", rec["due"])
		}
	}

	partners, err := store.Get(ctx, storage.Partners)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range partners {
		pw, _ := rec["password"].(string)
		if pw == "partner123" || !strings.HasPrefix(pw, "$2") {
			t.Errorf("stored partner password %q is not a bcrypt hash", pw)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(set.Partners.Snapshot()) == 0 || len(set.Expenses.Snapshot()) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("mirrors never saw the demo records")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A second start over the same store leaves the data alone.
	again, err := IfEmpty(ctx, startSet(t, store), logger)
	if err != nil {
		t.Fatalf("IfEmpty() error: %v", err)
	}
	if again {
		t.Error("IfEmpty() seeded a non-empty ledger")
	}
}

func TestIfEmptySkipsPartialLedger(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if _, err := store.Put(ctx, storage.Expenses, storage.Record{"item": "Chairs", "cost": 900.0, "date": "2024-01-03"}); err != nil {
		t.Fatal(err)
	}
	set := startSet(t, store)

	seeded, err := IfEmpty(ctx, set, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil || seeded {
		t.Fatalf("IfEmpty() = %v, %v; want false, nil", seeded, err)
	}
	if n := len(set.Students.Snapshot()); n != 0 {
		t.Errorf("students = %d, want 0", n)
	}
}
