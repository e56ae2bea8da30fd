package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abira1/Academy-Management-System/internal/storage"
	"github.com/abira1/Academy-Management-System/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "academy-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Put generates ID", func(t *testing.T) {
		id, err := store.Put(ctx, storage.Expenses, storage.Record{
			"item": "Office Rent", "cost": 15000.0, "date": "2023-10-05",
		})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if id == "" {
			t.Fatal("Expected record ID to be generated")
		}

		rec, err := store.Lookup(ctx, storage.Expenses, id)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if rec["id"] != id {
			t.Errorf("id mismatch: got %v, want %s", rec["id"], id)
		}
		if rec["cost"] != 15000.0 {
			t.Errorf("cost mismatch: got %v, want 15000", rec["cost"])
		}
	})

	t.Run("Put ignores caller id", func(t *testing.T) {
		id, err := store.Put(ctx, storage.Teachers, storage.Record{"id": "forged", "name": "Mr. Alamgir"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if id == "forged" {
			t.Error("Expected store-assigned ID, got caller-supplied one")
		}
	})

	t.Run("Patch merges only given fields", func(t *testing.T) {
		id, err := store.Put(ctx, storage.Students, storage.Record{
			"name": "Rahim Islam", "totalPayment": 20000.0, "paid": 15000.0,
		})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := store.Patch(ctx, storage.Students, id, storage.Record{"paid": 18000.0}); err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		rec, err := store.Lookup(ctx, storage.Students, id)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if rec["paid"] != 18000.0 {
			t.Errorf("paid = %v, want 18000", rec["paid"])
		}
		if rec["name"] != "Rahim Islam" {
			t.Errorf("name = %v, want unchanged", rec["name"])
		}
	})

	t.Run("Patch on missing record returns ErrNotFound", func(t *testing.T) {
		err := store.Patch(ctx, storage.Students, "nonexistent-id", storage.Record{"paid": 1.0})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Lookup on missing record returns ErrNotFound", func(t *testing.T) {
		_, err := store.Lookup(ctx, storage.Students, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		id, err := store.Put(ctx, storage.Partners, storage.Record{"username": "PARTNER ONE"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := store.Delete(ctx, storage.Partners, id); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := store.Delete(ctx, storage.Partners, id); err != nil {
			t.Errorf("Second delete should not fail, got %v", err)
		}
		if _, err := store.Lookup(ctx, storage.Partners, id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Unknown collection is rejected", func(t *testing.T) {
		_, err := store.Put(ctx, "payments", storage.Record{})
		if !errors.Is(err, storage.ErrUnknownCollection) {
			t.Errorf("Expected ErrUnknownCollection, got %v", err)
		}
	})
}

func TestSQLiteStore_Subscribe(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var deliveries []storage.Snapshot
	sub, err := store.Subscribe(ctx, storage.Expenses, func(s storage.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		deliveries = append(deliveries, s)
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Unsubscribe()

	mu.Lock()
	if len(deliveries) != 1 || len(deliveries[0]) != 0 {
		t.Fatalf("Expected one empty initial delivery, got %v", deliveries)
	}
	if deliveries[0] == nil {
		t.Error("Initial delivery should be an empty snapshot, not nil")
	}
	mu.Unlock()

	id, err := store.Put(ctx, storage.Expenses, storage.Record{"item": "Utility Bill", "cost": 3500.0})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		last := deliveries[len(deliveries)-1]
		mu.Unlock()
		if _, ok := last[id]; ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for push after Put")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sub.Unsubscribe()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Subscription did not finish after Unsubscribe")
	}
	if sub.Err() != nil {
		t.Errorf("Clean unsubscribe should leave Err nil, got %v", sub.Err())
	}
}

func TestSQLiteStore_CloseDropsListeners(t *testing.T) {
	store := newTestStore(t)

	sub, err := store.Subscribe(context.Background(), storage.Teachers, func(storage.Snapshot) {})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	store.broker.Close()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Subscription did not finish after close")
	}
	if !errors.Is(sub.Err(), storage.ErrStaleListener) {
		t.Errorf("Expected ErrStaleListener, got %v", sub.Err())
	}
}

func TestSQLiteStore_Conformance(t *testing.T) {
	storagetest.Run(t, newTestStore(t))
}
