// Package storagetest checks that a RecordStore honors the behavior the
// mirrors depend on. Backend tests call Run with a fresh, empty store.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abira1/Academy-Management-System/internal/storage"
)

// Run exercises store. It must be empty for every collection.
func Run(t *testing.T, store storage.RecordStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		snap, err := store.Get(ctx, storage.Partners)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if snap == nil || len(snap) != 0 {
			t.Errorf("Get = %v, want an empty non-nil snapshot", snap)
		}
	})

	t.Run("put lookup patch delete", func(t *testing.T) {
		id, err := store.Put(ctx, storage.Students, storage.Record{
			"id": "ignored", "name": "Rahim Islam", "totalPayment": 20000.0, "paid": 15000.0, "due": 5000.0,
		})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if id == "" || id == "ignored" {
			t.Fatalf("Put returned id %q, want a store-assigned id", id)
		}

		if err := store.Patch(ctx, storage.Students, id, storage.Record{"paid": 20000.0, "due": 0.0}); err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		rec, err := store.Lookup(ctx, storage.Students, id)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if rec["id"] != id || rec["name"] != "Rahim Islam" || rec["paid"] != 20000.0 || rec["due"] != 0.0 {
			t.Errorf("record after patch = %v", rec)
		}

		if err := store.Delete(ctx, storage.Students, id); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := store.Delete(ctx, storage.Students, id); err != nil {
			t.Errorf("second Delete failed: %v", err)
		}
		if _, err := store.Lookup(ctx, storage.Students, id); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Lookup after delete error = %v, want ErrNotFound", err)
		}
		if err := store.Patch(ctx, storage.Students, id, storage.Record{"paid": 1.0}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Patch after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown collection", func(t *testing.T) {
		if _, err := store.Get(ctx, "courses"); !errors.Is(err, storage.ErrUnknownCollection) {
			t.Errorf("Get error = %v, want ErrUnknownCollection", err)
		}
	})

	t.Run("subscribe", func(t *testing.T) {
		var (
			mu    sync.Mutex
			calls []storage.Snapshot
		)
		sub, err := store.Subscribe(ctx, storage.Teachers, func(s storage.Snapshot) {
			mu.Lock()
			calls = append(calls, s)
			mu.Unlock()
		})
		if err != nil {
			t.Fatalf("Subscribe failed: %v", err)
		}

		mu.Lock()
		initial := len(calls)
		mu.Unlock()
		if initial != 1 {
			t.Fatalf("got %d deliveries before Subscribe returned, want 1", initial)
		}

		id, err := store.Put(ctx, storage.Teachers, storage.Record{"name": "Mr. Alamgir", "salary": 30000.0, "date": "2023-10-01"})
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		deadline := time.Now().Add(5 * time.Second)
		for {
			mu.Lock()
			last := calls[len(calls)-1]
			mu.Unlock()
			if _, ok := last[id]; ok {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("change was never delivered")
			}
			time.Sleep(10 * time.Millisecond)
		}

		sub.Unsubscribe()
		sub.Unsubscribe()
		select {
		case <-sub.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("Done not closed after Unsubscribe")
		}
		if err := sub.Err(); err != nil {
			t.Errorf("Err after Unsubscribe = %v, want nil", err)
		}
	})
}
