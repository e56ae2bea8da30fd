package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/abira1/Academy-Management-System/internal/storage/storagetest"
)

// newTestStore connects to the server in REDIS_ADDR under a unique key
// prefix. The test is skipped when REDIS_ADDR is not set.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("academy-test-%d", time.Now().UnixNano())
	store, err := Dial(ctx, Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), Prefix: prefix})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() {
		keys, _ := store.client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			store.client.Del(ctx, keys...)
		}
		store.Close()
	})
	return store
}

func TestStore(t *testing.T) {
	storagetest.Run(t, newTestStore(t))
}

func TestKeys(t *testing.T) {
	s := New(nil, "academy")
	if got := s.key("students"); got != "academy:records:students" {
		t.Errorf("key = %q", got)
	}
	if got := s.channel("students"); got != "academy:changes:students" {
		t.Errorf("channel = %q", got)
	}
}

func TestDecode(t *testing.T) {
	rec, err := decode(`{"name":"Rahim Islam","paid":15000}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if rec["name"] != "Rahim Islam" || rec["paid"] != 15000.0 {
		t.Errorf("decode = %v", rec)
	}
	if _, err := decode("{"); err == nil {
		t.Error("decode accepted malformed JSON")
	}
}
