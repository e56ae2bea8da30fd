// Package redis provides a RecordStore on a shared Redis server, so several
// processes can write the same collections and all see each other's changes.
//
// Each collection is a hash (record ID -> JSON body). Every write publishes
// the collection name on a change channel; listeners re-read the hash on each
// message and deliver the full contents.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/abira1/Academy-Management-System/internal/storage"
)

var _ storage.RecordStore = (*Store)(nil)

// DefaultPrefix namespaces the keys and channels used by the store.
const DefaultPrefix = "academy"

// maxPatchAttempts bounds optimistic-lock retries in Patch.
const maxPatchAttempts = 5

// Store implements storage.RecordStore on Redis.
type Store struct {
	client *goredis.Client
	prefix string
}

// Options configures Dial.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Dial connects to Redis and verifies the connection with a ping.
func Dial(ctx context.Context, opts Options) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(client, opts.Prefix), nil
}

// New wraps an existing client. An empty prefix uses DefaultPrefix.
func New(client *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(collection string) string {
	return s.prefix + ":records:" + collection
}

func (s *Store) channel(collection string) string {
	return s.prefix + ":changes:" + collection
}

// Close closes the underlying client. Live listeners observe a drop.
func (s *Store) Close() error {
	return s.client.Close()
}

// Get implements storage.RecordStore.
func (s *Store) Get(ctx context.Context, collection string) (storage.Snapshot, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return nil, err
	}
	raw, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return nil, storage.Transport("get", collection, err)
	}
	snap := make(storage.Snapshot, len(raw))
	for id, body := range raw {
		rec, err := decode(body)
		if err != nil {
			return nil, storage.Transport("get", collection, err)
		}
		rec["id"] = id
		snap[id] = rec
	}
	return snap, nil
}

// Lookup implements storage.RecordStore.
func (s *Store) Lookup(ctx context.Context, collection, id string) (storage.Record, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return nil, err
	}
	body, err := s.client.HGet(ctx, s.key(collection), id).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, storage.Transport("lookup", collection, err)
	}
	rec, err := decode(body)
	if err != nil {
		return nil, storage.Transport("lookup", collection, err)
	}
	rec["id"] = id
	return rec, nil
}

// Put implements storage.RecordStore.
func (s *Store) Put(ctx context.Context, collection string, record storage.Record) (string, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return "", err
	}
	id := uuid.New().String()
	rec := record.Clone()
	if rec == nil {
		rec = storage.Record{}
	}
	rec["id"] = id
	body, err := json.Marshal(rec)
	if err != nil {
		return "", storage.Transport("put", collection, fmt.Errorf("encode record: %w", err))
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, s.key(collection), id, body)
		pipe.Publish(ctx, s.channel(collection), id)
		return nil
	})
	if err != nil {
		return "", storage.Transport("put", collection, err)
	}
	return id, nil
}

// Patch implements storage.RecordStore. The read-merge-write runs under
// WATCH so a concurrent writer forces a retry instead of a lost update.
func (s *Store) Patch(ctx context.Context, collection, id string, fields storage.Record) error {
	if err := storage.CheckCollection(collection); err != nil {
		return err
	}
	key := s.key(collection)

	txf := func(tx *goredis.Tx) error {
		body, err := tx.HGet(ctx, key, id).Result()
		if errors.Is(err, goredis.Nil) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		rec, err := decode(body)
		if err != nil {
			return err
		}
		for k, v := range fields {
			if k == "id" {
				continue
			}
			rec[k] = v
		}
		rec["id"] = id
		merged, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, key, id, merged)
			pipe.Publish(ctx, s.channel(collection), id)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxPatchAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return storage.Transport("patch", collection, err)
	}
	return storage.Transport("patch", collection, fmt.Errorf("gave up after %d conflicting writes", maxPatchAttempts))
}

// Delete implements storage.RecordStore.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := storage.CheckCollection(collection); err != nil {
		return err
	}
	n, err := s.client.HDel(ctx, s.key(collection), id).Result()
	if err != nil {
		return storage.Transport("delete", collection, err)
	}
	if n > 0 {
		if err := s.client.Publish(ctx, s.channel(collection), id).Err(); err != nil {
			return storage.Transport("delete", collection, err)
		}
	}
	return nil
}

// Subscribe implements storage.RecordStore.
func (s *Store) Subscribe(ctx context.Context, collection string, fn storage.Listener) (storage.Subscription, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return nil, err
	}
	pubsub := s.client.Subscribe(ctx, s.channel(collection))
	// Wait for the subscription to be confirmed so no change published after
	// the initial read is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, storage.Transport("subscribe", collection, err)
	}

	snap, err := s.Get(ctx, collection)
	if err != nil {
		pubsub.Close()
		return nil, err
	}
	fn(snap)

	sub := storage.NewSub()
	sub.OnUnsubscribe = func() { _ = pubsub.Close() }
	go s.deliver(collection, pubsub.Channel(), sub, fn)
	return sub, nil
}

func (s *Store) deliver(collection string, msgs <-chan *goredis.Message, sub *storage.Sub, fn storage.Listener) {
	for {
		select {
		case <-sub.Stopping():
			sub.Finish(nil)
			return
		case _, ok := <-msgs:
			if !ok {
				sub.Fail(collection, errors.New("pubsub channel closed"))
				return
			}
			// Coalesce a burst of changes into one re-read.
			drain(msgs)
			snap, err := s.Get(context.Background(), collection)
			if err != nil {
				sub.Fail(collection, err)
				return
			}
			select {
			case <-sub.Stopping():
				sub.Finish(nil)
				return
			default:
			}
			fn(snap)
		}
	}
}

func drain(msgs <-chan *goredis.Message) {
	for {
		select {
		case _, ok := <-msgs:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func decode(body string) (storage.Record, error) {
	rec := storage.Record{}
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
