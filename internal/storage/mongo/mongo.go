// Package mongo provides a RecordStore on MongoDB. Each collection maps to a
// MongoDB collection of the same name and live updates come from change
// streams, which require a replica set or sharded cluster.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abira1/Academy-Management-System/internal/storage"
)

var _ storage.RecordStore = (*Store)(nil)

// Store implements storage.RecordStore on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the client. Live listeners observe a drop.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) coll(collection string) (*mongo.Collection, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return nil, err
	}
	return s.db.Collection(collection), nil
}

// Get implements storage.RecordStore.
func (s *Store) Get(ctx context.Context, collection string) (storage.Snapshot, error) {
	c, err := s.coll(collection)
	if err != nil {
		return nil, err
	}
	cur, err := c.Find(ctx, bson.M{})
	if err != nil {
		return nil, storage.Transport("get", collection, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storage.Transport("get", collection, err)
	}
	snap := make(storage.Snapshot, len(docs))
	for _, doc := range docs {
		rec := fromDocument(doc)
		id, _ := rec["id"].(string)
		if id == "" {
			continue
		}
		snap[id] = rec
	}
	return snap, nil
}

// Lookup implements storage.RecordStore.
func (s *Store) Lookup(ctx context.Context, collection, id string) (storage.Record, error) {
	c, err := s.coll(collection)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	err = c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, storage.Transport("lookup", collection, err)
	}
	return fromDocument(doc), nil
}

// Put implements storage.RecordStore.
func (s *Store) Put(ctx context.Context, collection string, record storage.Record) (string, error) {
	c, err := s.coll(collection)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	doc := toDocument(record)
	doc["_id"] = id
	if _, err := c.InsertOne(ctx, doc); err != nil {
		return "", storage.Transport("put", collection, err)
	}
	return id, nil
}

// Patch implements storage.RecordStore.
func (s *Store) Patch(ctx context.Context, collection, id string, fields storage.Record) error {
	c, err := s.coll(collection)
	if err != nil {
		return err
	}
	set := toDocument(fields)
	if len(set) == 0 {
		// Nothing to change, but the record must still exist.
		_, err := s.Lookup(ctx, collection, id)
		return err
	}
	res, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return storage.Transport("patch", collection, err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete implements storage.RecordStore.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	c, err := s.coll(collection)
	if err != nil {
		return err
	}
	if _, err := c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storage.Transport("delete", collection, err)
	}
	return nil
}

// Subscribe implements storage.RecordStore. The change stream is opened
// before the initial read so no change in between is lost.
func (s *Store) Subscribe(ctx context.Context, collection string, fn storage.Listener) (storage.Subscription, error) {
	c, err := s.coll(collection)
	if err != nil {
		return nil, err
	}
	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := c.Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, storage.Transport("subscribe", collection, err)
	}

	snap, err := s.Get(ctx, collection)
	if err != nil {
		cancel()
		_ = stream.Close(context.Background())
		return nil, err
	}
	fn(snap)

	sub := storage.NewSub()
	sub.OnUnsubscribe = cancel
	go s.deliver(streamCtx, collection, stream, sub, fn)
	return sub, nil
}

func (s *Store) deliver(ctx context.Context, collection string, stream *mongo.ChangeStream, sub *storage.Sub, fn storage.Listener) {
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		// Coalesce a burst of changes into one re-read.
		for stream.TryNext(ctx) {
		}
		snap, err := s.Get(ctx, collection)
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
	sub.Fail(collection, stream.Err())
}

func toDocument(r storage.Record) bson.M {
	doc := make(bson.M, len(r))
	for k, v := range r {
		if k == "id" || k == "_id" {
			continue
		}
		doc[k] = v
	}
	return doc
}

func fromDocument(doc bson.M) storage.Record {
	rec := make(storage.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			rec["id"] = fmt.Sprint(v)
			continue
		}
		rec[k] = normalize(v)
	}
	return rec
}

// normalize converts BSON numeric types to float64 so records read from
// MongoDB look the same as records read from the JSON-backed stores.
func normalize(v any) any {
	switch n := v.(type) {
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return v
	}
}
