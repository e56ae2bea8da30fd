// Package sqlite provides a SQLite-backed implementation of storage.RecordStore.
//
// Records are stored as JSON documents. Change notifications are delivered to
// listeners in the same process; writers in other processes sharing the file
// are not observed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/abira1/Academy-Management-System/internal/storage"
)

// Ensure SQLiteStore implements storage.RecordStore
var _ storage.RecordStore = (*SQLiteStore)(nil)

// SQLiteStore implements storage.RecordStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	broker *storage.Broker
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps PRAGMAs in effect.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.broker = storage.NewBroker(s.Get)
	return s, nil
}

// Close drops listeners and closes the database connection.
func (s *SQLiteStore) Close() error {
	s.broker.Close()
	return s.db.Close()
}

// Get returns every record in a collection.
func (s *SQLiteStore) Get(ctx context.Context, collection string) (storage.Snapshot, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, body FROM records WHERE collection = ? ORDER BY created_at, id",
		collection,
	)
	if err != nil {
		return nil, storage.Transport("get", collection, fmt.Errorf("failed to query records: %w", err))
	}
	defer rows.Close()

	snap := make(storage.Snapshot)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, storage.Transport("get", collection, fmt.Errorf("failed to scan record: %w", err))
		}
		rec, err := decode(body)
		if err != nil {
			return nil, storage.Transport("get", collection, err)
		}
		rec["id"] = id
		snap[id] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Transport("get", collection, fmt.Errorf("failed to iterate records: %w", err))
	}
	return snap, nil
}

// Lookup retrieves a single record by ID.
func (s *SQLiteStore) Lookup(ctx context.Context, collection, id string) (storage.Record, error) {
	if err := storage.CheckCollection(collection); err != nil {
		return nil, err
	}
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM records WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, storage.Transport("lookup", collection, fmt.Errorf("failed to get record: %w", err))
	}
	rec, err := decode(body)
	if err != nil {
		return nil, storage.Transport("lookup", collection, err)
	}
	rec["id"] = id
	return rec, nil
}

// Put inserts a new record and returns its generated ID.
func (s *SQLiteStore) Put(ctx context.Context, collection string, record storage.Record) (string, error) {
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
		return "", storage.Transport("put", collection, fmt.Errorf("failed to encode record: %w", err))
	}
	now := time.Now().UnixNano()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO records (collection, id, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		collection, id, string(body), now, now,
	)
	if err != nil {
		return "", storage.Transport("put", collection, fmt.Errorf("failed to insert record: %w", err))
	}

	s.broker.Notify(collection)
	return id, nil
}

// Patch merges fields into an existing record inside a transaction.
func (s *SQLiteStore) Patch(ctx context.Context, collection, id string, fields storage.Record) error {
	if err := storage.CheckCollection(collection); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Transport("patch", collection, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx,
		"SELECT body FROM records WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return storage.ErrNotFound
	}
	if err != nil {
		return storage.Transport("patch", collection, fmt.Errorf("failed to get record: %w", err))
	}

	rec, err := decode(body)
	if err != nil {
		return storage.Transport("patch", collection, err)
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
		return storage.Transport("patch", collection, fmt.Errorf("failed to encode record: %w", err))
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE records SET body = ?, updated_at = ? WHERE collection = ? AND id = ?",
		string(merged), time.Now().UnixNano(), collection, id,
	); err != nil {
		return storage.Transport("patch", collection, fmt.Errorf("failed to update record: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return storage.Transport("patch", collection, fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.broker.Notify(collection)
	return nil
}

// Delete removes a record. Missing records are ignored.
func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	if err := storage.CheckCollection(collection); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND id = ?",
		collection, id,
	)
	if err != nil {
		return storage.Transport("delete", collection, fmt.Errorf("failed to delete record: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.broker.Notify(collection)
	}
	return nil
}

// Subscribe registers a listener for a collection.
func (s *SQLiteStore) Subscribe(ctx context.Context, collection string, fn storage.Listener) (storage.Subscription, error) {
	return s.broker.Subscribe(ctx, collection, fn)
}

func decode(body string) (storage.Record, error) {
	rec := storage.Record{}
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return rec, nil
}
