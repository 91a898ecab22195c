// Package records persists the domain collections as whole JSON blobs in a core.KVStore.
// Every mutation reads the whole collection, changes it in memory and writes it back
// while holding that collection's lock.
package records

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

// Collection keys
const (
	usersKey       = "users"
	materialsKey   = "courses"
	assignmentsKey = "assignments"
	forumKey       = "forum_messages"
)

func enrollmentKey(studentID string) string { return "enrollments_" + studentID }
func draftsKey(studentID string) string     { return "submissions_" + studentID }

// DB gives typed, lock-protected access to the collections of a KVStore.
type DB struct {
	store core.KVStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex // one per collection
}

// Open wraps store; closing the DB closes the store.
func Open(store core.KVStore) *DB {
	return &DB{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (db *DB) Close() error {
	return db.store.Close()
}

// lock acquires the collection's lock and returns its release func.
func (db *DB) lock(name string) func() {
	db.mu.Lock()
	l, ok := db.locks[name]
	if !ok {
		l = new(sync.Mutex)
		db.locks[name] = l
	}
	db.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// read loads a collection. A collection that was never written reads as the zero value.
func read[T any](ctx context.Context, db *DB, name string) (T, error) {
	var v T
	data, err := db.store.Get(ctx, name)
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return v, nil
		}
		return v, errors.Wrapf(err, "reading %s", name)
	}
	if err = json.Unmarshal(data, &v); err != nil {
		return v, errors.Wrapf(err, "decoding %s", name)
	}
	return v, nil
}

// write replaces a collection wholesale.
func write[T any](ctx context.Context, db *DB, name string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", name)
	}
	return errors.Wrapf(db.store.Set(ctx, name, data), "writing %s", name)
}

// update runs one read-modify-write cycle on a collection. Nothing is written if fn fails.
func update[T any](ctx context.Context, db *DB, name string, fn func(T) (T, error)) (T, error) {
	unlock := db.lock(name)
	defer unlock()

	v, err := read[T](ctx, db, name)
	if err != nil {
		return v, err
	}
	if v, err = fn(v); err != nil {
		return v, err
	}
	return v, write(ctx, db, name, v)
}
