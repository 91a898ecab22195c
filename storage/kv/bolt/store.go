package boltkv

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/trezcool/aula/core"
)

var recordsBucket = []byte("records")

// Store persists records in a single bbolt bucket, one key per collection.
type Store struct {
	db *bolt.DB
}

var _ core.KVStore = (*Store)(nil)

// Open opens (or creates) the bolt file at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating data dir")
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening bolt file %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(recordsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating records bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(recordsBucket).Get([]byte(key))
		if data == nil {
			return core.ErrKeyNotFound
		}
		// data is only valid for the life of the transaction
		val = append([]byte(nil), data...)
		return nil
	})
	return val, err
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(recordsBucket).Put([]byte(key), value)
	})
	return errors.Wrapf(err, "writing %s", key)
}

func (s *Store) Close() error {
	return s.db.Close()
}
