package core

import (
	"context"

	"github.com/pkg/errors"
)

// ErrKeyNotFound is returned by KVStore.Get for a key that was never written.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is a string-keyed blob store. Set replaces the stored value wholesale;
// a reader observes either the previous or the new value, never a partial write.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
