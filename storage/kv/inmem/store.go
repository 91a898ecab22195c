package inmemkv

import (
	"context"
	"sync"

	"github.com/trezcool/aula/core"
)

// Store keeps records in process memory. Values are copied in and out.
type Store struct {
	mu    sync.RWMutex
	table map[string][]byte
}

var _ core.KVStore = (*Store)(nil)

func Open() *Store {
	return &Store{table: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return nil, core.ErrKeyNotFound
	}
	return append([]byte(nil), val...), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table[key] = append([]byte(nil), value...)
	return nil
}

// Reset drops every key. Used between tests.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = make(map[string][]byte)
}

func (s *Store) Close() error { return nil }
