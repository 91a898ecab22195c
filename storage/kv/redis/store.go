package rediskv

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/trezcool/aula/core"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key, eg. "aula:"
}

// Store keeps each collection under one redis string key.
type Store struct {
	client *goredis.Client
	prefix string
}

var _ core.KVStore = (*Store)(nil)

// Open connects to redis and checks the connection with a PING.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "pinging redis at %s", opts.Addr)
	}
	return &Store{client: client, prefix: opts.Prefix}, nil
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "reading %s", key)
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	err := s.client.Set(ctx, s.key(key), value, 0).Err()
	return errors.Wrapf(err, "writing %s", key)
}

func (s *Store) Close() error {
	return s.client.Close()
}
