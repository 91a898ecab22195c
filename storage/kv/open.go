package kv

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
	boltkv "github.com/trezcool/aula/storage/kv/bolt"
	inmemkv "github.com/trezcool/aula/storage/kv/inmem"
	pgkv "github.com/trezcool/aula/storage/kv/postgres"
	rediskv "github.com/trezcool/aula/storage/kv/redis"
)

// Open returns the store engine selected by `store.engine`.
func Open(ctx context.Context, conf core.StoreConfig) (core.KVStore, error) {
	var (
		store core.KVStore
		err   error
	)
	switch conf.Engine {
	case core.StoreMemory:
		return inmemkv.Open(), nil
	case core.StoreBolt:
		store, err = boltkv.Open(conf.BoltPath)
	case core.StoreRedis:
		store, err = rediskv.Open(ctx, rediskv.Options{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
			Prefix:   conf.RedisPrefix,
		})
	case core.StorePostgres:
		store, err = pgkv.Open(ctx, conf.PostgresURL)
	default:
		return nil, errors.Errorf("unknown store engine %q", conf.Engine)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s store", conf.Engine)
	}
	return store, nil
}
