package kv

import (
	"context"
	"errors"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"

	"github.com/redis/go-redis/v9"
)

// RedisStore maps every key to a Redis string under a namespace prefix so
// ClearAll only touches this store's keys.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, apperror.Storage("kv.get "+key, err)
	}
	return val, true, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, doc []byte) error {
	if err := r.rdb.Set(ctx, r.prefix+key, doc, 0).Err(); err != nil {
		return apperror.Storage("kv.put "+key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return apperror.Storage("kv.delete "+key, err)
	}
	return nil
}

// ClearAll scans the prefix and deletes in batches.
func (r *RedisStore) ClearAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, r.prefix+"*", 200).Result()
		if err != nil {
			return apperror.Storage("kv.clear", err)
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return apperror.Storage("kv.clear", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
