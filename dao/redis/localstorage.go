package redis

import (
	"context"
	eum "eum/errors"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// LocalStorage keeps each session's key/value blobs in one hash.
type LocalStorage struct {
	rdb *redis.Client
}

func NewLocalStorage(rdb *redis.Client) *LocalStorage {
	return &LocalStorage{rdb: rdb}
}

func (s *LocalStorage) Get(ctx context.Context, namespace, key string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	val, err := s.rdb.HGet(ctx, KeyLocalStorageHashPF+namespace, key).Result()
	if errors.Is(err, Nil) {
		return "", eum.ErrNoSuchKey
	}
	return val, errors.Wrap(err, "redis:LocalStorage.Get: HGet")
}

func (s *LocalStorage) Set(ctx context.Context, namespace, key, value string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	hashKey := KeyLocalStorageHashPF + namespace
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, hashKey, key, value)
	pipe.Expire(ctx, hashKey, localStorageIdleExpire)
	_, err := pipe.Exec(ctx)
	return errors.Wrap(err, "redis:LocalStorage.Set: Exec")
}

func (s *LocalStorage) Remove(ctx context.Context, namespace, key string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	err := s.rdb.HDel(ctx, KeyLocalStorageHashPF+namespace, key).Err()
	return errors.Wrap(err, "redis:LocalStorage.Remove: HDel")
}

func (s *LocalStorage) Close() error {
	return s.rdb.Close()
}
