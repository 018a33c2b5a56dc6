package cache

import (
	"context"
	"errors"
	"fmt"

	"nftStatApp/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisBlobStore implements the BlobStore interface using Redis as the backend.
// Each analytics blob lives under prefix+key with no TTL.
type RedisBlobStore struct {
	client *redis.Client
	prefix string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

func NewRedisBlobStore(cfg RedisConfig) *RedisBlobStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisBlobStore{client: client, prefix: cfg.KeyPrefix}
}

// Ensure RedisBlobStore implements the BlobStore interface
var _ repository.BlobStore = (*RedisBlobStore)(nil)

func (r *RedisBlobStore) key(name string) string {
	return r.prefix + name
}

func (r *RedisBlobStore) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key(key), err)
	}
	return nil
}

func (r *RedisBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrBlobNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", r.key(key), err)
	}
	return data, nil
}

// Ping checks that Redis is reachable.
func (r *RedisBlobStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBlobStore) Close() error {
	return r.client.Close()
}
