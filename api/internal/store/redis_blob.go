package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlob хранит блоб под Prefix+key без TTL.
type RedisBlob struct {
	rdb    *redis.Client
	Prefix string
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisBlob подключается и проверяет соединение.
func NewRedisBlob(ctx context.Context, opt RedisOptions, prefix string) (*RedisBlob, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opt.Addr,
		Password:     opt.Password,
		DB:           opt.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisBlob{rdb: rdb, Prefix: prefix}, nil
}

func (r *RedisBlob) key(k string) string { return r.Prefix + k }

func (r *RedisBlob) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *RedisBlob) Put(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, r.key(key), value, 0).Err()
}

func (r *RedisBlob) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

func (r *RedisBlob) Close() error { return r.rdb.Close() }
