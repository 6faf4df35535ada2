// Package sigindex stores the signature -> principal mapping in redis so that
// search verification can try the likely signer first.
package sigindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"signet/internal/usecase"
)

const defaultKeyPrefix = "signet:sig:"

type RedisIndex struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisIndex(addr, password string, db int, ttl time.Duration) (*RedisIndex, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisIndexWithClient(client, ttl), nil
}

// NewRedisIndexWithClient wraps an existing client. ttl <= 0 stores entries
// without expiry.
func NewRedisIndexWithClient(client *redis.Client, ttl time.Duration) *RedisIndex {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisIndex{client: client, prefix: defaultKeyPrefix, ttl: ttl}
}

func (r *RedisIndex) Put(ctx context.Context, sig []byte, principalID string) error {
	if principalID == "" {
		return errors.New("principal id is required")
	}
	return r.client.Set(ctx, r.key(sig), principalID, r.ttl).Err()
}

func (r *RedisIndex) Lookup(ctx context.Context, sig []byte) (string, bool, error) {
	id, err := r.client.Get(ctx, r.key(sig)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (r *RedisIndex) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisIndex) Close() error {
	return r.client.Close()
}

// Keys are derived from the digest so raw signatures never appear in redis.
func (r *RedisIndex) key(sig []byte) string {
	sum := sha256.Sum256(sig)
	return r.prefix + hex.EncodeToString(sum[:])
}

var _ usecase.SignatureIndex = (*RedisIndex)(nil)
