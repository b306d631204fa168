package token

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker tracks revoked token ids until expiry.
type Revoker interface {
	Revoke(jti string, ttl time.Duration) error
	IsRevoked(jti string) (bool, error)
}

// MemoryRevoker keeps revoked token ids in-memory (single instance only).
type MemoryRevoker struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

// NewMemoryRevoker builds an in-memory revoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{tokens: make(map[string]time.Time)}
}

// Revoke marks a token id as revoked until its expiry.
func (r *MemoryRevoker) Revoke(jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	r.tokens[jti] = time.Now().Add(ttl)
	r.mu.Unlock()
	return nil
}

// IsRevoked checks if the token id is revoked.
func (r *MemoryRevoker) IsRevoked(jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiry, ok := r.tokens[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(r.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RedisRevoker stores revoked token ids in Redis with TTL.
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker builds a Redis-backed revoker.
func NewRedisRevoker(addr, password string) *RedisRevoker {
	return &RedisRevoker{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

// Revoke marks a token id as revoked until expiry.
func (r *RedisRevoker) Revoke(jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.client.Set(ctx, revocationKey(jti), "1", ttl).Err()
}

// IsRevoked checks if the token id is revoked.
func (r *RedisRevoker) IsRevoked(jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	res, err := r.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return res > 0, nil
}

func revocationKey(jti string) string {
	return "revoked:" + jti
}
