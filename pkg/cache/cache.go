package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ConstantineIIII/WhatsappClone/pkg/domain"
)

const defaultTTL = time.Hour

// ErrMiss is returned when the key is absent.
var ErrMiss = errors.New("cache miss")

// MessageCache is a best-effort read-through cache for hot messages.
// It is never authoritative; callers must treat every error as a miss.
type MessageCache interface {
	SetMessage(ctx context.Context, msg domain.Message) error
	GetMessage(ctx context.Context, id string) (domain.Message, error)
	DeleteMessage(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// RedisCache stores serialized messages in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects a cache to the given Redis instance.
func NewRedisCache(addr, password string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

func messageKey(id string) string { return "message:" + id }

func (c *RedisCache) SetMessage(ctx context.Context, msg domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, messageKey(msg.ID), raw, c.ttl).Err()
}

func (c *RedisCache) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	raw, err := c.client.Get(ctx, messageKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Message{}, ErrMiss
	}
	if err != nil {
		return domain.Message{}, err
	}
	var msg domain.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (c *RedisCache) DeleteMessage(ctx context.Context, id string) error {
	return c.client.Del(ctx, messageKey(id)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// NoopCache misses on every read and discards every write. Used when
// Redis is not configured.
type NoopCache struct{}

func (NoopCache) SetMessage(context.Context, domain.Message) error { return nil }
func (NoopCache) GetMessage(context.Context, string) (domain.Message, error) {
	return domain.Message{}, ErrMiss
}
func (NoopCache) DeleteMessage(context.Context, string) error { return nil }
func (NoopCache) Ping(context.Context) error                  { return nil }

var _ MessageCache = (*RedisCache)(nil)
var _ MessageCache = NoopCache{}
