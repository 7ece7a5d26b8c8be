package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent (or caching is
// disabled entirely).
var ErrCacheMiss = errors.New("cache: miss")

// CacheHelper namespaces keys under a prefix. A nil redis client disables the
// helper: every Get misses and every Set is a no-op, so callers never branch
// on whether caching is configured.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{client: client, prefix: prefix}
}

func (h *CacheHelper) key(k string) string {
	return h.prefix + ":" + k
}

func (h *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if h.client == nil {
		return ErrCacheMiss
	}

	data, err := h.client.Get(ctx, h.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}

	return json.Unmarshal(data, dest)
}

func (h *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if h.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}

	return h.client.Set(ctx, h.key(key), data, ttl).Err()
}

func (h *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if h.client == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = h.key(k)
	}
	return h.client.Del(ctx, full...).Err()
}

// CacheOrExecute fills dest from cache, executing loader and caching its
// result on a miss. Loader errors pass through; cache write failures are
// swallowed so a broken cache never fails a read path.
func (h *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func() (interface{}, error)) error {
	if err := h.Get(ctx, key, dest); err == nil {
		return nil
	}

	value, err := loader()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal %s: %w", key, err)
	}

	if h.client != nil {
		_ = h.client.Set(ctx, h.key(key), data, ttl).Err()
	}
	return nil
}

// TTLs are short on purpose: quiz content is owned by the authoring service,
// which cannot invalidate our keys, so staleness is bounded by expiry alone.
const (
	QuizTTL      = 1 * time.Minute
	AnswerKeyTTL = 30 * time.Second
)

// CacheManager groups the helpers the repositories use.
type CacheManager struct {
	client *redis.Client

	Quiz      *CacheHelper
	AnswerKey *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:    client,
		Quiz:      NewCacheHelper(client, "quiz"),
		AnswerKey: NewCacheHelper(client, "answerkey"),
	}
}

func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return nil
	}
	return cm.client.Ping(ctx).Err()
}
