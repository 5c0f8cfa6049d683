package prompts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"model_catalog/internal/storage"
	"model_catalog/internal/utils"
)

const redisKeyPrefix = "prompt:"

// RedisCache shares resolved templates between service instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache whose entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached template, or false on a miss.
func (c *RedisCache) Get(ctx context.Context, id string) (*PromptTemplate, bool, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read prompt cache: %w", err)
	}

	var t PromptTemplate
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached prompt %s: %w", id, err)
	}
	return &t, true, nil
}

// Set stores t under id.
func (c *RedisCache) Set(ctx context.Context, id string, t *PromptTemplate) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode prompt %s: %w", id, err)
	}
	return c.client.Set(ctx, redisKeyPrefix+id, data, c.ttl).Err()
}

// Delete drops id from the cache.
func (c *RedisCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, redisKeyPrefix+id).Err()
}

// CachedStore puts an in-process LRU and an optional Redis cache in front of
// a backing store. Callers receive copies.
type CachedStore struct {
	backing Store
	local   *storage.LRUCache[*PromptTemplate]
	remote  *RedisCache
	logger  *utils.Logger
}

// NewCachedStore wraps backing. remote may be nil.
func NewCachedStore(backing Store, local *storage.LRUCache[*PromptTemplate], remote *RedisCache) *CachedStore {
	return &CachedStore{
		backing: backing,
		local:   local,
		remote:  remote,
		logger:  utils.NewLogger("prompts-cache"),
	}
}

func (s *CachedStore) Get(ctx context.Context, id string) (*PromptTemplate, error) {
	if t, ok := s.local.Get(id); ok {
		return t.Clone(), nil
	}

	if s.remote != nil {
		t, ok, err := s.remote.Get(ctx, id)
		if err != nil {
			s.logger.Warn("Prompt cache read failed", "id", id, "error", err)
		} else if ok {
			s.local.Set(id, t)
			return t.Clone(), nil
		}
	}

	s.logger.Debug("Prompt cache miss", "id", id)
	t, err := s.backing.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.remote != nil {
		if err := s.remote.Set(ctx, id, t); err != nil {
			s.logger.Warn("Prompt cache write failed", "id", id, "error", err)
		}
	}
	s.local.Set(id, t)
	return t.Clone(), nil
}

// Invalidate drops id from both cache tiers.
func (s *CachedStore) Invalidate(ctx context.Context, id string) error {
	s.local.Delete(id)
	if s.remote != nil {
		return s.remote.Delete(ctx, id)
	}
	return nil
}

// Stats returns the in-process cache statistics.
func (s *CachedStore) Stats() storage.CacheStats {
	return s.local.GetStats()
}
