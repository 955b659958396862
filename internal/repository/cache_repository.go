package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

// scanBatch is the COUNT hint for each SCAN page during invalidation.
const scanBatch = 100

// errBroadPattern guards the session denylist, which shares the Redis database.
var errBroadPattern = errors.New("cache pattern must carry a key prefix")

// CacheRepository holds JSON-encoded result lookups in Redis under keys such as
// results:lookup:{class}:{exam}:{year}:{roll}. Submissions drop a whole
// class exam with a trailing-wildcard pattern. A nil client behaves as an
// empty cache so the API runs without Redis.
type CacheRepository struct {
	client *redis.Client
}

// NewCacheRepository constructs a CacheRepository.
func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{client: client}
}

// Get decodes the value stored under key into dest. Missing keys return
// ErrCacheMiss; a value that no longer decodes is an error, not a miss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return appErrors.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// Set stores value as JSON under key for ttl.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// DeleteByPattern unlinks every key matching pattern, one SCAN page at a time.
// The pattern must start with a literal prefix; "*" or an empty pattern is refused.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if prefix, _, _ := strings.Cut(pattern, "*"); prefix == "" {
		return fmt.Errorf("delete %q: %w", pattern, errBroadPattern)
	}
	if r.client == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := r.client.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis unlink %d keys for %s: %w", len(keys), pattern, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
