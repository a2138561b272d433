// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go caches serialized JSON for public GET endpoints. Every post or
// comment mutation drops all post entries; creating a category drops the
// category list. A nil *ResponseCache is valid and never hits.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// respKeyPrefix is the Valkey key prefix for cached responses.
	respKeyPrefix = "resp:"

	postKeyPrefix = respKeyPrefix + "post"
	categoriesKey = respKeyPrefix + "categories"

	// DefaultResponseTTL is how long a response stays cached.
	DefaultResponseTTL = time.Minute
)

// ResponseCache stores response bodies in Valkey.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// PostListKey returns the key for one page of a post listing. query must be
// in canonical form.
func PostListKey(query string) string {
	return postKeyPrefix + "s:" + query
}

// PostKey returns the key for a single post's detail response.
func PostKey(id uuid.UUID) string {
	return postKeyPrefix + ":" + id.String()
}

// CategoriesKey returns the key for the category list.
func CategoriesKey() string {
	return categoriesKey
}

// Get returns the cached body for key.
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if rc == nil {
		return nil, false
	}
	val, err := rc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("response cache hit", "key", key)
	return val, true
}

// Set stores body under key with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if rc == nil {
		return
	}
	if err := rc.client.Set(ctx, key, body, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// InvalidatePosts removes every cached post list and post detail.
func (rc *ResponseCache) InvalidatePosts(ctx context.Context) {
	if rc == nil {
		return
	}
	rc.deletePrefix(ctx, postKeyPrefix+"*")
}

// InvalidateCategories removes the cached category list.
func (rc *ResponseCache) InvalidateCategories(ctx context.Context) {
	if rc == nil {
		return
	}
	if err := rc.client.Del(ctx, categoriesKey).Err(); err != nil {
		slog.Warn("response cache invalidate error", "key", categoriesKey, "error", err)
	}
}

func (rc *ResponseCache) deletePrefix(ctx context.Context, pattern string) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("response cache cleared", "pattern", pattern, "deleted", deleted)
	}
}
