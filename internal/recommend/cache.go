package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// LRUCache is a per-process cache with a TTL.
type LRUCache struct {
	lru *expirable.LRU[string, Suggestions]
}

// NewLRUCache holds up to size departments for ttl each.
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	return &LRUCache{lru: expirable.NewLRU[string, Suggestions](size, nil, ttl)}
}

func (c *LRUCache) Get(_ context.Context, department string) (Suggestions, bool, error) {
	s, ok := c.lru.Get(department)
	return s, ok, nil
}

func (c *LRUCache) Set(_ context.Context, department string, s Suggestions) error {
	c.lru.Add(department, s)
	return nil
}

// RedisCache shares generated suggestions between instances.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache stores values under prefix with ttl.
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "librarycard"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(department string) string {
	return c.prefix + ":suggestions:" + department
}

func (c *RedisCache) Get(ctx context.Context, department string) (Suggestions, bool, error) {
	raw, err := c.client.Get(ctx, c.key(department)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Suggestions{}, false, nil
	}
	if err != nil {
		return Suggestions{}, false, fmt.Errorf("redis get: %w", err)
	}
	var s Suggestions
	if err := json.Unmarshal(raw, &s); err != nil {
		return Suggestions{}, false, fmt.Errorf("decode cached suggestions: %w", err)
	}
	return s, true, nil
}

func (c *RedisCache) Set(ctx context.Context, department string, s Suggestions) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	if err := c.client.Set(ctx, c.key(department), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
