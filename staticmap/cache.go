// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package staticmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Cache stores rendered previews by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, png []byte) error
}

// MemoryCache keeps the most recently used previews in process.
type MemoryCache struct {
	entries *lru.Cache[string, []byte]
}

// NewMemoryCache creates a cache holding up to size previews.
func NewMemoryCache(size int) (*MemoryCache, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache: %w", err)
	}

	return &MemoryCache{entries: entries}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	png, ok := c.entries.Get(key)

	return png, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, png []byte) error {
	c.entries.Add(key, png)

	return nil
}

// RedisCache shares previews between server instances.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a cache on top of an existing client. A zero ttl keeps entries forever.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "gpxmaps:staticmap:",
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	png, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("reading preview %s: %w", key, err)
	}

	return png, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, png []byte) error {
	if err := c.client.Set(ctx, c.prefix+key, png, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing preview %s: %w", key, err)
	}

	return nil
}
