// Package cache memoizes Content Generator calls for a bounded time window so
// identical requests within the TTL do not spend twice on the upstream engine.
//
// The cache is purely a performance layer: it is empty at process start, a
// miss is equivalent to a hit modulo generator nondeterminism, and correctness
// never depends on its contents.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/site-generator-api/internal/generator"
)

// ContentCache fronts a Generator with an in-memory TTL cache keyed by
// (instruction, content type).
type ContentCache struct {
	lru *expirable.LRU[string, string]
	gen generator.Generator
	log zerolog.Logger
}

// New creates a ContentCache holding at most size entries for at most ttl.
func New(gen generator.Generator, size int, ttl time.Duration, log zerolog.Logger) *ContentCache {
	return &ContentCache{
		lru: expirable.NewLRU[string, string](size, nil, ttl),
		gen: gen,
		log: log.With().Str("component", "generation_cache").Logger(),
	}
}

// GetOrGenerate returns cached content for (instruction, contentType) when a
// live entry exists, otherwise calls the generator exactly once and stores the
// result. Failed or empty generations are never cached; the error propagates
// untouched.
//
// There is no cross-request coalescing: concurrent misses on the same key may
// each call upstream. Duplicate spend under a stampede is accepted over the
// complexity of single-flight locking.
func (c *ContentCache) GetOrGenerate(ctx context.Context, instruction, contentType string) (string, error) {
	key := cacheKey(instruction, contentType)

	if content, ok := c.lru.Get(key); ok {
		c.log.Debug().Str("content_type", contentType).Msg("Generation cache hit")
		return content, nil
	}

	content, err := c.gen.Generate(ctx, instruction, contentType)
	if err != nil {
		return "", err
	}
	if content == "" {
		// Never cache garbage, whatever the generator impl let through
		return "", &generator.Error{Kind: generator.KindInvalidResponse, Message: "engine returned empty content"}
	}

	c.lru.Add(key, content)
	return content, nil
}

// Len returns the number of live entries, for the metrics endpoint.
func (c *ContentCache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *ContentCache) Purge() {
	c.lru.Purge()
}

func cacheKey(instruction, contentType string) string {
	h := sha256.New()
	h.Write([]byte(contentType))
	h.Write([]byte{0})
	h.Write([]byte(instruction))
	return fmt.Sprintf("%x", h.Sum(nil))
}
