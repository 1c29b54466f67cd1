// Package cache implements the response cache: final assistant replies
// keyed by the role-scoped hash of the normalized query, with a TTL and a
// wholesale invalidation hook for mutating tool calls.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/store"
)

// DefaultTTL is how long a cached reply stays servable.
const DefaultTTL = 5 * time.Minute

// Cache wraps a CacheStore with TTL semantics. Expired entries are treated
// as absent; physical cleanup is left to InvalidateAll.
type Cache struct {
	store store.CacheStore
	ttl   time.Duration
	now   func() time.Time
}

// New builds a cache with the given TTL. ttl <= 0 selects DefaultTTL.
func New(s store.CacheStore, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, ttl: ttl, now: time.Now}
}

// Lookup returns the cached reply for a key, or nil on a miss. An entry
// past its expiry is a miss.
func (c *Cache) Lookup(ctx context.Context, key string) (*domain.CachedReply, error) {
	entry, err := c.store.GetCached(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if entry == nil || !c.now().UTC().Before(entry.ExpiresAt) {
		return nil, nil
	}
	return entry, nil
}

// Store upserts a reply under the given key with a fresh TTL.
func (c *Cache) Store(ctx context.Context, key, normalizedQuery, reply, toolUsed string) error {
	now := c.now().UTC()
	entry := &domain.CachedReply{
		Key:       key,
		Query:     normalizedQuery,
		Reply:     reply,
		ToolUsed:  toolUsed,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	if err := c.store.PutCached(ctx, entry); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// InvalidateAll drops every cached reply. Called after any successful
// mutating tool execution, since a write anywhere may stale any answer.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	if err := c.store.ClearCache(ctx); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
