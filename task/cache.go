package task

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sobebarali/mini-task-tracker/cache"
)

// DefaultListTTL bounds staleness when invalidation cannot reach the cache
// store: entries expire on their own after this long.
const DefaultListTTL = 300 * time.Second

// ListResult is the payload cached and returned for a task listing.
type ListResult struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// listEnvelope mirrors the HTTP response shape so a cache hit can be handed
// to the transport layer without re-wrapping. Only success payloads are ever
// written, so Error is always null on the wire.
type listEnvelope struct {
	Data  *ListResult `json:"data"`
	Error any         `json:"error"`
}

// ListCache is a read-through cache over an owner's task listings. It treats
// the backing store as best-effort: every cache failure degrades to a direct
// repository read, never to a request failure.
type ListCache struct {
	store  cache.Store
	ttl    time.Duration
	logger *slog.Logger
}

// ListCacheOption configures a ListCache.
type ListCacheOption func(*ListCache)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) ListCacheOption {
	return func(c *ListCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger injects the logger used for swallowed cache failures.
func WithLogger(logger *slog.Logger) ListCacheOption {
	return func(c *ListCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewListCache wraps a cache store. A nil store disables caching entirely;
// Fetch then always calls through to the loader.
func NewListCache(store cache.Store, opts ...ListCacheOption) *ListCache {
	c := &ListCache{
		store:  store,
		ttl:    DefaultListTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Fetch returns the cached listing for (owner, filters) or, on a miss, runs
// load and populates the cache with its result. A corrupt or unreadable
// entry counts as a miss. Only load errors propagate; populate failures are
// logged and the fresh result is returned regardless.
func (c *ListCache) Fetch(ctx context.Context, owner string, f Filters, load func(context.Context) (ListResult, error)) (ListResult, error) {
	if c.store == nil {
		return load(ctx)
	}

	key := ListKey(owner, f)

	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}

	result, err := load(ctx)
	if err != nil {
		return ListResult{}, err
	}

	c.populate(ctx, key, result)
	return result, nil
}

func (c *ListCache) lookup(ctx context.Context, key string) (ListResult, bool) {
	payload, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.WarnContext(ctx, "task list cache get failed", "key", key, "error", err)
		}
		return ListResult{}, false
	}

	var env listEnvelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Data == nil {
		c.logger.WarnContext(ctx, "task list cache entry corrupt, treating as miss", "key", key)
		return ListResult{}, false
	}
	return *env.Data, true
}

func (c *ListCache) populate(ctx context.Context, key string, result ListResult) {
	payload, err := json.Marshal(listEnvelope{Data: &result})
	if err != nil {
		c.logger.WarnContext(ctx, "task list cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "task list cache populate failed", "key", key, "error", err)
	}
}

// Invalidate removes every cached listing for the owner: the canonical
// no-filter key plus everything under the owner wildcard. It is called after
// each committed mutation and never fails the caller; an unreachable cache
// store self-heals via TTL expiry.
func (c *ListCache) Invalidate(ctx context.Context, owner string) {
	if c.store == nil {
		return
	}

	// The wildcard already covers the bare key, but delete it directly too so
	// invalidation does not depend on the scan finding it.
	if err := c.store.Delete(ctx, ListKey(owner, Filters{})); err != nil && !errors.Is(err, cache.ErrNotFound) {
		c.logger.WarnContext(ctx, "task list cache delete failed", "owner", owner, "error", err)
	}

	keys, err := c.store.Keys(ctx, OwnerPattern(owner))
	if err != nil {
		c.logger.WarnContext(ctx, "task list cache scan failed", "owner", owner, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if _, err := c.store.DeleteMany(ctx, keys...); err != nil {
		c.logger.WarnContext(ctx, "task list cache batch delete failed", "owner", owner, "keys", len(keys), "error", err)
	}
}
