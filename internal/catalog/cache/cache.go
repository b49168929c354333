package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sisvita/internal/catalog"
	id "sisvita/pkg/domain"
)

const (
	catalogKeyPrefix = "catalog:"
	defaultTTL       = 15 * time.Minute
)

// CachedStore is a Redis read-through wrapper over a catalog store.
// Reference data is small and near-immutable, so misses and cache
// failures simply fall through to the backing store.
type CachedStore struct {
	next   catalog.Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a CachedStore.
type Option func(*CachedStore)

// WithTTL overrides the default cache entry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedStore) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger for cache failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CachedStore) {
		c.logger = logger
	}
}

// New wraps a catalog store with a Redis cache.
func New(next catalog.Store, client *redis.Client, opts ...Option) *CachedStore {
	c := &CachedStore{
		next:   next,
		client: client,
		ttl:    defaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *CachedStore) FindIDByDescription(ctx context.Context, kind catalog.Kind, description string) (id.CatalogID, error) {
	key := cacheKey(kind, description)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if parsed, parseErr := uuid.Parse(cached); parseErr == nil {
			return id.CatalogID(parsed), nil
		}
		// Corrupt entry; drop it and fall through.
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("catalog cache read failed", "key", key, "error", err)
	}

	catalogID, err := c.next.FindIDByDescription(ctx, kind, description)
	if err != nil {
		return id.CatalogID{}, err
	}

	if setErr := c.client.Set(ctx, key, catalogID.String(), c.ttl).Err(); setErr != nil {
		c.logger.Warn("catalog cache write failed", "key", key, "error", setErr)
	}
	return catalogID, nil
}

func cacheKey(kind catalog.Kind, description string) string {
	return fmt.Sprintf("%s%s:%s", catalogKeyPrefix, kind, strings.ToLower(strings.TrimSpace(description)))
}
