package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

// Store abstracts persistence for cached snapshots.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Subscriber is notified after a tag invalidation with the keys that were
// dropped. The refetch worker uses this to re-prime list snapshots.
type Subscriber func(tag string, keys []string)

// Cache is the snapshot cache shared by every list view: key -> snapshot,
// plus a tag index so a successful write can drop all dependent snapshots in
// one call. Entries are only replaced wholesale; nothing mutates a snapshot
// in place.
type Cache struct {
	store   Store
	ttl     time.Duration
	enabled bool
	logger  *zap.Logger

	// OnLookup, when set, observes hit/miss outcomes.
	OnLookup func(hit bool, duration time.Duration)

	mu      sync.Mutex
	tags    map[string]map[string]struct{}
	keyTags map[string][]string
	subs    []Subscriber
}

// New constructs a cache over the given store.
func New(store Store, ttl time.Duration, enabled bool, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		store:   store,
		ttl:     ttl,
		enabled: enabled,
		logger:  logger,
		tags:    make(map[string]map[string]struct{}),
		keyTags: make(map[string][]string),
	}
}

// Enabled indicates whether caching is active.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled && c.store != nil
}

// Subscribe registers an invalidation subscriber.
func (c *Cache) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Get attempts to load a snapshot. It returns true on a hit.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	start := time.Now()
	err := c.store.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		if c.OnLookup != nil {
			c.OnLookup(false, duration)
		}
		if appErrors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	if c.OnLookup != nil {
		c.OnLookup(true, duration)
	}
	return true, nil
}

// Set stores a snapshot and indexes it under the given tags.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, tags ...string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.keyTags[key] = append([]string(nil), tags...)
	for _, tag := range tags {
		keys, ok := c.tags[tag]
		if !ok {
			keys = make(map[string]struct{})
			c.tags[tag] = keys
		}
		keys[key] = struct{}{}
	}
	c.mu.Unlock()
	return nil
}

// Invalidate drops every snapshot indexed under the tag and notifies
// subscribers. Writers never touch entries directly; this is the single
// channel through which mutations reach the cache.
func (c *Cache) Invalidate(ctx context.Context, tag string) error {
	if !c.Enabled() {
		return nil
	}

	c.mu.Lock()
	keySet := c.tags[tag]
	delete(c.tags, tag)
	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
		for _, other := range c.keyTags[key] {
			if other != tag {
				if set, ok := c.tags[other]; ok {
					delete(set, key)
				}
			}
		}
		delete(c.keyTags, key)
	}
	subs := append([]Subscriber(nil), c.subs...)
	c.mu.Unlock()

	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
		}
	}

	if len(keys) > 0 {
		for _, fn := range subs {
			fn(tag, keys)
		}
	}
	return nil
}

// List snapshot keys follow "<resource>:<scope>:<id>" ("missions:all" being
// the one unscoped list).

// ListKey builds the snapshot key for a church-scoped list.
func ListKey(resource string, churchID int64) string {
	return fmt.Sprintf("%s:church:%d", resource, churchID)
}

// MissionScopedKey builds the snapshot key for a mission-scoped list.
func MissionScopedKey(resource string, missionID int64) string {
	return fmt.Sprintf("%s:mission:%d", resource, missionID)
}

// AllKey builds the snapshot key for an unscoped list.
func AllKey(resource string) string {
	return resource + ":all"
}

// ParseKey splits a snapshot key into resource, scope and id. The id is 0
// for unscoped keys.
func ParseKey(key string) (resource, scope string, id int64, err error) {
	parts := strings.Split(key, ":")
	switch len(parts) {
	case 2:
		if parts[1] != "all" {
			return "", "", 0, fmt.Errorf("malformed cache key %q", key)
		}
		return parts[0], parts[1], 0, nil
	case 3:
		id, convErr := strconv.ParseInt(parts[2], 10, 64)
		if convErr != nil {
			return "", "", 0, fmt.Errorf("malformed cache key %q", key)
		}
		return parts[0], parts[1], id, nil
	default:
		return "", "", 0, fmt.Errorf("malformed cache key %q", key)
	}
}
