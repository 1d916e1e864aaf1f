package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// minVersionTTL is the shortest lifetime of a version key. It must outlive any
// read that started before the version was bumped.
const minVersionTTL = 24 * time.Hour

// ViewCache is a generic JSON-backed Redis cache for read model projections.
// Bind it to a specific view type T; pass ttl 0 for keys that never expire.
//
// Every id has a version counter next to its value. Delete bumps the counter,
// and SetIfVersion only writes when the counter still holds the value read
// before the caller loaded from the source of truth, so a fill racing an
// invalidation is dropped.
type ViewCache[T any] struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewViewCache creates a ViewCache whose keys are prefix+id.
func NewViewCache[T any](client *goredis.Client, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *ViewCache[T]) key(id string) string        { return c.prefix + id }
func (c *ViewCache[T]) versionKey(id string) string { return c.prefix + id + ":version" }

func (c *ViewCache[T]) versionTTL() time.Duration {
	if c.ttl == 0 {
		return 0
	}
	if 2*c.ttl > minVersionTTL {
		return 2 * c.ttl
	}
	return minVersionTTL
}

// Get retrieves and unmarshals the value stored under id.
// Returns (nil, false) on a miss; lookup and decode errors count as misses.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			log.Printf("ViewCache: read error for key %s: %v", c.key(id), err)
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("ViewCache: decode error for key %s: %v", c.key(id), err)
		return nil, false
	}
	return &v, true
}

// Version returns the current version of id. ok is false when Redis could not
// be read; such a version must not be passed to SetIfVersion.
func (c *ViewCache[T]) Version(ctx context.Context, id string) (version int64, ok bool) {
	version, err := c.client.Get(ctx, c.versionKey(id)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, true
	}
	if err != nil {
		log.Printf("ViewCache: version read error for key %s: %v", c.versionKey(id), err)
		return 0, false
	}
	return version, true
}

// SetIfVersion stores value under id unless id was deleted since version was
// read. It reports whether the value was written; errors are logged.
func (c *ViewCache[T]) SetIfVersion(ctx context.Context, id string, version int64, value *T) bool {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("ViewCache: marshal error for key %s: %v", c.key(id), err)
		return false
	}

	stale := false
	versionKey := c.versionKey(id)
	err = c.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if current != version {
			stale = true
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, c.key(id), data, c.ttl)
			return nil
		})
		return err
	}, versionKey)

	switch {
	case errors.Is(err, goredis.TxFailedErr):
		return false
	case err != nil:
		log.Printf("ViewCache: write error for key %s: %v", c.key(id), err)
		return false
	}
	return !stale
}

// Delete removes the entries for ids and bumps their versions in one
// transaction.
func (c *ViewCache[T]) Delete(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	versionTTL := c.versionTTL()
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, c.versionKey(id))
			if versionTTL > 0 {
				pipe.Expire(ctx, c.versionKey(id), versionTTL)
			}
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		log.Printf("ViewCache: delete error for keys %v: %v", keys, err)
	}
}
