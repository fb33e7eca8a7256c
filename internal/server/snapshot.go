package server

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/analytics"
)

// SnapshotCacheKey is the default disk cache key for the dashboard payload
const SnapshotCacheKey = "dashboard"

// Builder produces a fresh dashboard payload
type Builder func(ctx context.Context) (*analytics.Payload, error)

// Snapshot is one built payload together with its JSON encoding.
// ID changes on every build and doubles as the ETag.
type Snapshot struct {
	ID      string
	Payload *analytics.Payload
	Data    []byte
	BuiltAt time.Time
}

// SnapshotCache holds the current snapshot and rebuilds it once it is older
// than the TTL. Concurrent rebuilds share a single Builder call.
type SnapshotCache struct {
	build Builder
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	current *Snapshot
	group   singleflight.Group

	store      *internal.CacheManager
	key        string
	sourcePath string
}

// NewSnapshotCache creates an empty cache around build
func NewSnapshotCache(build Builder, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		build: build,
		ttl:   ttl,
		now:   time.Now,
		key:   SnapshotCacheKey,
	}
}

// UseStore persists every build to store under key, tied to sourcePath.
// An empty key keeps SnapshotCacheKey.
func (c *SnapshotCache) UseStore(store *internal.CacheManager, key, sourcePath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = store
	c.sourcePath = sourcePath
	if key != "" {
		c.key = key
	}
}

// Warm loads the stored snapshot when it is still valid for the source file
// and younger than the TTL. It reports whether the cache was filled.
func (c *SnapshotCache) Warm() bool {
	c.mu.RLock()
	store, key, source := c.store, c.key, c.sourcePath
	c.mu.RUnlock()
	if store == nil {
		return false
	}

	valid, err := store.IsCacheValid(key, source, c.ttl)
	if err != nil {
		internal.LogWarn("failed to check snapshot cache: %v", err)
		return false
	}
	if !valid {
		return false
	}

	var payload analytics.Payload
	if err := store.LoadSnapshot(key, &payload); err != nil {
		internal.LogWarn("failed to load cached snapshot: %v", err)
		return false
	}
	snap, err := c.newSnapshot(&payload)
	if err != nil {
		internal.LogWarn("failed to encode cached snapshot: %v", err)
		return false
	}

	c.mu.Lock()
	c.current = snap
	c.mu.Unlock()
	internal.LogInfo("loaded cached snapshot generated at %s", payload.GeneratedAt)
	return true
}

// Get returns the current snapshot, rebuilding it when missing or stale
func (c *SnapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.RLock()
	snap := c.current
	c.mu.RUnlock()
	if snap != nil && c.now().Sub(snap.BuiltAt) < c.ttl {
		return snap, nil
	}
	return c.rebuild(ctx)
}

// Refresh rebuilds regardless of freshness
func (c *SnapshotCache) Refresh(ctx context.Context) (*Snapshot, error) {
	return c.rebuild(ctx)
}

// Current returns the last published snapshot without building
func (c *SnapshotCache) Current() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *SnapshotCache) rebuild(ctx context.Context) (*Snapshot, error) {
	v, err, shared := c.group.Do("build", func() (interface{}, error) {
		started := c.now()
		// waiters share this build, so it ignores the first caller's cancellation
		payload, err := c.build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		snap, err := c.newSnapshot(payload)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.current = snap
		store, key, source := c.store, c.key, c.sourcePath
		c.mu.Unlock()

		internal.LogInfo("built dashboard snapshot %s in %s", snap.ID, c.now().Sub(started).Round(time.Millisecond))
		if store != nil {
			if err := store.SaveSnapshot(key, source, payload); err != nil {
				internal.LogWarn("failed to save snapshot cache: %v", err)
			}
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		internal.LogDebug("joined in-flight snapshot build")
	}
	return v.(*Snapshot), nil
}

func (c *SnapshotCache) newSnapshot(payload *analytics.Payload) (*Snapshot, error) {
	data, err := encodePayload(payload)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:      uuid.NewString(),
		Payload: payload,
		Data:    data,
		BuiltAt: c.now(),
	}, nil
}

// encodePayload marshals without HTML escaping so the data can be embedded
// in the dashboard script verbatim
func encodePayload(payload *analytics.Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
