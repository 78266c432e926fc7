package provider

import (
	"context"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Cached decorates any Provider with a bounded LRU cache of expensive
// lookups: the album listing and resolved AudioInfo per track. Audio
// payload bytes are never cached; GetAudio stays a passthrough so
// range reads keep their streaming semantics.
//
// Entries have no TTL. Invalidation is explicit, via Reload or
// targeted eviction, since catalog changes are operator-driven.
type Cached struct {
	inner Provider
	infos *lru.Cache[TrackRef, AudioInfo]
	group singleflight.Group

	mu     sync.RWMutex
	albums []string // nil when not cached
}

// NewCached wraps inner with an AudioInfo cache of the given capacity.
func NewCached(inner Provider, capacity int) (*Cached, error) {
	infos, err := lru.New[TrackRef, AudioInfo](capacity)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, infos: infos}, nil
}

var _ Provider = (*Cached)(nil)

// Albums returns the cached album listing, filling it from the inner
// provider at most once regardless of how many callers miss
// concurrently.
func (c *Cached) Albums(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	cached := c.albums
	c.mu.RUnlock()
	if cached != nil {
		return append([]string(nil), cached...), nil
	}

	v, err := c.coalesce(ctx, "albums", func() (interface{}, error) {
		albums, err := c.inner.Albums(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.albums = albums
		c.mu.Unlock()
		return albums, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.([]string)...), nil
}

func (c *Cached) HasAlbum(ctx context.Context, albumID string) bool {
	albums, err := c.Albums(ctx)
	if err != nil {
		return false
	}
	for _, id := range albums {
		if id == albumID {
			return true
		}
	}
	return false
}

// GetAudioInfo resolves track metadata through the cache. Concurrent
// misses for the same track coalesce into a single backend lookup; the
// key's in-flight call acts as the gate other callers wait on.
func (c *Cached) GetAudioInfo(ctx context.Context, ref TrackRef) (AudioInfo, error) {
	if info, ok := c.infos.Get(ref); ok {
		return info, nil
	}

	v, err := c.coalesce(ctx, ref.String(), func() (interface{}, error) {
		info, err := c.inner.GetAudioInfo(ctx, ref)
		if err != nil {
			return nil, err
		}
		c.infos.Add(ref, info)
		return info, nil
	})
	if err != nil {
		return AudioInfo{}, err
	}
	return v.(AudioInfo), nil
}

// GetAudio passes the read through and primes the AudioInfo cache from
// the resolved result.
func (c *Cached) GetAudio(ctx context.Context, ref TrackRef, rng Range) (*AudioReader, error) {
	r, err := c.inner.GetAudio(ctx, ref, rng)
	if err != nil {
		return nil, err
	}
	if r.Info.Size > 0 {
		c.infos.Add(ref, r.Info)
	}
	return r, nil
}

func (c *Cached) GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error) {
	return c.inner.GetCover(ctx, albumID, disc)
}

// Reload reloads the inner provider and drops every cache entry.
func (c *Cached) Reload(ctx context.Context) error {
	if err := c.inner.Reload(ctx); err != nil {
		return err
	}
	c.Purge()
	return nil
}

// Invalidate evicts the cached AudioInfo of one track.
func (c *Cached) Invalidate(ref TrackRef) {
	c.infos.Remove(ref)
}

// Purge drops the album listing and every cached AudioInfo.
func (c *Cached) Purge() {
	c.mu.Lock()
	c.albums = nil
	c.mu.Unlock()
	c.infos.Purge()
}

// coalesce runs fn once per in-flight key. Waiters observe the leader's
// result through a channel so an individual caller's cancellation only
// abandons its own wait.
func (c *Cached) coalesce(ctx context.Context, key string, fn func() (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, fn)
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
