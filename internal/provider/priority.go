package provider

import (
	"context"
	"errors"
	"io"
	"sort"
)

// Backend is one registered storage backend plus its precedence rank.
type Backend struct {
	Name     string
	Priority int
	Provider Provider
}

// Priority composes multiple backends into one logical provider with
// explicit precedence. Resolution walks backends in descending
// priority and returns the first success; a lower-priority backend is
// consulted only when a higher one reports ErrNotFound. Backend
// transport failures and layout errors surface directly instead of
// silently falling back, so an outage on the preferred tier stays
// visible to the operator.
type Priority struct {
	backends []Backend
}

// NewPriority builds the combinator. Backends sort by descending
// priority; registration order breaks ties.
func NewPriority(backends ...Backend) *Priority {
	sorted := append([]Backend(nil), backends...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	return &Priority{backends: sorted}
}

var _ Provider = (*Priority)(nil)

// Backends returns the composed backends in precedence order.
func (p *Priority) Backends() []Backend {
	return append([]Backend(nil), p.backends...)
}

// Albums merges the listings of all backends. An album reported by
// several backends appears once and belongs, for resolution purposes,
// to the highest-priority backend that serves it.
func (p *Priority) Albums(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var albums []string
	for _, b := range p.backends {
		ids, err := b.Provider.Albums(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			albums = append(albums, id)
		}
	}
	return albums, nil
}

func (p *Priority) HasAlbum(ctx context.Context, albumID string) bool {
	for _, b := range p.backends {
		if b.Provider.HasAlbum(ctx, albumID) {
			return true
		}
	}
	return false
}

func (p *Priority) GetAudioInfo(ctx context.Context, ref TrackRef) (AudioInfo, error) {
	for _, b := range p.backends {
		info, err := b.Provider.GetAudioInfo(ctx, ref)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return AudioInfo{}, err
		}
	}
	return AudioInfo{}, ErrNotFound
}

func (p *Priority) GetAudio(ctx context.Context, ref TrackRef, rng Range) (*AudioReader, error) {
	for _, b := range p.backends {
		r, err := b.Provider.GetAudio(ctx, ref, rng)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (p *Priority) GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error) {
	for _, b := range p.backends {
		r, err := b.Provider.GetCover(ctx, albumID, disc)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

// Reload reloads every backend. All backends are attempted; the last
// error wins.
func (p *Priority) Reload(ctx context.Context) error {
	var last error
	for _, b := range p.backends {
		if err := b.Provider.Reload(ctx); err != nil {
			last = err
		}
	}
	return last
}
