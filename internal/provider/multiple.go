package provider

import (
	"context"
	"io"
)

// Multiple combines providers as a flat union without precedence.
// Each request routes to the first provider that serves the album.
type Multiple struct {
	providers []Provider
}

// NewMultiple builds the combinator.
func NewMultiple(providers ...Provider) *Multiple {
	return &Multiple{providers: providers}
}

var _ Provider = (*Multiple)(nil)

func (m *Multiple) Albums(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var albums []string
	for _, p := range m.providers {
		ids, err := p.Albums(ctx)
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

func (m *Multiple) HasAlbum(ctx context.Context, albumID string) bool {
	for _, p := range m.providers {
		if p.HasAlbum(ctx, albumID) {
			return true
		}
	}
	return false
}

func (m *Multiple) GetAudioInfo(ctx context.Context, ref TrackRef) (AudioInfo, error) {
	for _, p := range m.providers {
		if p.HasAlbum(ctx, ref.AlbumID) {
			return p.GetAudioInfo(ctx, ref)
		}
	}
	return AudioInfo{}, ErrNotFound
}

func (m *Multiple) GetAudio(ctx context.Context, ref TrackRef, rng Range) (*AudioReader, error) {
	for _, p := range m.providers {
		if p.HasAlbum(ctx, ref.AlbumID) {
			return p.GetAudio(ctx, ref, rng)
		}
	}
	return nil, ErrNotFound
}

func (m *Multiple) GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error) {
	for _, p := range m.providers {
		if p.HasAlbum(ctx, albumID) {
			return p.GetCover(ctx, albumID, disc)
		}
	}
	return nil, ErrNotFound
}

func (m *Multiple) Reload(ctx context.Context) error {
	var last error
	for _, p := range m.providers {
		if err := p.Reload(ctx); err != nil {
			last = err
		}
	}
	return last
}
