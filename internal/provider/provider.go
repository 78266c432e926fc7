// Package provider defines the storage backend abstraction of the
// library: a capability set every audio source satisfies, value types
// addressing albums/discs/tracks, byte-range read semantics, and the
// decorators composing backends (caching, priority merging).
package provider

import (
	"context"
	"io"
)

// Provider is the capability set every storage backend satisfies:
// resolve a track into metadata plus a range-readable byte source,
// list available albums, serve cover art, and re-scan backend state.
//
// Reload must be safe to call concurrently with in-flight reads:
// readers keep the source they already resolved, new reads observe the
// post-reload state.
type Provider interface {
	// Albums lists the album ids the backend can serve.
	Albums(ctx context.Context) ([]string, error)

	// HasAlbum reports whether the backend serves the given album.
	HasAlbum(ctx context.Context, albumID string) bool

	// GetAudioInfo resolves track metadata without transferring audio.
	GetAudioInfo(ctx context.Context, ref TrackRef) (AudioInfo, error)

	// GetAudio resolves a track and opens a byte source covering rng.
	// The caller owns the returned reader.
	GetAudio(ctx context.Context, ref TrackRef, rng Range) (*AudioReader, error)

	// GetCover opens the cover art of an album, or of one disc when
	// disc > 0.
	GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error)

	// Reload re-scans backend state.
	Reload(ctx context.Context) error
}
