package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/phonolite/phonolite/internal/provider"
)

// Structure is the read-only oracle the strict layout is validated
// against: the declared disc count and per-disc track counts of each
// album.
type Structure interface {
	AlbumInfo(ctx context.Context, albumID string) (provider.AlbumInfo, error)
}

// StrictProvider enforces a fixed on-disk layout:
//
//	root/<shard...>/<album-uuid>/<disc>/<track>.<ext>
//
// with `layer` levels of shard folders above each album folder. Every
// album discovered at reload is validated against the repository's
// declared structure; any mismatch fails the whole reload with
// ErrInvalidLayout rather than serving a partial listing. Flexibility
// is traded for early detection of operator misconfiguration.
type StrictProvider struct {
	root      string
	layer     int
	structure Structure

	mu     sync.RWMutex
	albums map[string]string // album id -> folder
}

// NewStrict scans and validates root, failing fast on layout errors.
func NewStrict(root string, layer int, structure Structure) (*StrictProvider, error) {
	p := &StrictProvider{root: root, layer: layer, structure: structure}
	if err := p.Reload(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

var _ provider.Provider = (*StrictProvider)(nil)

func (p *StrictProvider) albumDir(albumID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	dir, ok := p.albums[albumID]
	if !ok {
		return "", provider.ErrNotFound
	}
	return dir, nil
}

func (p *StrictProvider) Albums(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.albums))
	for id := range p.albums {
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *StrictProvider) HasAlbum(ctx context.Context, albumID string) bool {
	_, err := p.albumDir(albumID)
	return err == nil
}

func (p *StrictProvider) GetAudioInfo(ctx context.Context, ref provider.TrackRef) (provider.AudioInfo, error) {
	r, err := p.GetAudio(ctx, ref, provider.FlacHeaderRange())
	if err != nil {
		return provider.AudioInfo{}, err
	}
	defer r.Close()
	return r.Info, nil
}

func (p *StrictProvider) GetAudio(ctx context.Context, ref provider.TrackRef, rng provider.Range) (*provider.AudioReader, error) {
	albumDir, err := p.albumDir(ref.AlbumID)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(albumDir, strconv.Itoa(int(ref.Disc)))
	path, err := trackFile(dir, ref.Track)
	if err != nil {
		return nil, err
	}
	return openRange(path, rng)
}

func (p *StrictProvider) GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error) {
	albumDir, err := p.albumDir(albumID)
	if err != nil {
		return nil, err
	}
	dir := albumDir
	if disc > 0 {
		dir = filepath.Join(albumDir, strconv.Itoa(disc))
	}
	f, err := os.Open(filepath.Join(dir, coverFile))
	if err != nil {
		return nil, mapFSError(err)
	}
	return f, nil
}

// Reload re-walks the sharded tree and re-validates every album. The
// album table is swapped wholesale only after the full tree validates.
func (p *StrictProvider) Reload(ctx context.Context) error {
	type level struct {
		dir   string
		depth int
	}

	albums := make(map[string]string)
	queue := []level{{dir: p.root, depth: 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(cur.dir)
		if err != nil {
			return mapFSError(err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			path := filepath.Join(cur.dir, e.Name())
			if cur.depth < p.layer {
				queue = append(queue, level{dir: path, depth: cur.depth + 1})
				continue
			}
			id, err := uuid.Parse(e.Name())
			if err != nil {
				return fmt.Errorf("%w: folder %s is not an album id", provider.ErrInvalidLayout, path)
			}
			if err := p.validateAlbum(ctx, id.String(), path); err != nil {
				return err
			}
			albums[id.String()] = path
		}
	}

	p.mu.Lock()
	p.albums = albums
	p.mu.Unlock()
	return nil
}

// validateAlbum checks one album folder against its declared
// structure: a numbered subfolder per disc, a track file per declared
// track.
func (p *StrictProvider) validateAlbum(ctx context.Context, albumID, dir string) error {
	info, err := p.structure.AlbumInfo(ctx, albumID)
	if err != nil {
		return fmt.Errorf("%w: album %s at %s: %v", provider.ErrInvalidLayout, albumID, dir, err)
	}

	for disc := 1; disc <= info.DiscCount; disc++ {
		discPath := filepath.Join(dir, strconv.Itoa(disc))
		stat, err := os.Stat(discPath)
		if err != nil || !stat.IsDir() {
			return fmt.Errorf("%w: album %s is missing disc folder %s", provider.ErrInvalidLayout, albumID, discPath)
		}
		for track := 1; track <= info.TrackCounts[disc-1]; track++ {
			if _, err := trackFile(discPath, uint8(track)); err != nil {
				if errors.Is(err, provider.ErrNotFound) {
					return fmt.Errorf("%w: album %s is missing track %d of disc %d", provider.ErrInvalidLayout, albumID, track, disc)
				}
				return err
			}
		}
	}
	return nil
}
