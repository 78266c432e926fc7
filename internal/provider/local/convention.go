package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/phonolite/phonolite/internal/provider"
)

// Provider serves audio from a directory tree where album folders are
// named by their UUID. Discovery is tolerant: folders that do not
// parse as UUIDs are descended into, so operators may group albums
// freely.
type Provider struct {
	root string

	mu     sync.RWMutex
	albums map[string]string // album id -> folder
}

// New scans root and builds the backend.
func New(root string) (*Provider, error) {
	p := &Provider{root: root}
	if err := p.Reload(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

var _ provider.Provider = (*Provider)(nil)

func (p *Provider) albumDir(albumID string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	dir, ok := p.albums[albumID]
	if !ok {
		return "", provider.ErrNotFound
	}
	return dir, nil
}

func (p *Provider) Albums(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.albums))
	for id := range p.albums {
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *Provider) HasAlbum(ctx context.Context, albumID string) bool {
	_, err := p.albumDir(albumID)
	return err == nil
}

func (p *Provider) GetAudioInfo(ctx context.Context, ref provider.TrackRef) (provider.AudioInfo, error) {
	r, err := p.GetAudio(ctx, ref, provider.FlacHeaderRange())
	if err != nil {
		return provider.AudioInfo{}, err
	}
	defer r.Close()
	return r.Info, nil
}

func (p *Provider) GetAudio(ctx context.Context, ref provider.TrackRef, rng provider.Range) (*provider.AudioReader, error) {
	albumDir, err := p.albumDir(ref.AlbumID)
	if err != nil {
		return nil, err
	}
	dir, err := discDir(albumDir, ref.Disc)
	if err != nil {
		return nil, err
	}
	path, err := trackFile(dir, ref.Track)
	if err != nil {
		return nil, err
	}
	return openRange(path, rng)
}

func (p *Provider) GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error) {
	albumDir, err := p.albumDir(albumID)
	if err != nil {
		return nil, err
	}
	dir := albumDir
	if disc > 0 {
		if dir, err = discDir(albumDir, uint8(disc)); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(filepath.Join(dir, coverFile))
	if err != nil {
		return nil, mapFSError(err)
	}
	return f, nil
}

// Reload re-walks the root directory. Reads already resolved against
// the previous scan keep their open files.
func (p *Provider) Reload(ctx context.Context) error {
	albums := make(map[string]string)
	queue := []string{p.root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return mapFSError(err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			path := filepath.Join(dir, e.Name())
			if id, err := uuid.Parse(e.Name()); err == nil {
				albums[id.String()] = path
			} else {
				queue = append(queue, path)
			}
		}
	}

	p.mu.Lock()
	p.albums = albums
	p.mu.Unlock()
	return nil
}
