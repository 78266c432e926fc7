package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/phonolite/phonolite/internal/httpclient"
	"github.com/phonolite/phonolite/internal/provider"
)

// driveIndex is the drive listing document the backend navigates by:
// album folders keyed by id, each with per-disc file listings.
type driveIndex struct {
	Albums map[string]driveAlbum `json:"albums"`
}

type driveAlbum struct {
	Discs []driveDisc `json:"discs"`
	Cover string      `json:"cover,omitempty"`
}

type driveDisc struct {
	Tracks []string `json:"tracks"`
	Cover  string   `json:"cover,omitempty"`
}

// DriveProvider serves audio from a remote drive exposing its folder
// tree as a JSON index plus range-readable file downloads. Reload
// refetches the index; file reads resolve paths against the snapshot
// they started with.
type DriveProvider struct {
	base    string
	auth    string
	client  *httpclient.Client
	timeout time.Duration

	mu    sync.RWMutex
	index driveIndex
}

// NewDrive fetches the initial index and builds the backend.
func NewDrive(ctx context.Context, baseURL, auth string, client *httpclient.Client, timeout time.Duration) (*DriveProvider, error) {
	if client == nil {
		client = httpclient.NewClient(nil, 0)
	}
	p := &DriveProvider{
		base:    strings.TrimRight(baseURL, "/"),
		auth:    auth,
		client:  client,
		timeout: timeout,
	}
	if err := p.Reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

var _ provider.Provider = (*DriveProvider)(nil)

func (p *DriveProvider) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *DriveProvider) snapshot() driveIndex {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.index
}

func (p *DriveProvider) Albums(ctx context.Context) ([]string, error) {
	index := p.snapshot()
	ids := make([]string, 0, len(index.Albums))
	for id := range index.Albums {
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *DriveProvider) HasAlbum(ctx context.Context, albumID string) bool {
	_, ok := p.snapshot().Albums[albumID]
	return ok
}

// trackPath resolves a ref against the index snapshot to the remote
// file path and its extension.
func (p *DriveProvider) trackPath(ref provider.TrackRef) (string, string, error) {
	album, ok := p.snapshot().Albums[ref.AlbumID]
	if !ok {
		return "", "", provider.ErrNotFound
	}
	if ref.Disc < 1 || int(ref.Disc) > len(album.Discs) {
		return "", "", provider.ErrNotFound
	}
	disc := album.Discs[ref.Disc-1]
	if ref.Track < 1 || int(ref.Track) > len(disc.Tracks) {
		return "", "", provider.ErrNotFound
	}
	name := disc.Tracks[ref.Track-1]
	ext := strings.TrimPrefix(path.Ext(name), ".")
	return fmt.Sprintf("%s/%s/%d/%s", p.base, ref.AlbumID, ref.Disc, name), ext, nil
}

func (p *DriveProvider) GetAudioInfo(ctx context.Context, ref provider.TrackRef) (provider.AudioInfo, error) {
	r, err := p.GetAudio(ctx, ref, provider.FlacHeaderRange())
	if err != nil {
		return provider.AudioInfo{}, err
	}
	defer r.Close()
	return r.Info, nil
}

func (p *DriveProvider) GetAudio(ctx context.Context, ref provider.TrackRef, rng provider.Range) (*provider.AudioReader, error) {
	url, ext, err := p.trackPath(ref)
	if err != nil {
		return nil, err
	}

	resp, err := streamGet(ctx, p.client, url, p.auth, rng, p.timeout)
	if err != nil {
		return nil, err
	}

	resolved := resolveRange(resp)
	size := resolved.Total
	if size < 0 {
		size = resp.ContentLength
	}

	duration, body, err := provider.ProbeDuration(resp.Body, resolved, ext)
	if err != nil {
		return nil, err
	}

	return &provider.AudioReader{
		Info: provider.AudioInfo{
			Extension:      ext,
			Size:           size,
			DurationMillis: duration,
		},
		Range: resolved,
		Body:  body,
	}, nil
}

func (p *DriveProvider) GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error) {
	album, ok := p.snapshot().Albums[albumID]
	if !ok {
		return nil, provider.ErrNotFound
	}

	var url string
	switch {
	case disc > 0:
		if disc > len(album.Discs) || album.Discs[disc-1].Cover == "" {
			return nil, provider.ErrNotFound
		}
		url = fmt.Sprintf("%s/%s/%d/%s", p.base, albumID, disc, album.Discs[disc-1].Cover)
	case album.Cover != "":
		url = fmt.Sprintf("%s/%s/%s", p.base, albumID, album.Cover)
	default:
		return nil, provider.ErrNotFound
	}

	resp, err := streamGet(ctx, p.client, url, p.auth, provider.FullRange(), p.timeout)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Reload refetches the index document and swaps it wholesale.
func (p *DriveProvider) Reload(ctx context.Context) error {
	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := get(ctx, p.client, p.base+"/index.json", p.auth, provider.FullRange())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var index driveIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return provider.NewBackendError(provider.BackendTransport, err)
	}

	p.mu.Lock()
	p.index = index
	p.mu.Unlock()
	return nil
}
