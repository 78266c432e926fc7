package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/phonolite/phonolite/internal/httpclient"
	"github.com/phonolite/phonolite/internal/provider"
)

// ProxyProvider forwards every capability to another server speaking
// the phonolite protocol, turning a remote instance into a local
// backend. The album listing is the remote's; nothing is cached here
// (layer a Cached decorator on top for that).
type ProxyProvider struct {
	base    string
	auth    string
	client  *httpclient.Client
	timeout time.Duration
}

// NewProxy builds the backend. timeout bounds each upstream call; a
// zero timeout disables the per-call deadline.
func NewProxy(baseURL, auth string, client *httpclient.Client, timeout time.Duration) *ProxyProvider {
	if client == nil {
		client = httpclient.NewClient(nil, 0)
	}
	return &ProxyProvider{
		base:    strings.TrimRight(baseURL, "/"),
		auth:    auth,
		client:  client,
		timeout: timeout,
	}
}

var _ provider.Provider = (*ProxyProvider)(nil)

func (p *ProxyProvider) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *ProxyProvider) Albums(ctx context.Context) ([]string, error) {
	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	resp, err := get(ctx, p.client, p.base+"/albums", p.auth, provider.FullRange())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var albums []string
	if err := json.NewDecoder(resp.Body).Decode(&albums); err != nil {
		return nil, provider.NewBackendError(provider.BackendTransport, err)
	}
	return albums, nil
}

func (p *ProxyProvider) HasAlbum(ctx context.Context, albumID string) bool {
	albums, err := p.Albums(ctx)
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

func (p *ProxyProvider) GetAudioInfo(ctx context.Context, ref provider.TrackRef) (provider.AudioInfo, error) {
	ctx, cancel := p.withDeadline(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.trackURL(ref), nil)
	if err != nil {
		return provider.AudioInfo{}, provider.NewBackendError(provider.BackendTransport, err)
	}
	if p.auth != "" {
		req.Header.Set("Authorization", p.auth)
	}
	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return provider.AudioInfo{}, mapTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return provider.AudioInfo{}, mapStatusError(resp.StatusCode)
	}
	return infoFromHeaders(resp)
}

// GetAudio opens a ranged read against the upstream track endpoint.
// The per-call deadline only bounds the request/response handshake;
// the body streams on the caller's context.
func (p *ProxyProvider) GetAudio(ctx context.Context, ref provider.TrackRef, rng provider.Range) (*provider.AudioReader, error) {
	resp, err := streamGet(ctx, p.client, p.trackURL(ref), p.auth, rng, p.timeout)
	if err != nil {
		return nil, err
	}

	info, err := infoFromHeaders(resp)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	return &provider.AudioReader{
		Info:  info,
		Range: resolveRange(resp),
		Body:  resp.Body,
	}, nil
}

func (p *ProxyProvider) GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/%s/cover", p.base, albumID)
	if disc > 0 {
		url = fmt.Sprintf("%s/%s/%d/cover", p.base, albumID, disc)
	}
	resp, err := streamGet(ctx, p.client, url, p.auth, provider.FullRange(), p.timeout)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Reload is a no-op: the upstream owns its own state.
func (p *ProxyProvider) Reload(ctx context.Context) error {
	return nil
}

func (p *ProxyProvider) trackURL(ref provider.TrackRef) string {
	return fmt.Sprintf("%s/%s/%d/%d", p.base, ref.AlbumID, ref.Disc, ref.Track)
}

// infoFromHeaders rebuilds AudioInfo from the protocol's out-of-band
// headers.
func infoFromHeaders(resp *http.Response) (provider.AudioInfo, error) {
	info := provider.AudioInfo{Extension: "flac"}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if ext, ok := strings.CutPrefix(ct, "audio/"); ok {
			if ext == "mpeg" {
				ext = "mp3"
			}
			info.Extension = ext
		}
	}
	if v := resp.Header.Get(headerOriginSize); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return info, provider.NewBackendError(provider.BackendTransport,
				fmt.Errorf("bad %s header %q", headerOriginSize, v))
		}
		info.Size = size
	}
	if v := resp.Header.Get(headerDurationMillis); v != "" {
		millis, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return info, provider.NewBackendError(provider.BackendTransport,
				fmt.Errorf("bad %s header %q", headerDurationMillis, v))
		}
		info.DurationMillis = millis
	}
	return info, nil
}
