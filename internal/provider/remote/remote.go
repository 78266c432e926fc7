// Package remote implements the network storage backends: a
// drive-style object backend addressed through a JSON index, and a
// proxy backend that forwards to another phonolite-protocol server.
// Both speak plain byte-range HTTP and share the rate-limited
// retrying client.
package remote

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/phonolite/phonolite/internal/httpclient"
	"github.com/phonolite/phonolite/internal/provider"
)

// Response headers the phonolite serving protocol uses to carry audio
// metadata out of band.
const (
	headerOriginSize     = "X-Origin-Size"
	headerDurationMillis = "X-Duration-Millis"
)

// mapTransportError converts a client-side request failure to the
// provider taxonomy. Deadline hits become retryable timeouts.
func mapTransportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return provider.NewBackendError(provider.BackendTimeout, err)
	}
	return provider.NewBackendError(provider.BackendTransport, err)
}

// mapStatusError converts a non-success HTTP status to the provider
// taxonomy.
func mapStatusError(status int) error {
	switch status {
	case http.StatusNotFound:
		return provider.ErrNotFound
	case http.StatusRequestedRangeNotSatisfiable:
		return provider.ErrInvalidRange
	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.NewBackendError(provider.BackendPermissionDenied,
			errors.New(http.StatusText(status)))
	case http.StatusGatewayTimeout:
		return provider.NewBackendError(provider.BackendTimeout,
			errors.New(http.StatusText(status)))
	default:
		return provider.NewBackendError(provider.BackendTransport,
			errors.New("unexpected status "+strconv.Itoa(status)))
	}
}

// get issues a ranged GET and maps failures to the provider taxonomy.
func get(ctx context.Context, client *httpclient.Client, url, auth string, rng provider.Range) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, provider.NewBackendError(provider.BackendTransport, err)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	if h := rng.RequestHeader(); h != "" {
		req.Header.Set("Range", h)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, mapStatusError(resp.StatusCode)
	}
	return resp, nil
}

// streamGet issues a ranged GET whose deadline covers only the wait
// for response headers. Once headers arrive the body streams on the
// caller's context, so a slow transfer of a long track is never cut
// off by the per-call timeout. A timeout <= 0 disables the bound.
func streamGet(ctx context.Context, client *httpclient.Client, url, auth string, rng provider.Range, timeout time.Duration) (*http.Response, error) {
	if timeout <= 0 {
		return get(ctx, client, url, auth, rng)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	timer := time.AfterFunc(timeout, func() { cancel(context.DeadlineExceeded) })
	resp, err := get(ctx, client, url, auth, rng)
	timer.Stop()
	if err != nil {
		cancel(nil)
		if errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
			return nil, provider.NewBackendError(provider.BackendTimeout, context.DeadlineExceeded)
		}
		return nil, err
	}
	resp.Body = &releaseBody{ReadCloser: resp.Body, release: func() { cancel(nil) }}
	return resp, nil
}

// releaseBody releases the handshake context when the response body is
// closed.
type releaseBody struct {
	io.ReadCloser
	release func()
}

func (b *releaseBody) Close() error {
	b.release()
	return b.ReadCloser.Close()
}

// resolveRange derives the effective byte window of a ranged response:
// a 206 reports it in Content-Range, a 200 means the server returned
// the whole resource.
func resolveRange(resp *http.Response) provider.Range {
	if resp.StatusCode == http.StatusPartialContent {
		return provider.ParseContentRange(resp.Header.Get("Content-Range"))
	}
	rng := provider.FullRange()
	if resp.ContentLength >= 0 {
		rng.End = resp.ContentLength
		rng.Total = resp.ContentLength
	}
	return rng
}
