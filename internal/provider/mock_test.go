package provider

import (
	"bytes"
	"context"
	"io"
	"sync/atomic"
)

const (
	albumA = "11111111-1111-1111-1111-111111111111"
	albumB = "22222222-2222-2222-2222-222222222222"
)

// mockProvider is a configurable in-memory backend for combinator and
// cache tests.
type mockProvider struct {
	albums []string
	info   AudioInfo
	err    error // returned by every lookup when set

	gate chan struct{} // when set, lookups block until closed

	albumsCalls int32
	infoCalls   int32
	audioCalls  int32
	reloads     int32
	reloadErr   error
}

var _ Provider = (*mockProvider)(nil)

func (m *mockProvider) wait(ctx context.Context) {
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
		}
	}
}

func (m *mockProvider) Albums(ctx context.Context) ([]string, error) {
	atomic.AddInt32(&m.albumsCalls, 1)
	m.wait(ctx)
	if m.err != nil {
		return nil, m.err
	}
	return append([]string(nil), m.albums...), nil
}

func (m *mockProvider) HasAlbum(ctx context.Context, albumID string) bool {
	for _, id := range m.albums {
		if id == albumID {
			return true
		}
	}
	return false
}

func (m *mockProvider) GetAudioInfo(ctx context.Context, ref TrackRef) (AudioInfo, error) {
	atomic.AddInt32(&m.infoCalls, 1)
	m.wait(ctx)
	if m.err != nil {
		return AudioInfo{}, m.err
	}
	return m.info, nil
}

func (m *mockProvider) GetAudio(ctx context.Context, ref TrackRef, rng Range) (*AudioReader, error) {
	atomic.AddInt32(&m.audioCalls, 1)
	if m.err != nil {
		return nil, m.err
	}
	data := []byte("audio-frames")
	clamped, err := rng.ClampTo(int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &AudioReader{
		Info:  m.info,
		Range: clamped,
		Body:  io.NopCloser(bytes.NewReader(data[clamped.Start:clamped.End])),
	}, nil
}

func (m *mockProvider) GetCover(ctx context.Context, albumID string, disc int) (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !m.HasAlbum(ctx, albumID) {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader([]byte("cover"))), nil
}

func (m *mockProvider) Reload(ctx context.Context) error {
	atomic.AddInt32(&m.reloads, 1)
	return m.reloadErr
}
