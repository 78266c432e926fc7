package provider

import (
	"context"
	"errors"
	"testing"
)

func TestPriority_FallbackOnNotFound(t *testing.T) {
	primary := &mockProvider{err: ErrNotFound}
	secondary := &mockProvider{
		albums: []string{albumA},
		info:   AudioInfo{Extension: "flac", Size: 42},
	}
	p := NewPriority(
		Backend{Name: "secondary", Priority: 0, Provider: secondary},
		Backend{Name: "primary", Priority: 10, Provider: primary},
	)

	ref := TrackRef{AlbumID: albumA, Disc: 1, Track: 1}
	info, err := p.GetAudioInfo(context.Background(), ref)
	if err != nil {
		t.Fatalf("GetAudioInfo failed: %v", err)
	}
	if info.Size != 42 {
		t.Errorf("Expected fallback result, got %+v", info)
	}
	if primary.infoCalls != 1 {
		t.Errorf("Expected primary to be consulted first, got %d calls", primary.infoCalls)
	}
	if secondary.infoCalls != 1 {
		t.Errorf("Expected one fallback call, got %d", secondary.infoCalls)
	}
}

func TestPriority_NoFallbackOnBackendError(t *testing.T) {
	outage := NewBackendError(BackendTransport, errors.New("connection refused"))
	primary := &mockProvider{err: outage}
	secondary := &mockProvider{info: AudioInfo{Size: 42}}
	p := NewPriority(
		Backend{Name: "primary", Priority: 10, Provider: primary},
		Backend{Name: "secondary", Priority: 0, Provider: secondary},
	)

	ref := TrackRef{AlbumID: albumA, Disc: 1, Track: 1}
	_, err := p.GetAudioInfo(context.Background(), ref)
	if !IsBackendError(err) {
		t.Fatalf("Expected the outage to surface, got %v", err)
	}
	if secondary.infoCalls != 0 {
		t.Errorf("Expected no fallback past a backend outage, got %d calls", secondary.infoCalls)
	}

	if _, err := p.GetAudio(context.Background(), ref, FullRange()); !IsBackendError(err) {
		t.Errorf("Expected GetAudio to surface the outage, got %v", err)
	}
}

func TestPriority_NoFallbackOnInvalidLayout(t *testing.T) {
	primary := &mockProvider{err: ErrInvalidLayout}
	secondary := &mockProvider{info: AudioInfo{Size: 42}}
	p := NewPriority(
		Backend{Name: "primary", Priority: 10, Provider: primary},
		Backend{Name: "secondary", Priority: 0, Provider: secondary},
	)

	_, err := p.GetAudioInfo(context.Background(), TrackRef{AlbumID: albumA, Disc: 1, Track: 1})
	if !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("Expected ErrInvalidLayout to surface, got %v", err)
	}
	if secondary.infoCalls != 0 {
		t.Errorf("Expected no fallback on layout errors, got %d calls", secondary.infoCalls)
	}
}

func TestPriority_AllExhausted(t *testing.T) {
	p := NewPriority(
		Backend{Name: "a", Priority: 1, Provider: &mockProvider{err: ErrNotFound}},
		Backend{Name: "b", Priority: 0, Provider: &mockProvider{err: ErrNotFound}},
	)

	_, err := p.GetAudioInfo(context.Background(), TrackRef{AlbumID: albumA, Disc: 1, Track: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after exhausting backends, got %v", err)
	}
}

func TestPriority_AlbumsUnion(t *testing.T) {
	p := NewPriority(
		Backend{Name: "low", Priority: 0, Provider: &mockProvider{albums: []string{albumB, albumA}}},
		Backend{Name: "high", Priority: 10, Provider: &mockProvider{albums: []string{albumA}}},
	)

	albums, err := p.Albums(context.Background())
	if err != nil {
		t.Fatalf("Albums failed: %v", err)
	}
	// The shared album is listed once, attributed to the higher tier.
	if len(albums) != 2 || albums[0] != albumA || albums[1] != albumB {
		t.Errorf("Expected [%s %s], got %v", albumA, albumB, albums)
	}
}

func TestPriority_SortStable(t *testing.T) {
	first := &mockProvider{}
	second := &mockProvider{}
	p := NewPriority(
		Backend{Name: "first", Priority: 5, Provider: first},
		Backend{Name: "second", Priority: 5, Provider: second},
		Backend{Name: "top", Priority: 9, Provider: &mockProvider{}},
	)

	got := p.Backends()
	want := []string{"top", "first", "second"}
	for i, b := range got {
		if b.Name != want[i] {
			t.Errorf("Expected backend %d to be %s, got %s", i, want[i], b.Name)
		}
	}
}

func TestPriority_ReloadAttemptsAll(t *testing.T) {
	failing := &mockProvider{reloadErr: errors.New("walk failed")}
	healthy := &mockProvider{}
	p := NewPriority(
		Backend{Name: "failing", Priority: 10, Provider: failing},
		Backend{Name: "healthy", Priority: 0, Provider: healthy},
	)

	if err := p.Reload(context.Background()); err == nil {
		t.Error("Expected reload error to propagate")
	}
	if healthy.reloads != 1 {
		t.Errorf("Expected every backend to reload, healthy got %d", healthy.reloads)
	}
}

func TestMultiple_RoutesByAlbum(t *testing.T) {
	first := &mockProvider{albums: []string{albumA}, info: AudioInfo{Size: 1}}
	second := &mockProvider{albums: []string{albumB}, info: AudioInfo{Size: 2}}
	m := NewMultiple(first, second)

	info, err := m.GetAudioInfo(context.Background(), TrackRef{AlbumID: albumB, Disc: 1, Track: 1})
	if err != nil {
		t.Fatalf("GetAudioInfo failed: %v", err)
	}
	if info.Size != 2 {
		t.Errorf("Expected routing to the second provider, got %+v", info)
	}
	if first.infoCalls != 0 {
		t.Errorf("Expected no call to a provider without the album, got %d", first.infoCalls)
	}

	if _, err := m.GetAudioInfo(context.Background(), TrackRef{AlbumID: "33333333-3333-3333-3333-333333333333", Disc: 1, Track: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an unknown album, got %v", err)
	}
}
