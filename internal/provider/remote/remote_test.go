package remote

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/phonolite/phonolite/internal/flac"
	"github.com/phonolite/phonolite/internal/provider"
)

const (
	albumA = "11111111-1111-1111-1111-111111111111"
	albumB = "22222222-2222-2222-2222-222222222222"
)

// flacBytes builds a minimal FLAC file with the given duration.
func flacBytes(t *testing.T, seconds int) []byte {
	t.Helper()
	info := flac.StreamInfo{
		SampleRate:    44100,
		Channels:      2,
		BitsPerSample: 16,
		TotalSamples:  uint64(44100 * seconds),
	}
	s := &flac.Stream{Info: info, Blocks: []*flac.Block{info.Block()}}
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	buf.Write(bytes.Repeat([]byte{0xCD}, 128))
	return buf.Bytes()
}

func TestMapStatusError(t *testing.T) {
	tests := []struct {
		status    int
		want      error
		retryable bool
	}{
		{http.StatusNotFound, provider.ErrNotFound, false},
		{http.StatusRequestedRangeNotSatisfiable, provider.ErrInvalidRange, false},
		{http.StatusForbidden, nil, false},
		{http.StatusGatewayTimeout, nil, true},
		{http.StatusBadGateway, nil, true},
	}

	for _, tt := range tests {
		err := mapStatusError(tt.status)
		if tt.want != nil {
			if !errors.Is(err, tt.want) {
				t.Errorf("Status %d: expected %v, got %v", tt.status, tt.want, err)
			}
			continue
		}
		if !provider.IsBackendError(err) {
			t.Errorf("Status %d: expected a backend error, got %v", tt.status, err)
		}
		if got := provider.Retryable(err); got != tt.retryable {
			t.Errorf("Status %d: expected retryable=%v, got %v", tt.status, tt.retryable, got)
		}
	}
}

func TestInfoFromHeaders(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Content-Type", "audio/mpeg")
	resp.Header.Set(headerOriginSize, "123456")
	resp.Header.Set(headerDurationMillis, "180000")

	info, err := infoFromHeaders(resp)
	if err != nil {
		t.Fatalf("infoFromHeaders failed: %v", err)
	}
	want := provider.AudioInfo{Extension: "mp3", Size: 123456, DurationMillis: 180000}
	if info != want {
		t.Errorf("Expected %+v, got %+v", want, info)
	}

	resp.Header.Set(headerOriginSize, "not-a-number")
	if _, err := infoFromHeaders(resp); !provider.IsBackendError(err) {
		t.Errorf("Expected a backend error for a bad size header, got %v", err)
	}
}
