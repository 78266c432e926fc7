package provider

import (
	"bytes"
	"io"
	"testing"

	"github.com/phonolite/phonolite/internal/flac"
)

func TestNewTrackRef(t *testing.T) {
	tests := []struct {
		name    string
		albumID string
		disc    int
		track   int
		wantErr bool
	}{
		{"valid", albumA, 1, 1, false},
		{"max indices", albumA, 255, 255, false},
		{"not a uuid", "not-a-uuid", 1, 1, true},
		{"zero disc", albumA, 0, 1, true},
		{"zero track", albumA, 1, 0, true},
		{"disc overflow", albumA, 256, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := NewTrackRef(tt.albumID, tt.disc, tt.track)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTrackRef failed: %v", err)
			}
			if ref.AlbumID != tt.albumID {
				t.Errorf("Unexpected ref %+v", ref)
			}
		})
	}
}

func TestAudioInfo_MIMEType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"flac", "audio/flac"},
		{"mp3", "audio/mpeg"},
		{"ogg", "audio/ogg"},
		{"", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := (AudioInfo{Extension: tt.ext}).MIMEType(); got != tt.want {
			t.Errorf("Expected %q for %q, got %q", tt.want, tt.ext, got)
		}
	}
}

// testFLAC builds a minimal FLAC file with the given duration.
func testFLAC(t *testing.T, totalSamples uint64) []byte {
	t.Helper()
	info := flac.StreamInfo{
		SampleRate:    44100,
		Channels:      2,
		BitsPerSample: 16,
		TotalSamples:  totalSamples,
	}
	s := &flac.Stream{Info: info, Blocks: []*flac.Block{info.Block()}}
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	buf.Write([]byte("frames-go-here"))
	return buf.Bytes()
}

func TestProbeDuration(t *testing.T) {
	file := testFLAC(t, 44100*90)

	dur, body, err := ProbeDuration(io.NopCloser(bytes.NewReader(file)), FullRange(), "flac")
	if err != nil {
		t.Fatalf("ProbeDuration failed: %v", err)
	}
	if dur != 90000 {
		t.Errorf("Expected 90000ms, got %d", dur)
	}

	// The body still yields the stream from its first byte.
	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	body.Close()
	if !bytes.Equal(got, file) {
		t.Error("Probed body differs from the source bytes")
	}
}

func TestProbeDuration_Skipped(t *testing.T) {
	file := testFLAC(t, 44100)

	// 1. Non-FLAC sources are never probed
	dur, body, err := ProbeDuration(io.NopCloser(bytes.NewReader(file)), FullRange(), "mp3")
	if err != nil || dur != 0 {
		t.Errorf("Expected zero duration for mp3, got %d, %v", dur, err)
	}
	body.Close()

	// 2. Ranges that skip the header are never probed
	dur, body, err = ProbeDuration(io.NopCloser(bytes.NewReader(file[10:])), NewRange(10, -1), "flac")
	if err != nil || dur != 0 {
		t.Errorf("Expected zero duration for a mid-file range, got %d, %v", dur, err)
	}
	body.Close()

	// 3. Files shorter than the probe prefix stream as-is
	short := []byte("tiny")
	dur, body, err = ProbeDuration(io.NopCloser(bytes.NewReader(short)), FullRange(), "flac")
	if err != nil {
		t.Fatalf("ProbeDuration failed: %v", err)
	}
	if dur != 0 {
		t.Errorf("Expected zero duration for a short file, got %d", dur)
	}
	got, _ := io.ReadAll(body)
	body.Close()
	if !bytes.Equal(got, short) {
		t.Errorf("Expected the short body to stream unchanged, got %q", got)
	}
}
