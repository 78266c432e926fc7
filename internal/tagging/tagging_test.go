package tagging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/phonolite/phonolite/internal/flac"
)

// writeTestFLAC builds a FLAC file with existing tags and fake audio
// frames, and returns its path and the frame bytes.
func writeTestFLAC(t *testing.T) (string, []byte) {
	t.Helper()

	info := flac.StreamInfo{
		SampleRate:    44100,
		Channels:      2,
		BitsPerSample: 16,
		TotalSamples:  44100 * 30,
	}
	vc := &flac.VorbisComment{Vendor: "old-vendor"}
	vc.Add("TITLE", "Old Title")

	stream := &flac.Stream{
		Info:   info,
		Blocks: []*flac.Block{info.Block(), vc.Block()},
	}

	var buf bytes.Buffer
	if err := stream.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	frames := bytes.Repeat([]byte{0xF8, 0x69, 0xBC, 0x11}, 64)
	buf.Write(frames)

	path := filepath.Join(t.TempDir(), "track.flac")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path, frames
}

func TestTagFLAC(t *testing.T) {
	path, frames := writeTestFLAC(t)

	tags := &Tags{
		Title:        "New Title",
		Artists:      []string{"First Artist", "Second Artist"},
		Album:        "The Album",
		AlbumArtists: []string{"Album Artist"},
		TrackNumber:  3,
		TotalTracks:  12,
		DiscNumber:   1,
		TotalDiscs:   2,
		Year:         2024,
		Genre:        "Jazz",
	}
	art := []byte("\x89PNG\r\n\x1a\nfake-png-bytes")
	if err := TagFile(path, tags, art); err != nil {
		t.Fatalf("TagFile failed: %v", err)
	}

	got, err := ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags failed: %v", err)
	}
	want := map[string]string{
		"TITLE":       "New Title",
		"ARTIST":      "First Artist",
		"ALBUM":       "The Album",
		"ALBUMARTIST": "Album Artist",
		"TRACKNUMBER": "3",
		"TRACKTOTAL":  "12",
		"DISCNUMBER":  "1",
		"DISCTOTAL":   "2",
		"DATE":        "2024",
		"GENRE":       "Jazz",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Expected %s=%q, got %q", k, v, got[k])
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	stream, err := flac.Decode(f)
	if err != nil {
		t.Fatalf("Decode of tagged file failed: %v", err)
	}

	// Both artists survive as separate entries.
	vc, err := stream.VorbisComment()
	if err != nil {
		t.Fatalf("VorbisComment failed: %v", err)
	}
	var artists []string
	for _, c := range vc.Comments {
		if c.Key == "ARTIST" {
			artists = append(artists, c.Value)
		}
	}
	if len(artists) != 2 {
		t.Errorf("Expected 2 ARTIST entries, got %v", artists)
	}

	// Cover art landed with the sniffed MIME type.
	pics := stream.Pictures()
	if len(pics) != 1 {
		t.Fatalf("Expected 1 picture, got %d", len(pics))
	}
	if pics[0].MIMEType != "image/png" || !bytes.Equal(pics[0].Data, art) {
		t.Errorf("Unexpected picture %q (%d bytes)", pics[0].MIMEType, len(pics[0].Data))
	}

	// Audio frames are untouched.
	rest, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rest[stream.MetadataLen():], frames) {
		t.Error("Audio frames changed during tagging")
	}

	// Sample properties are untouched.
	if stream.Info.SampleRate != 44100 || stream.Info.TotalSamples != 44100*30 {
		t.Errorf("STREAMINFO changed during tagging: %+v", stream.Info)
	}
}

func TestTagFLAC_Retag(t *testing.T) {
	path, _ := writeTestFLAC(t)

	if err := TagFile(path, &Tags{Title: "First Pass"}, nil); err != nil {
		t.Fatalf("TagFile failed: %v", err)
	}
	if err := TagFile(path, &Tags{Title: "Second Pass", Genre: "Rock"}, nil); err != nil {
		t.Fatalf("Second TagFile failed: %v", err)
	}

	got, err := ReadTags(path)
	if err != nil {
		t.Fatalf("ReadTags failed: %v", err)
	}
	if got["TITLE"] != "Second Pass" || got["GENRE"] != "Rock" {
		t.Errorf("Expected the second tag set to win, got %v", got)
	}
}

func TestTagFile_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.ogg")
	if err := os.WriteFile(path, []byte("OggS"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := TagFile(path, &Tags{Title: "x"}, nil); err == nil {
		t.Error("Expected an error for an unsupported format")
	}
}

func TestSniffImageMIME(t *testing.T) {
	if got := sniffImageMIME([]byte("\x89PNG\r\n\x1a\n....")); got != "image/png" {
		t.Errorf("Expected image/png, got %s", got)
	}
	if got := sniffImageMIME([]byte{0xFF, 0xD8, 0xFF, 0xE0}); got != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %s", got)
	}
}
