package provider

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/phonolite/phonolite/internal/constants"
)

// TrackRef addresses one track inside the album/disc/track hierarchy.
// Albums are UUID-addressed; disc and track indices are 1-based within
// the album.
type TrackRef struct {
	AlbumID string
	Disc    uint8
	Track   uint8
}

// NewTrackRef validates the album id and indices and builds a TrackRef.
func NewTrackRef(albumID string, disc, track int) (TrackRef, error) {
	if _, err := uuid.Parse(albumID); err != nil {
		return TrackRef{}, fmt.Errorf("invalid album id %q: %w", albumID, err)
	}
	if disc < 1 || disc > 255 {
		return TrackRef{}, fmt.Errorf("disc index %d out of range", disc)
	}
	if track < 1 || track > 255 {
		return TrackRef{}, fmt.Errorf("track index %d out of range", track)
	}
	return TrackRef{AlbumID: albumID, Disc: uint8(disc), Track: uint8(track)}, nil
}

func (r TrackRef) String() string {
	return fmt.Sprintf("%s/%d/%d", r.AlbumID, r.Disc, r.Track)
}

// AudioInfo is an immutable metadata snapshot of one resolved track.
// Duration is in milliseconds.
type AudioInfo struct {
	Extension      string
	Size           int64
	DurationMillis uint64
}

// MIMEType returns the audio MIME type hint for the file extension.
func (i AudioInfo) MIMEType() string {
	switch i.Extension {
	case "":
		return "application/octet-stream"
	case "flac":
		return constants.MimeTypeFLAC
	case "mp3":
		return constants.MimeTypeMP3
	default:
		return "audio/" + i.Extension
	}
}

// AlbumInfo aggregates the declared structure of an album as reported
// by the repository oracle. It is read-only from the storage layer's
// perspective.
type AlbumInfo struct {
	AlbumID     string
	Title       string
	Artist      string
	DiscCount   int
	TrackCounts []int
}

// AudioReader couples a byte source with the resolved audio metadata
// and the effective byte range it covers. Body is a lazy sequential
// reader; restarting requires a new GetAudio call.
type AudioReader struct {
	Info  AudioInfo
	Range Range
	Body  io.ReadCloser
}

// Close closes the underlying byte source.
func (r *AudioReader) Close() error {
	return r.Body.Close()
}
