// Package tagging patches metadata tags into audio files in place.
// FLAC files are rewritten at the metadata-block level, leaving the
// audio frames byte-identical; MP3 files go through id3v2.
package tagging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/phonolite/phonolite/internal/constants"
	"github.com/phonolite/phonolite/internal/flac"
)

// Tags is the writable tag set of one track.
type Tags struct {
	Title        string
	Artists      []string
	Album        string
	AlbumArtists []string
	TrackNumber  int
	TotalTracks  int
	DiscNumber   int
	TotalDiscs   int
	Year         int
	Genre        string
	Label        string
	ISRC         string
	Copyright    string
	Composer     string
}

// TagFile writes metadata tags to the audio file at filePath.
func TagFile(filePath string, tags *Tags, albumArtData []byte) error {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case constants.ExtFLAC:
		return tagFLAC(filePath, tags, albumArtData)
	case constants.ExtMP3:
		return tagMP3(filePath, tags, albumArtData)
	default:
		return fmt.Errorf("unsupported file format: %s", filepath.Ext(filePath))
	}
}

// ReadTags returns the flattened tag map of a FLAC file.
func ReadTags(filePath string) (map[string]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, err := flac.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filePath, err)
	}
	return stream.Tags(), nil
}

// tagFLAC replaces the VORBIS_COMMENT block (and optionally the front
// cover PICTURE block) of a FLAC file. Decoding consumes exactly the
// metadata section, so the remaining bytes of the source file are the
// audio frames and are copied verbatim. The result is written to a
// temp file in the same directory and swapped in with an atomic
// rename.
func tagFLAC(filePath string, tags *Tags, albumArtData []byte) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open FLAC file: %w", err)
	}
	defer f.Close()

	stream, err := flac.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode FLAC metadata: %w", err)
	}

	stream.SetVorbisComment(newVorbisComment(tags))
	if len(albumArtData) > 0 {
		stream.SetPicture(&flac.Picture{
			Type:     flac.PictureFrontCover,
			MIMEType: sniffImageMIME(albumArtData),
			Data:     albumArtData,
		})
	}

	dir := filepath.Dir(filePath)
	tmpFile, err := os.CreateTemp(dir, "*.flac.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := stream.Encode(tmpFile); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write metadata blocks: %w", err)
	}

	// Copy raw audio bytes verbatim.
	if _, err := io.Copy(tmpFile, f); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to copy audio data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		return fmt.Errorf("failed to replace original FLAC file: %w", err)
	}
	success = true
	return nil
}

func newVorbisComment(tags *Tags) *flac.VorbisComment {
	vc := &flac.VorbisComment{Vendor: "phonolite"}

	addTag := func(name, value string) {
		if value != "" {
			vc.Add(name, value)
		}
	}

	addTag("TITLE", tags.Title)

	// Multiple artists get individual ARTIST tags (recommended by the
	// Vorbis spec).
	for _, a := range tags.Artists {
		addTag("ARTIST", a)
	}
	for _, a := range tags.AlbumArtists {
		addTag("ALBUMARTIST", a)
	}

	addTag("ALBUM", tags.Album)

	if tags.TrackNumber > 0 {
		addTag("TRACKNUMBER", fmt.Sprintf("%d", tags.TrackNumber))
	}
	if tags.TotalTracks > 0 {
		addTag("TRACKTOTAL", fmt.Sprintf("%d", tags.TotalTracks))
	}
	if tags.DiscNumber > 0 {
		addTag("DISCNUMBER", fmt.Sprintf("%d", tags.DiscNumber))
	}
	if tags.TotalDiscs > 0 {
		addTag("DISCTOTAL", fmt.Sprintf("%d", tags.TotalDiscs))
	}
	if tags.Year > 0 {
		addTag("DATE", fmt.Sprintf("%d", tags.Year))
	}

	addTag("GENRE", tags.Genre)
	addTag("LABEL", tags.Label)
	addTag("ISRC", tags.ISRC)
	addTag("COPYRIGHT", tags.Copyright)
	addTag("COMPOSER", tags.Composer)

	return vc
}

func tagMP3(filePath string, tags *Tags, albumArtData []byte) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)

	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if len(tags.Artists) > 0 {
		tag.AddTextFrame("TPE1", tag.DefaultEncoding(), strings.Join(tags.Artists, "\x00"))
	}
	if len(tags.AlbumArtists) > 0 {
		tag.AddTextFrame("TPE2", tag.DefaultEncoding(), strings.Join(tags.AlbumArtists, "\x00"))
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if tags.Year > 0 {
		tag.SetYear(fmt.Sprintf("%d", tags.Year))
	}
	if tags.Genre != "" {
		tag.SetGenre(tags.Genre)
	}
	if tags.TrackNumber > 0 {
		trackStr := fmt.Sprintf("%d", tags.TrackNumber)
		if tags.TotalTracks > 0 {
			trackStr = fmt.Sprintf("%d/%d", tags.TrackNumber, tags.TotalTracks)
		}
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), trackStr)
	}
	if tags.DiscNumber > 0 {
		discStr := fmt.Sprintf("%d", tags.DiscNumber)
		if tags.TotalDiscs > 0 {
			discStr = fmt.Sprintf("%d/%d", tags.DiscNumber, tags.TotalDiscs)
		}
		tag.AddTextFrame(tag.CommonID("Part of a set"), tag.DefaultEncoding(), discStr)
	}
	if tags.Composer != "" {
		tag.AddTextFrame(tag.CommonID("Composer"), tag.DefaultEncoding(), tags.Composer)
	}
	if tags.Label != "" {
		tag.AddTextFrame(tag.CommonID("Publisher"), tag.DefaultEncoding(), tags.Label)
	}
	if tags.ISRC != "" {
		tag.AddTextFrame(tag.CommonID("ISRC"), tag.DefaultEncoding(), tags.ISRC)
	}
	if tags.Copyright != "" {
		tag.AddTextFrame(tag.CommonID("Copyright message"), tag.DefaultEncoding(), tags.Copyright)
	}

	if len(albumArtData) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    sniffImageMIME(albumArtData),
			PictureType: id3v2.PTFrontCover,
			Picture:     albumArtData,
		})
	}

	return tag.Save()
}

// sniffImageMIME detects the cover art content type from its leading
// bytes.
func sniffImageMIME(data []byte) string {
	if len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n" {
		return "image/png"
	}
	return constants.MimeTypeJPEG
}
