// Package flac implements a metadata-level codec for the FLAC
// container format. It decodes the block-structured header section of
// a FLAC file, exposes typed views of the known block kinds and
// re-encodes the blocks byte-exactly so tag edits can be patched in
// place without touching audio frames.
//
// Container framing (block headers, lengths) is big-endian; the fields
// inside a VORBIS_COMMENT body are little-endian per the Vorbis spec.
// The asymmetry is part of the format and is preserved as-is.
package flac

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Magic is the stream marker every FLAC file starts with.
var Magic = []byte("fLaC")

var (
	// ErrInvalidMagic reports a stream that does not start with "fLaC".
	ErrInvalidMagic = errors.New("flac: invalid magic number")

	// ErrMalformedStream reports a structurally broken metadata
	// section. Decoding of the file is aborted.
	ErrMalformedStream = errors.New("flac: malformed stream")
)

// CommentWarning reports a VORBIS_COMMENT entry that could not be
// decoded. The entry is skipped; the rest of the stream decodes
// normally.
type CommentWarning struct {
	Entry  int
	Reason string
}

func (w CommentWarning) String() string {
	return fmt.Sprintf("comment entry %d: %s", w.Entry, w.Reason)
}

// Stream is the decoded metadata section of a FLAC file. Blocks keep
// their original order; the first block is always STREAMINFO.
type Stream struct {
	Info   StreamInfo
	Blocks []*Block

	// Warnings collects recoverable VORBIS_COMMENT decode issues.
	Warnings []CommentWarning
}

// Decode reads the magic marker and all metadata blocks from r,
// stopping after the block flagged as last. The reader is left
// positioned at the first audio frame.
func Decode(r io.Reader) (*Stream, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMagic, err)
	}
	if !bytes.Equal(magic[:], Magic) {
		return nil, ErrInvalidMagic
	}

	s := &Stream{}
	last := false
	for !last {
		var header [4]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return nil, fmt.Errorf("%w: block header: %v", ErrMalformedStream, err)
		}
		last = header[0]&0x80 != 0
		typ := BlockType(header[0] & 0x7F)
		if typ == TypeInvalid {
			return nil, fmt.Errorf("%w: block type 127", ErrMalformedStream)
		}
		length := int(header[1])<<16 | int(header[2])<<8 | int(header[3])

		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("%w: block body (%s, %d bytes): %v", ErrMalformedStream, typ, length, err)
		}

		if len(s.Blocks) == 0 {
			if typ != TypeStreamInfo {
				return nil, fmt.Errorf("%w: first block is %s, want STREAMINFO", ErrMalformedStream, typ)
			}
			info, err := parseStreamInfo(body)
			if err != nil {
				return nil, err
			}
			s.Info = *info
		} else if typ == TypeStreamInfo {
			return nil, fmt.Errorf("%w: duplicate STREAMINFO block", ErrMalformedStream)
		}

		if typ == TypeVorbisComment {
			// Decode eagerly so warnings surface at decode time.
			if _, warns, err := NewBlock(typ, body).VorbisComment(); err != nil {
				return nil, err
			} else {
				s.Warnings = append(s.Warnings, warns...)
			}
		}

		s.Blocks = append(s.Blocks, NewBlock(typ, body))
	}

	return s, nil
}

// Encode writes the magic marker and all blocks to w, recomputing each
// block header's length and the last-block flag. Blocks whose bodies
// were not replaced are written byte-identically to their decoded
// form.
func (s *Stream) Encode(w io.Writer) error {
	if len(s.Blocks) == 0 || s.Blocks[0].Type != TypeStreamInfo {
		return fmt.Errorf("%w: first block must be STREAMINFO", ErrMalformedStream)
	}
	if _, err := w.Write(Magic); err != nil {
		return err
	}
	for i, b := range s.Blocks {
		if len(b.body) > maxBlockLen {
			return fmt.Errorf("%w: %s body of %d bytes exceeds block limit", ErrMalformedStream, b.Type, len(b.body))
		}
		header := [4]byte{
			byte(b.Type),
			byte(len(b.body) >> 16),
			byte(len(b.body) >> 8),
			byte(len(b.body)),
		}
		if i == len(s.Blocks)-1 {
			header[0] |= 0x80
		}
		if _, err := w.Write(header[:]); err != nil {
			return err
		}
		if _, err := w.Write(b.body); err != nil {
			return err
		}
	}
	return nil
}

// MetadataLen returns the encoded size of the metadata section,
// including the magic marker. Audio frames start at this offset.
func (s *Stream) MetadataLen() int64 {
	n := int64(len(Magic))
	for _, b := range s.Blocks {
		n += 4 + int64(len(b.body))
	}
	return n
}

// VorbisComment returns the first VORBIS_COMMENT block's decoded
// payload, or nil if the stream carries none.
func (s *Stream) VorbisComment() (*VorbisComment, error) {
	for _, b := range s.Blocks {
		if b.Type == TypeVorbisComment {
			vc, _, err := b.VorbisComment()
			return vc, err
		}
	}
	return nil, nil
}

// SetVorbisComment replaces the stream's VORBIS_COMMENT block with the
// given payload. An existing comment block is replaced in position;
// otherwise a new block is inserted after the SEEKTABLE (or directly
// after STREAMINFO), keeping the order of every other block.
func (s *Stream) SetVorbisComment(vc *VorbisComment) {
	body := vc.encode()
	for _, b := range s.Blocks {
		if b.Type == TypeVorbisComment {
			b.body = body
			return
		}
	}

	at := 1
	for i, b := range s.Blocks {
		if b.Type == TypeSeekTable {
			at = i + 1
		}
	}
	blocks := make([]*Block, 0, len(s.Blocks)+1)
	blocks = append(blocks, s.Blocks[:at]...)
	blocks = append(blocks, NewBlock(TypeVorbisComment, body))
	blocks = append(blocks, s.Blocks[at:]...)
	s.Blocks = blocks
}

// Pictures returns all decodable PICTURE blocks in stream order.
func (s *Stream) Pictures() []*Picture {
	var pics []*Picture
	for _, b := range s.Blocks {
		if b.Type != TypePicture {
			continue
		}
		if p, err := b.Picture(); err == nil {
			pics = append(pics, p)
		}
	}
	return pics
}

// SetPicture replaces the first PICTURE block of the same picture type
// in place, or appends a new PICTURE block at the end of the metadata
// section.
func (s *Stream) SetPicture(p *Picture) {
	body := p.encode()
	for _, b := range s.Blocks {
		if b.Type != TypePicture {
			continue
		}
		if existing, err := b.Picture(); err == nil && existing.Type == p.Type {
			b.body = body
			return
		}
	}
	s.Blocks = append(s.Blocks, NewBlock(TypePicture, body))
}

// Tags flattens the vorbis comments into a map with upper-cased keys.
// The first non-empty value per key wins; duplicate entries remain
// available through VorbisComment.
func (s *Stream) Tags() map[string]string {
	tags := make(map[string]string)
	vc, err := s.VorbisComment()
	if err != nil || vc == nil {
		return tags
	}
	for _, c := range vc.Comments {
		key := normalizeKey(c.Key)
		if v, ok := tags[key]; ok && v != "" {
			continue
		}
		tags[key] = c.Value
	}
	return tags
}
