package flac

import (
	"bytes"
	"fmt"
	"io"
)

// ProbeLen is the number of leading bytes needed to decode STREAMINFO:
// the magic marker, one block header and the 34-byte body.
const ProbeLen = 4 + 4 + streamInfoLen

// DecodeStreamInfo decodes only the mandatory first STREAMINFO block
// from r. Unlike Decode it does not consume the rest of the metadata
// section, so it works on a short prefix of the file.
func DecodeStreamInfo(r io.Reader) (*StreamInfo, error) {
	var prefix [ProbeLen]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStream, err)
	}
	if !bytes.Equal(prefix[:4], Magic) {
		return nil, ErrInvalidMagic
	}
	if typ := BlockType(prefix[4] & 0x7F); typ != TypeStreamInfo {
		return nil, fmt.Errorf("%w: first block is %s, want STREAMINFO", ErrMalformedStream, typ)
	}
	length := int(prefix[5])<<16 | int(prefix[6])<<8 | int(prefix[7])
	if length != streamInfoLen {
		return nil, fmt.Errorf("%w: STREAMINFO length %d, want %d", ErrMalformedStream, length, streamInfoLen)
	}
	return parseStreamInfo(prefix[8:])
}
