package flac

import "fmt"

// BlockType identifies a metadata block kind as defined by the FLAC
// container format.
type BlockType uint8

const (
	TypeStreamInfo    BlockType = 0
	TypePadding       BlockType = 1
	TypeApplication   BlockType = 2
	TypeSeekTable     BlockType = 3
	TypeVorbisComment BlockType = 4
	TypeCueSheet      BlockType = 5
	TypePicture       BlockType = 6

	// TypeInvalid (127) is forbidden by the format to avoid confusion
	// with a frame sync code.
	TypeInvalid BlockType = 127
)

func (t BlockType) String() string {
	switch t {
	case TypeStreamInfo:
		return "STREAMINFO"
	case TypePadding:
		return "PADDING"
	case TypeApplication:
		return "APPLICATION"
	case TypeSeekTable:
		return "SEEKTABLE"
	case TypeVorbisComment:
		return "VORBIS_COMMENT"
	case TypeCueSheet:
		return "CUESHEET"
	case TypePicture:
		return "PICTURE"
	case TypeInvalid:
		return "INVALID"
	default:
		return fmt.Sprintf("RESERVED(%d)", uint8(t))
	}
}

// maxBlockLen is the largest body a block header can describe (24-bit
// length field).
const maxBlockLen = 1<<24 - 1

// Block is a single metadata block. The body is kept verbatim as read
// from the stream; typed accessors parse it on demand and editors
// replace it wholesale. Untouched blocks therefore re-encode
// byte-identically.
type Block struct {
	Type BlockType
	body []byte
}

// NewBlock builds a block from a raw body. The body is not copied.
func NewBlock(t BlockType, body []byte) *Block {
	return &Block{Type: t, body: body}
}

// Body returns the raw body bytes of the block.
func (b *Block) Body() []byte {
	return b.body
}

// Len returns the body length in bytes.
func (b *Block) Len() int {
	return len(b.body)
}

// StreamInfo parses the block body as a STREAMINFO payload.
func (b *Block) StreamInfo() (*StreamInfo, error) {
	if b.Type != TypeStreamInfo {
		return nil, fmt.Errorf("%w: not a STREAMINFO block (%s)", ErrMalformedStream, b.Type)
	}
	return parseStreamInfo(b.body)
}

// VorbisComment parses the block body as a VORBIS_COMMENT payload.
// Malformed entries are skipped and reported as warnings.
func (b *Block) VorbisComment() (*VorbisComment, []CommentWarning, error) {
	if b.Type != TypeVorbisComment {
		return nil, nil, fmt.Errorf("%w: not a VORBIS_COMMENT block (%s)", ErrMalformedStream, b.Type)
	}
	return parseVorbisComment(b.body)
}

// Picture parses the block body as a PICTURE payload.
func (b *Block) Picture() (*Picture, error) {
	if b.Type != TypePicture {
		return nil, fmt.Errorf("%w: not a PICTURE block (%s)", ErrMalformedStream, b.Type)
	}
	return parsePicture(b.body)
}

// SeekTable parses the block body as a SEEKTABLE payload.
func (b *Block) SeekTable() (*SeekTable, error) {
	if b.Type != TypeSeekTable {
		return nil, fmt.Errorf("%w: not a SEEKTABLE block (%s)", ErrMalformedStream, b.Type)
	}
	return parseSeekTable(b.body)
}

// CueSheet parses the block body as a CUESHEET payload.
func (b *Block) CueSheet() (*CueSheet, error) {
	if b.Type != TypeCueSheet {
		return nil, fmt.Errorf("%w: not a CUESHEET block (%s)", ErrMalformedStream, b.Type)
	}
	return parseCueSheet(b.body)
}

// Application parses the block body as an APPLICATION payload.
func (b *Block) Application() (*Application, error) {
	if b.Type != TypeApplication {
		return nil, fmt.Errorf("%w: not an APPLICATION block (%s)", ErrMalformedStream, b.Type)
	}
	return parseApplication(b.body)
}
