package flac

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// UserComment is one KEY=VALUE tag entry. Keys are matched
// case-insensitively by convention but stored verbatim, and duplicate
// keys are legal; a stream with two ARTIST entries round-trips as two
// ordered entries.
type UserComment struct {
	Key   string
	Value string
}

func (c UserComment) String() string {
	return c.Key + "=" + c.Value
}

// VorbisComment is the decoded VORBIS_COMMENT payload. The comment
// list keeps the order found in the stream.
type VorbisComment struct {
	Vendor   string
	Comments []UserComment
}

// Add appends a KEY=VALUE entry.
func (v *VorbisComment) Add(key, value string) {
	v.Comments = append(v.Comments, UserComment{Key: key, Value: value})
}

// Get returns the first value for key (case-insensitive), or "".
func (v *VorbisComment) Get(key string) string {
	for _, c := range v.Comments {
		if strings.EqualFold(c.Key, key) {
			return c.Value
		}
	}
	return ""
}

// Set removes every entry for key (case-insensitive) and appends a
// single entry with the new value.
func (v *VorbisComment) Set(key, value string) {
	kept := v.Comments[:0]
	for _, c := range v.Comments {
		if !strings.EqualFold(c.Key, key) {
			kept = append(kept, c)
		}
	}
	v.Comments = append(kept, UserComment{Key: key, Value: value})
}

func normalizeKey(key string) string {
	return strings.ToUpper(key)
}

// Comment sub-fields are little-endian, unlike the big-endian
// container framing. Both are kept exactly as the format specifies.
func parseVorbisComment(body []byte) (*VorbisComment, []CommentWarning, error) {
	var warns []CommentWarning

	if len(body) < 4 {
		return nil, nil, fmt.Errorf("%w: VORBIS_COMMENT shorter than vendor length", ErrMalformedStream)
	}
	vendorLen := int(binary.LittleEndian.Uint32(body[0:4]))
	body = body[4:]
	if vendorLen > len(body) {
		return nil, nil, fmt.Errorf("%w: vendor string of %d bytes overruns block", ErrMalformedStream, vendorLen)
	}
	vc := &VorbisComment{Vendor: string(body[:vendorLen])}
	body = body[vendorLen:]

	if len(body) < 4 {
		return nil, nil, fmt.Errorf("%w: VORBIS_COMMENT missing entry count", ErrMalformedStream)
	}
	count := int(binary.LittleEndian.Uint32(body[0:4]))
	body = body[4:]

	for i := 0; i < count; i++ {
		if len(body) < 4 {
			warns = append(warns, CommentWarning{Entry: i, Reason: "truncated entry length"})
			break
		}
		entryLen := int(binary.LittleEndian.Uint32(body[0:4]))
		body = body[4:]
		if entryLen > len(body) {
			warns = append(warns, CommentWarning{Entry: i, Reason: "entry overruns block"})
			break
		}
		entry := body[:entryLen]
		body = body[entryLen:]

		if !utf8.Valid(entry) {
			warns = append(warns, CommentWarning{Entry: i, Reason: "invalid UTF-8"})
			continue
		}
		key, value, found := strings.Cut(string(entry), "=")
		if !found {
			warns = append(warns, CommentWarning{Entry: i, Reason: "missing '='"})
			continue
		}
		vc.Comments = append(vc.Comments, UserComment{Key: key, Value: value})
	}

	return vc, warns, nil
}

func (v *VorbisComment) encode() []byte {
	size := 4 + len(v.Vendor) + 4
	for _, c := range v.Comments {
		size += 4 + len(c.Key) + 1 + len(c.Value)
	}

	body := make([]byte, 0, size)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(v.Vendor)))
	body = append(body, v.Vendor...)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(v.Comments)))
	for _, c := range v.Comments {
		entry := c.String()
		body = binary.LittleEndian.AppendUint32(body, uint32(len(entry)))
		body = append(body, entry...)
	}
	return body
}

// Block returns the payload re-encoded as a metadata block.
func (v *VorbisComment) Block() *Block {
	return NewBlock(TypeVorbisComment, v.encode())
}
