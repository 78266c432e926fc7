package flac

import (
	"encoding/binary"
	"fmt"
)

const seekPointLen = 18

// placeholderSample marks an unused seek point.
const placeholderSample = 0xFFFFFFFFFFFFFFFF

// SeekPoint maps a sample number to a byte offset relative to the
// first audio frame.
type SeekPoint struct {
	Sample       uint64
	Offset       uint64
	FrameSamples uint16
}

// Placeholder reports whether the point is an unused placeholder.
func (p SeekPoint) Placeholder() bool {
	return p.Sample == placeholderSample
}

// SeekTable is the decoded SEEKTABLE payload.
type SeekTable struct {
	Points []SeekPoint
}

func parseSeekTable(body []byte) (*SeekTable, error) {
	if len(body)%seekPointLen != 0 {
		return nil, fmt.Errorf("%w: SEEKTABLE body of %d bytes is not a multiple of %d", ErrMalformedStream, len(body), seekPointLen)
	}
	table := &SeekTable{Points: make([]SeekPoint, 0, len(body)/seekPointLen)}
	for off := 0; off < len(body); off += seekPointLen {
		table.Points = append(table.Points, SeekPoint{
			Sample:       binary.BigEndian.Uint64(body[off : off+8]),
			Offset:       binary.BigEndian.Uint64(body[off+8 : off+16]),
			FrameSamples: binary.BigEndian.Uint16(body[off+16 : off+18]),
		})
	}
	return table, nil
}

func (t *SeekTable) encode() []byte {
	body := make([]byte, 0, len(t.Points)*seekPointLen)
	for _, p := range t.Points {
		body = binary.BigEndian.AppendUint64(body, p.Sample)
		body = binary.BigEndian.AppendUint64(body, p.Offset)
		body = binary.BigEndian.AppendUint16(body, p.FrameSamples)
	}
	return body
}

// Block returns the payload re-encoded as a metadata block.
func (t *SeekTable) Block() *Block {
	return NewBlock(TypeSeekTable, t.encode())
}
