package flac

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// CueIndex is one index point within a cue sheet track.
type CueIndex struct {
	Offset uint64
	Number uint8
}

// CueTrack is one track entry of a CUESHEET block.
type CueTrack struct {
	Offset      uint64
	Number      uint8
	ISRC        string
	NonAudio    bool
	PreEmphasis bool
	Indices     []CueIndex
}

// CueSheet is the decoded CUESHEET payload.
type CueSheet struct {
	CatalogNumber string
	LeadInSamples uint64
	IsCD          bool
	Tracks        []CueTrack
}

func parseCueSheet(body []byte) (*CueSheet, error) {
	// catalog(128) + lead-in(8) + flags(1) + reserved(258) + count(1)
	const headerLen = 128 + 8 + 1 + 258 + 1
	if len(body) < headerLen {
		return nil, fmt.Errorf("%w: CUESHEET body of %d bytes too short", ErrMalformedStream, len(body))
	}
	sheet := &CueSheet{
		CatalogNumber: string(bytes.TrimRight(body[:128], "\x00")),
		LeadInSamples: binary.BigEndian.Uint64(body[128:136]),
		IsCD:          body[136]&0x80 != 0,
	}
	trackCount := int(body[headerLen-1])
	body = body[headerLen:]

	for i := 0; i < trackCount; i++ {
		// offset(8) + number(1) + isrc(12) + flags(1) + reserved(13) + count(1)
		const trackLen = 8 + 1 + 12 + 1 + 13 + 1
		if len(body) < trackLen {
			return nil, fmt.Errorf("%w: CUESHEET track %d overruns block", ErrMalformedStream, i)
		}
		track := CueTrack{
			Offset:      binary.BigEndian.Uint64(body[0:8]),
			Number:      body[8],
			ISRC:        string(bytes.TrimRight(body[9:21], "\x00")),
			NonAudio:    body[21]&0x80 != 0,
			PreEmphasis: body[21]&0x40 != 0,
		}
		indexCount := int(body[trackLen-1])
		body = body[trackLen:]

		for j := 0; j < indexCount; j++ {
			// offset(8) + number(1) + reserved(3)
			const indexLen = 12
			if len(body) < indexLen {
				return nil, fmt.Errorf("%w: CUESHEET track %d index %d overruns block", ErrMalformedStream, i, j)
			}
			track.Indices = append(track.Indices, CueIndex{
				Offset: binary.BigEndian.Uint64(body[0:8]),
				Number: body[8],
			})
			body = body[indexLen:]
		}
		sheet.Tracks = append(sheet.Tracks, track)
	}
	return sheet, nil
}

func (c *CueSheet) encode() []byte {
	var body []byte
	catalog := make([]byte, 128)
	copy(catalog, c.CatalogNumber)
	body = append(body, catalog...)
	body = binary.BigEndian.AppendUint64(body, c.LeadInSamples)
	var flags byte
	if c.IsCD {
		flags |= 0x80
	}
	body = append(body, flags)
	body = append(body, make([]byte, 258)...)
	body = append(body, byte(len(c.Tracks)))

	for _, t := range c.Tracks {
		body = binary.BigEndian.AppendUint64(body, t.Offset)
		body = append(body, t.Number)
		isrc := make([]byte, 12)
		copy(isrc, t.ISRC)
		body = append(body, isrc...)
		flags = 0
		if t.NonAudio {
			flags |= 0x80
		}
		if t.PreEmphasis {
			flags |= 0x40
		}
		body = append(body, flags)
		body = append(body, make([]byte, 13)...)
		body = append(body, byte(len(t.Indices)))
		for _, idx := range t.Indices {
			body = binary.BigEndian.AppendUint64(body, idx.Offset)
			body = append(body, idx.Number)
			body = append(body, 0, 0, 0)
		}
	}
	return body
}

// Block returns the payload re-encoded as a metadata block.
func (c *CueSheet) Block() *Block {
	return NewBlock(TypeCueSheet, c.encode())
}
