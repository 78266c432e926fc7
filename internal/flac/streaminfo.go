package flac

import (
	"encoding/binary"
	"fmt"
)

// streamInfoLen is the fixed STREAMINFO body size.
const streamInfoLen = 34

// StreamInfo is the decoded STREAMINFO payload: global properties of
// the audio stream.
type StreamInfo struct {
	MinBlockSize uint16
	MaxBlockSize uint16
	MinFrameSize uint32
	MaxFrameSize uint32
	SampleRate   uint32
	Channels     uint8
	BitsPerSample uint8
	TotalSamples uint64
	MD5          [16]byte
}

func parseStreamInfo(body []byte) (*StreamInfo, error) {
	if len(body) != streamInfoLen {
		return nil, fmt.Errorf("%w: STREAMINFO body of %d bytes, want %d", ErrMalformedStream, len(body), streamInfoLen)
	}
	info := &StreamInfo{
		MinBlockSize: binary.BigEndian.Uint16(body[0:2]),
		MaxBlockSize: binary.BigEndian.Uint16(body[2:4]),
		MinFrameSize: uint32(body[4])<<16 | uint32(body[5])<<8 | uint32(body[6]),
		MaxFrameSize: uint32(body[7])<<16 | uint32(body[8])<<8 | uint32(body[9]),
	}
	// 64 packed bits: sample rate (20), channels-1 (3),
	// bits per sample-1 (5), total samples (36).
	packed := binary.BigEndian.Uint64(body[10:18])
	info.SampleRate = uint32(packed >> 44)
	info.Channels = uint8(packed>>41&0x7) + 1
	info.BitsPerSample = uint8(packed>>36&0x1F) + 1
	info.TotalSamples = packed & 0xFFFFFFFFF
	copy(info.MD5[:], body[18:34])

	if info.SampleRate == 0 {
		return nil, fmt.Errorf("%w: STREAMINFO sample rate is zero", ErrMalformedStream)
	}
	return info, nil
}

func (i *StreamInfo) encode() []byte {
	body := make([]byte, streamInfoLen)
	binary.BigEndian.PutUint16(body[0:2], i.MinBlockSize)
	binary.BigEndian.PutUint16(body[2:4], i.MaxBlockSize)
	body[4] = byte(i.MinFrameSize >> 16)
	body[5] = byte(i.MinFrameSize >> 8)
	body[6] = byte(i.MinFrameSize)
	body[7] = byte(i.MaxFrameSize >> 16)
	body[8] = byte(i.MaxFrameSize >> 8)
	body[9] = byte(i.MaxFrameSize)
	packed := uint64(i.SampleRate)<<44 |
		uint64(i.Channels-1)<<41 |
		uint64(i.BitsPerSample-1)<<36 |
		i.TotalSamples&0xFFFFFFFFF
	binary.BigEndian.PutUint64(body[10:18], packed)
	copy(body[18:34], i.MD5[:])
	return body
}

// Block returns the STREAMINFO payload re-encoded as a metadata block.
func (i *StreamInfo) Block() *Block {
	return NewBlock(TypeStreamInfo, i.encode())
}

// DurationMillis returns the stream duration in milliseconds, or 0 if
// the total sample count is unknown.
func (i *StreamInfo) DurationMillis() uint64 {
	if i.SampleRate == 0 {
		return 0
	}
	return i.TotalSamples * 1000 / uint64(i.SampleRate)
}
