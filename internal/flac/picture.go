package flac

import (
	"encoding/binary"
	"fmt"
)

// PictureType is the ID3v2-derived picture classification used by
// PICTURE blocks.
type PictureType uint32

const (
	PictureOther PictureType = iota
	PictureFileIcon
	PictureOtherFileIcon
	PictureFrontCover
	PictureBackCover
	PictureLeaflet
	PictureMedia
	PictureLeadArtist
	PictureArtist
	PictureConductor
	PictureBand
	PictureComposer
	PictureLyricist
	PictureRecordingLocation
	PictureDuringRecording
	PictureDuringPerformance
	PictureScreenCapture
	PictureBrightColoredFish
	PictureIllustration
	PictureBandLogotype
	PicturePublisherLogotype
)

// Picture is the decoded PICTURE payload. The image data is carried
// verbatim; its contents are not validated.
type Picture struct {
	Type        PictureType
	MIMEType    string
	Description string
	Width       uint32
	Height      uint32
	Depth       uint32
	Colors      uint32
	Data        []byte
}

func parsePicture(body []byte) (*Picture, error) {
	take := func(n int, what string) ([]byte, error) {
		if n > len(body) {
			return nil, fmt.Errorf("%w: PICTURE %s overruns block", ErrMalformedStream, what)
		}
		chunk := body[:n]
		body = body[n:]
		return chunk, nil
	}
	takeU32 := func(what string) (uint32, error) {
		chunk, err := take(4, what)
		if err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint32(chunk), nil
	}

	p := &Picture{}
	typ, err := takeU32("type")
	if err != nil {
		return nil, err
	}
	if typ > uint32(PicturePublisherLogotype) {
		return nil, fmt.Errorf("%w: PICTURE type %d out of range", ErrMalformedStream, typ)
	}
	p.Type = PictureType(typ)

	mimeLen, err := takeU32("mime length")
	if err != nil {
		return nil, err
	}
	mime, err := take(int(mimeLen), "mime string")
	if err != nil {
		return nil, err
	}
	p.MIMEType = string(mime)

	descLen, err := takeU32("description length")
	if err != nil {
		return nil, err
	}
	desc, err := take(int(descLen), "description")
	if err != nil {
		return nil, err
	}
	p.Description = string(desc)

	if p.Width, err = takeU32("width"); err != nil {
		return nil, err
	}
	if p.Height, err = takeU32("height"); err != nil {
		return nil, err
	}
	if p.Depth, err = takeU32("depth"); err != nil {
		return nil, err
	}
	if p.Colors, err = takeU32("color count"); err != nil {
		return nil, err
	}

	dataLen, err := takeU32("data length")
	if err != nil {
		return nil, err
	}
	data, err := take(int(dataLen), "data")
	if err != nil {
		return nil, err
	}
	p.Data = data
	return p, nil
}

func (p *Picture) encode() []byte {
	body := make([]byte, 0, 32+len(p.MIMEType)+len(p.Description)+len(p.Data))
	body = binary.BigEndian.AppendUint32(body, uint32(p.Type))
	body = binary.BigEndian.AppendUint32(body, uint32(len(p.MIMEType)))
	body = append(body, p.MIMEType...)
	body = binary.BigEndian.AppendUint32(body, uint32(len(p.Description)))
	body = append(body, p.Description...)
	body = binary.BigEndian.AppendUint32(body, p.Width)
	body = binary.BigEndian.AppendUint32(body, p.Height)
	body = binary.BigEndian.AppendUint32(body, p.Depth)
	body = binary.BigEndian.AppendUint32(body, p.Colors)
	body = binary.BigEndian.AppendUint32(body, uint32(len(p.Data)))
	body = append(body, p.Data...)
	return body
}

// Block returns the payload re-encoded as a metadata block.
func (p *Picture) Block() *Block {
	return NewBlock(TypePicture, p.encode())
}
