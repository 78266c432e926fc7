package provider

import (
	"fmt"
	"strconv"
	"strings"
)

// flacHeaderLen covers the magic marker, the STREAMINFO block header
// and its 34-byte body. A range read of this prefix is enough to
// resolve the audio duration.
const flacHeaderLen = 42

// Range is a half-open byte window [Start, End). End < 0 leaves the
// range open until the end of the resource; Total < 0 means the
// resource size is unknown.
type Range struct {
	Start int64
	End   int64
	Total int64
}

// FullRange covers the whole resource.
func FullRange() Range {
	return Range{Start: 0, End: -1, Total: -1}
}

// FlacHeaderRange covers the prefix needed to decode STREAMINFO.
func FlacHeaderRange() Range {
	return Range{Start: 0, End: flacHeaderLen, Total: -1}
}

// NewRange builds a half-open range. end < 0 leaves it open.
func NewRange(start, end int64) Range {
	return Range{Start: start, End: end, Total: -1}
}

// Full reports whether the range covers the whole resource.
func (r Range) Full() bool {
	return r.Start == 0 && r.End < 0
}

// Length returns the number of bytes the range covers, or -1 when the
// range is open-ended.
func (r Range) Length() int64 {
	if r.End < 0 {
		return -1
	}
	return r.End - r.Start
}

// ClampTo resolves the range against a resource of the given size:
// open ends close at size, overlong ends clamp to size, and a start at
// or past the end fails with ErrInvalidRange.
func (r Range) ClampTo(size int64) (Range, error) {
	if r.Start < 0 || r.Start >= size {
		return Range{}, fmt.Errorf("%w: start %d of %d-byte resource", ErrInvalidRange, r.Start, size)
	}
	end := r.End
	if end < 0 || end > size {
		end = size
	}
	if end <= r.Start {
		return Range{}, fmt.Errorf("%w: empty window [%d, %d)", ErrInvalidRange, r.Start, r.End)
	}
	return Range{Start: r.Start, End: end, Total: size}, nil
}

// ContainsFlacHeader reports whether the range covers the STREAMINFO
// prefix of a FLAC file.
func (r Range) ContainsFlacHeader() bool {
	return r.Start == 0 && (r.End < 0 || r.End >= flacHeaderLen)
}

// RequestHeader renders the range as an HTTP Range header value, or ""
// for a full-resource request. HTTP ranges are end-inclusive.
func (r Range) RequestHeader() string {
	if r.Full() {
		return ""
	}
	if r.End < 0 {
		return fmt.Sprintf("bytes=%d-", r.Start)
	}
	return fmt.Sprintf("bytes=%d-%d", r.Start, r.End-1)
}

// ContentRangeHeader renders the range as an HTTP Content-Range value.
func (r Range) ContentRangeHeader() string {
	total := "*"
	if r.Total >= 0 {
		total = strconv.FormatInt(r.Total, 10)
	}
	if r.End < 0 {
		return fmt.Sprintf("bytes %d-/%s", r.Start, total)
	}
	return fmt.Sprintf("bytes %d-%d/%s", r.Start, r.End-1, total)
}

// ParseContentRange converts a Content-Range response header back to a
// Range. Unparseable headers resolve to the full range.
func ParseContentRange(header string) Range {
	rest, ok := strings.CutPrefix(header, "bytes ")
	if !ok {
		return FullRange()
	}
	span, totalPart, _ := strings.Cut(rest, "/")
	startPart, endPart, _ := strings.Cut(span, "-")

	rng := FullRange()
	if start, err := strconv.ParseInt(startPart, 10, 64); err == nil {
		rng.Start = start
	}
	if end, err := strconv.ParseInt(endPart, 10, 64); err == nil {
		rng.End = end + 1
	}
	if total, err := strconv.ParseInt(totalPart, 10, 64); err == nil {
		rng.Total = total
	}
	return rng
}

// ParseRangeHeader converts an HTTP Range request header ("bytes=a-b",
// end-inclusive) to a half-open Range. Absent or unsupported headers
// resolve to the full range.
func ParseRangeHeader(header string) Range {
	rest, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(rest, ",") {
		return FullRange()
	}
	startPart, endPart, _ := strings.Cut(rest, "-")
	// Suffix ranges ("bytes=-500") need the resource size to resolve;
	// serve the whole resource instead of misreading the suffix length
	// as an end position.
	start, err := strconv.ParseInt(startPart, 10, 64)
	if err != nil {
		return FullRange()
	}
	rng := FullRange()
	rng.Start = start
	if end, err := strconv.ParseInt(endPart, 10, 64); err == nil {
		rng.End = end + 1
	}
	return rng
}
