package provider

import (
	"bytes"
	"io"

	"github.com/phonolite/phonolite/internal/flac"
)

// ProbeDuration resolves the duration of a FLAC byte source by
// decoding STREAMINFO from its first bytes. The consumed prefix is
// re-chained in front of the returned reader, so the caller still sees
// the stream from its requested offset. Non-FLAC sources and ranges
// that skip the header resolve to a zero duration.
func ProbeDuration(body io.ReadCloser, rng Range, extension string) (uint64, io.ReadCloser, error) {
	if extension != "flac" || !rng.ContainsFlacHeader() {
		return 0, body, nil
	}

	prefix := make([]byte, flac.ProbeLen)
	n, err := io.ReadFull(body, prefix)
	if err != nil {
		// A file shorter than the FLAC header still streams as-is.
		return 0, &chainedReadCloser{
			Reader: io.MultiReader(bytes.NewReader(prefix[:n]), body),
			closer: body,
		}, nil
	}

	info, err := flac.DecodeStreamInfo(bytes.NewReader(prefix))
	if err != nil {
		body.Close()
		return 0, nil, err
	}

	return info.DurationMillis(), &chainedReadCloser{
		Reader: io.MultiReader(bytes.NewReader(prefix), body),
		closer: body,
	}, nil
}

// chainedReadCloser replays an already-consumed prefix before the rest
// of the source.
type chainedReadCloser struct {
	io.Reader
	closer io.Closer
}

func (c *chainedReadCloser) Close() error {
	return c.closer.Close()
}
