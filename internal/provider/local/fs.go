// Package local implements the filesystem storage backends: a tolerant
// convention provider that discovers UUID-named album folders, and a
// strict provider that validates the on-disk layout against the
// repository's declared album structure before serving anything.
package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phonolite/phonolite/internal/provider"
)

// coverFile is the conventional cover art file name.
const coverFile = "cover.jpg"

// mapFSError converts a filesystem error to the provider taxonomy.
func mapFSError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return provider.ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return provider.NewBackendError(provider.BackendPermissionDenied, err)
	default:
		return provider.NewBackendError(provider.BackendTransport, err)
	}
}

// fileByPrefix finds the single file in dir whose name starts with
// prefix, e.g. "3." matching "3.flac".
func fileByPrefix(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", mapFSError(err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", provider.ErrNotFound
}

// trackFile resolves the file holding one track, matched by its
// "N." name prefix.
func trackFile(dir string, track uint8) (string, error) {
	return fileByPrefix(dir, strconv.Itoa(int(track))+".")
}

// hasDiscDirs reports whether dir contains numbered disc subfolders.
func hasDiscDirs(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "1"))
	return err == nil
}

// discDir resolves the folder holding one disc's tracks. Single-disc
// albums may keep their tracks directly in the album folder.
func discDir(albumDir string, disc uint8) (string, error) {
	numbered := filepath.Join(albumDir, strconv.Itoa(int(disc)))
	if info, err := os.Stat(numbered); err == nil && info.IsDir() {
		return numbered, nil
	}
	if disc == 1 && !hasDiscDirs(albumDir) {
		return albumDir, nil
	}
	return "", provider.ErrNotFound
}

// openRange opens path for the given byte window, clamped to the file
// size, and resolves the audio info (duration probed from the FLAC
// header when the window covers it).
func openRange(path string, rng provider.Range) (*provider.AudioReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mapFSError(err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, mapFSError(err)
	}
	size := stat.Size()

	resolved, err := rng.ClampTo(size)
	if err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.Seek(resolved.Start, io.SeekStart); err != nil {
		f.Close()
		return nil, mapFSError(err)
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	var body io.ReadCloser = &limitedFile{
		Reader: io.LimitReader(f, resolved.Length()),
		file:   f,
	}

	duration, body, err := provider.ProbeDuration(body, resolved, ext)
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}

	return &provider.AudioReader{
		Info: provider.AudioInfo{
			Extension:      ext,
			Size:           size,
			DurationMillis: duration,
		},
		Range: resolved,
		Body:  body,
	}, nil
}

type limitedFile struct {
	io.Reader
	file *os.File
}

func (l *limitedFile) Close() error {
	return l.file.Close()
}
