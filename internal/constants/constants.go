// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort          = "8080"
	DefaultRepoDBPath    = "phonolite.db"
	DefaultCacheCapacity = 1024
	DefaultStrictLayer   = 2
	DefaultRemoteTimeout = 30 * time.Second

	// DefaultHTTPTimeout bounds the wait for response headers on the
	// shared HTTP client. Response bodies stream without a deadline so
	// long audio reads are never cut off mid-transfer.
	DefaultHTTPTimeout = 15 * time.Second
)

// MIME Types
const (
	MimeTypeFLAC = "audio/flac"
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeJPEG = "image/jpeg"
)

// File Extensions
const (
	ExtFLAC = ".flac"
	ExtMP3  = ".mp3"
)
