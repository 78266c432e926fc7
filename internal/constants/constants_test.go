package constants

import (
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	// Test that default values are set correctly
	if DefaultPort != "8080" {
		t.Errorf("Expected DefaultPort to be '8080', got '%s'", DefaultPort)
	}

	if DefaultRepoDBPath != "phonolite.db" {
		t.Errorf("Expected DefaultRepoDBPath to be 'phonolite.db', got '%s'", DefaultRepoDBPath)
	}

	if DefaultCacheCapacity <= 0 {
		t.Errorf("Expected DefaultCacheCapacity to be positive, got %d", DefaultCacheCapacity)
	}

	if DefaultStrictLayer != 2 {
		t.Errorf("Expected DefaultStrictLayer to be 2, got %d", DefaultStrictLayer)
	}
}

func TestMimeTypes(t *testing.T) {
	types := []string{
		MimeTypeFLAC,
		MimeTypeMP3,
		MimeTypeJPEG,
	}

	for _, m := range types {
		if m == "" {
			t.Error("MIME type constant should not be empty")
		}
	}
}

func TestTimeouts(t *testing.T) {
	if DefaultHTTPTimeout != 15*time.Second {
		t.Errorf("Expected DefaultHTTPTimeout to be 15 seconds, got %v", DefaultHTTPTimeout)
	}

	if DefaultRemoteTimeout != 30*time.Second {
		t.Errorf("Expected DefaultRemoteTimeout to be 30 seconds, got %v", DefaultRemoteTimeout)
	}
}
