package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phonolite/phonolite/internal/constants"
)

func TestNewClient_DefaultTimeouts(t *testing.T) {
	c := NewClient(nil, 0).GetUnderlyingClient()

	// A whole-request timeout would also bound reading the response
	// body and truncate long streams; only the header wait is limited.
	if c.Timeout != 0 {
		t.Errorf("Expected no client-level timeout, got %v", c.Timeout)
	}
	transport, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Expected an *http.Transport, got %T", c.Transport)
	}
	if transport.ResponseHeaderTimeout != constants.DefaultHTTPTimeout {
		t.Errorf("Expected header timeout %v, got %v", constants.DefaultHTTPTimeout, transport.ResponseHeaderTimeout)
	}
}

func TestClient_SlowBodySurvives(t *testing.T) {
	body := []byte("0123456789")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := range body {
			w.Write(body[i : i+1])
			flusher.Flush()
			time.Sleep(20 * time.Millisecond)
		}
	}))
	defer srv.Close()

	c := NewClient(nil, 0)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	resp, err := c.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()

	got, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Body read failed mid-stream: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("Expected %q, got %q", body, got)
	}
}

func TestClient_RetriesOnThrottle(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(nil, 0)
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	resp, err := c.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	defer resp.Body.Close()
	if calls != 2 {
		t.Errorf("Expected a retry after the throttle response, got %d calls", calls)
	}
}
