// package testing contains shared testing utilities
package testing

import (
	"context"
	_ "embed"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

// PlaylistJSON is a playlist-tracks response with two items on one album and four distinct track artists.
//
//go:embed testdata/playlist.json
var PlaylistJSON []byte

// LocalTracksJSON is a playlist-tracks response with one catalog track and two local files,
// whose ids, popularity and links are null.
//
//go:embed testdata/local_tracks.json
var LocalTracksJSON []byte

// Ptr returns a pointer to v, for building rows with nullable fields.
func Ptr[T any](v T) *T { return &v }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MockSource is a test double for services.PlaylistSource
type MockSource struct {
	Body  []byte
	Err   error
	Calls []string
}

func (m *MockSource) PlaylistTracks(_ context.Context, playlistID string) ([]byte, error) {
	m.Calls = append(m.Calls, playlistID)
	return m.Body, m.Err
}

func (m *MockSource) Name() string { return "mock" }

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
