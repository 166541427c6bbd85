// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
)

// FakeService is a configurable test double for [services.Service].
// Zero value returns empty results; set the function fields to script behavior.
type FakeService struct {
	ProfileFunc  func(ctx context.Context) (*services.SpotifyUser, error)
	ListFunc     func(ctx context.Context) ([]models.Playlist, error)
	GetFunc      func(ctx context.Context, playlistID string) (*models.Playlist, error)
	ExportFunc   func(ctx context.Context, playlistID string) (*models.PlaylistExport, error)
	SearchFunc   func(ctx context.Context, title, artist string) (*models.Track, error)
	ExportCalls  int
	ServiceName  string
}

func (f *FakeService) UserProfile(ctx context.Context) (*services.SpotifyUser, error) {
	if f.ProfileFunc != nil {
		return f.ProfileFunc(ctx)
	}
	return &services.SpotifyUser{ID: "test-user"}, nil
}

func (f *FakeService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx)
	}
	return []models.Playlist{}, nil
}

func (f *FakeService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, playlistID)
	}
	return &models.Playlist{ID: playlistID}, nil
}

func (f *FakeService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	f.ExportCalls++
	if f.ExportFunc != nil {
		return f.ExportFunc(ctx, playlistID)
	}
	return &models.PlaylistExport{
		Playlist: models.Playlist{ID: playlistID, Name: fmt.Sprintf("Playlist %s", playlistID)},
	}, nil
}

func (f *FakeService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, title, artist)
	}
	return &models.Track{Title: title, Artist: artist}, nil
}

func (f *FakeService) Name() string {
	if f.ServiceName != "" {
		return f.ServiceName
	}
	return "fake"
}

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

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
