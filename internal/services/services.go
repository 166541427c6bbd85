// package services defines interface Service for interacting with the Spotify Web API
package services

import (
	"context"

	"github.com/desertthunder/spx/internal/models"
)

// Service defines the provider-facing operations the CLI depends on.
// The concrete implementation is [SpotifyService]; the interface exists so
// commands and background tasks can be tested against fakes.
type Service interface {
	// UserProfile retrieves the authenticated user's profile.
	UserProfile(ctx context.Context) (*SpotifyUser, error)

	// GetPlaylists retrieves all playlists for the authenticated user,
	// following pagination until exhausted.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// ExportPlaylist exports a playlist with all its tracks.
	ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// SearchTrack searches for a track by title and artist.
	// Returns the best match or an error if no match is found.
	SearchTrack(ctx context.Context, title, artist string) (*models.Track, error)

	// Name returns the name of the service.
	Name() string
}

// Player defines playback control operations against the connect API.
// All mutating calls return nil on the API's empty 204 responses.
type Player interface {
	Devices(ctx context.Context) ([]Device, error)
	PlaybackState(ctx context.Context) (*PlaybackState, error)
	Play(ctx context.Context, contextURI string, trackURIs []string) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, positionMS int) error
	SetVolume(ctx context.Context, percent int) error
	Queue(ctx context.Context, uri string) error
}

// Device represents a Spotify Connect playback device.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// PlaybackState represents the current playback context on the active device.
type PlaybackState struct {
	Device       Device       `json:"device"`
	IsPlaying    bool         `json:"is_playing"`
	ProgressMS   int          `json:"progress_ms"`
	ShuffleState bool         `json:"shuffle_state"`
	RepeatState  string       `json:"repeat_state"`
	Item         SpotifyTrack `json:"item"`
}
