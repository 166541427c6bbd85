// Playback control via the Spotify Connect API.
//
// Most player endpoints return 204 with no body on success, and 404 when no
// device is active. The 404 case is mapped to [shared.ErrNoActiveDevice] so
// callers can prompt the user to start playback somewhere first.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spx/internal/shared"
)

// Devices lists the user's available Spotify Connect devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]Device, error) {
	var response struct {
		Devices []Device `json:"devices"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, &response); err != nil {
		return nil, err
	}
	return response.Devices, nil
}

// PlaybackState retrieves the current playback state. Returns nil with no
// error when nothing is playing on any device (the API's 204 response).
func (s *SpotifyService) PlaybackState(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	if err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, &state); err != nil {
		return nil, err
	}
	if state.Device.ID == "" && state.Item.ID == "" {
		return nil, nil
	}
	return &state, nil
}

// Play starts or resumes playback. A context URI plays an album or playlist,
// track URIs play those tracks; both empty resumes the current context.
func (s *SpotifyService) Play(ctx context.Context, contextURI string, trackURIs []string) error {
	var body any
	switch {
	case contextURI != "":
		body = map[string]any{"context_uri": contextURI}
	case len(trackURIs) > 0:
		body = map[string]any{"uris": trackURIs}
	}

	return s.playerError(s.doRequest(ctx, http.MethodPut, "/me/player/play", body, nil))
}

// Pause pauses playback on the active device.
func (s *SpotifyService) Pause(ctx context.Context) error {
	return s.playerError(s.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil))
}

// Next skips to the next track.
func (s *SpotifyService) Next(ctx context.Context) error {
	return s.playerError(s.doRequest(ctx, http.MethodPost, "/me/player/next", nil, nil))
}

// Previous skips to the previous track.
func (s *SpotifyService) Previous(ctx context.Context) error {
	return s.playerError(s.doRequest(ctx, http.MethodPost, "/me/player/previous", nil, nil))
}

// Seek jumps to a position in the current track.
func (s *SpotifyService) Seek(ctx context.Context, positionMS int) error {
	if positionMS < 0 {
		return fmt.Errorf("%w: position must be non-negative", shared.ErrInvalidArgument)
	}
	endpoint := fmt.Sprintf("/me/player/seek?position_ms=%d", positionMS)
	return s.playerError(s.doRequest(ctx, http.MethodPut, endpoint, nil, nil))
}

// SetVolume sets the playback volume (0-100).
func (s *SpotifyService) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: volume must be between 0 and 100", shared.ErrInvalidArgument)
	}
	endpoint := fmt.Sprintf("/me/player/volume?volume_percent=%d", percent)
	return s.playerError(s.doRequest(ctx, http.MethodPut, endpoint, nil, nil))
}

// Queue adds a track URI to the playback queue.
func (s *SpotifyService) Queue(ctx context.Context, uri string) error {
	if uri == "" {
		return fmt.Errorf("%w: empty queue URI", shared.ErrInvalidArgument)
	}
	endpoint := fmt.Sprintf("/me/player/queue?uri=%s", url.QueryEscape(uri))
	return s.playerError(s.doRequest(ctx, http.MethodPost, endpoint, nil, nil))
}

// playerError rewrites the API's device-not-found failure into a
// friendlier sentinel.
func (s *SpotifyService) playerError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, shared.ErrAPIRequest) && strings.Contains(err.Error(), "status 404") {
		return fmt.Errorf("%w: %v", shared.ErrNoActiveDevice, err)
	}
	return err
}
