package ui

import (
	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
)

// playlistsFetchedMsg carries the playlist listing result.
type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

// tracksFetchedMsg carries a playlist export with its tracks.
type tracksFetchedMsg struct {
	playlist *models.PlaylistExport
	err      error
}

// playbackMsg carries the current playback state after a refresh.
type playbackMsg struct {
	state *services.PlaybackState
	err   error
}

// actionDoneMsg reports the outcome of a player command (play, pause, skip).
type actionDoneMsg struct {
	err error
}
