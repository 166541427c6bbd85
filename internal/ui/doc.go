// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view browsing and playback workflow:
//  1. [PlaylistListView] : Browse the user's Spotify playlists
//  2. [TrackListView] : Browse tracks inside a selected playlist
//  3. [NowPlayingView] : Show playback state and control the active device
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Selecting a track starts playback on the active Spotify Connect device; the
// now-playing view offers pause/resume, skip, and refresh.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, p, n, b, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
