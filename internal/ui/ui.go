package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	NowPlayingView
)

// Model represents the TUI application state.
type Model struct {
	ctx              context.Context
	view             ViewState
	spotify          services.Service
	player           services.Player
	width            int
	height           int
	playlistList     list.Model
	playlists        []models.Playlist
	trackList        list.Model
	selectedPlaylist *models.PlaylistExport
	playback         *services.PlaybackState
	err              error
	help             help.Model
	keys             keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, spotify services.Service, player services.Player) *Model {
	return &Model{
		ctx:     ctx,
		view:    PlaylistListView,
		spotify: spotify,
		player:  player,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching playlists from Spotify.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case NowPlayingView:
			return m.handleNowPlayingKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Spotify Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selectedPlaylist = msg.playlist
		items := make([]list.Item, len(msg.playlist.Tracks))
		for i, track := range msg.playlist.Tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", msg.playlist.Playlist.Name)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case playbackMsg:
		m.err = msg.err
		m.playback = msg.state
		m.view = NowPlayingView
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.refreshPlayback()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != NowPlayingView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case NowPlayingView:
		return m.renderNowPlaying()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "p":
		return m, m.refreshPlayback()
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.fetchTracks(pl.playlist.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "enter":
		selected := m.trackList.SelectedItem()
		if selected != nil {
			if tr, ok := selected.(trackItem); ok && tr.track.URI != "" {
				return m, m.playTrack(tr.track.URI)
			}
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleNowPlayingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = TrackListView
		if m.selectedPlaylist == nil {
			m.view = PlaylistListView
		}
		return m, nil
	case "p":
		return m, m.togglePlayback()
	case "n":
		return m, m.playerAction(m.player.Next)
	case "b":
		return m, m.playerAction(m.player.Previous)
	case "r":
		return m, m.refreshPlayback()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.spotify.GetPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.spotify.ExportPlaylist(m.ctx, playlistID)
		return tracksFetchedMsg{playlist: playlist, err: err}
	}
}

func (m *Model) playTrack(uri string) tea.Cmd {
	return func() tea.Msg {
		err := m.player.Play(m.ctx, "", []string{uri})
		return actionDoneMsg{err: err}
	}
}

func (m *Model) togglePlayback() tea.Cmd {
	return func() tea.Msg {
		var err error
		if m.playback != nil && m.playback.IsPlaying {
			err = m.player.Pause(m.ctx)
		} else {
			err = m.player.Play(m.ctx, "", nil)
		}
		return actionDoneMsg{err: err}
	}
}

func (m *Model) playerAction(action func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: action(m.ctx)}
	}
}

func (m *Model) refreshPlayback() tea.Cmd {
	return func() tea.Msg {
		state, err := m.player.PlaybackState(m.ctx)
		return playbackMsg{state: state, err: err}
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.pause, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	playKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "play"),
	)
	helpKeys := []key.Binding{playKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderNowPlaying() string {
	title := styles.title.Render("Now Playing")

	var body string
	switch {
	case m.err != nil:
		body = styles.err.Render(fmt.Sprintf("Playback error: %v", m.err))
	case m.playback == nil:
		body = styles.warn.Render("Nothing is playing. Start playback on a device first.")
	default:
		track := m.playback.Item
		artist := ""
		if len(track.Artists) > 0 {
			artist = track.Artists[0].Name
		}

		status := styles.warn.Render("⏸ Paused")
		if m.playback.IsPlaying {
			status = styles.ok.Render("▶ Playing")
		}

		position := shared.FormatDuration(m.playback.ProgressMS / 1000)
		duration := shared.FormatDuration(track.DurationMS / 1000)

		body = fmt.Sprintf("%s\n\n%s - %s\n%s\n\n%s / %s on %s",
			status, artist, track.Name, track.Album.Name,
			position, duration, m.playback.Device.Name)
	}

	helpKeys := []key.Binding{m.keys.pause, m.keys.next, m.keys.prev, m.keys.refresh, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, body, helpView)
}
