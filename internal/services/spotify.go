// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
	URI         string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	AlbumType   string          `json:"album_type"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracks struct {
	Total int                    `json:"total"`
	Items []SpotifyPlaylistTrack `json:"items"`
	Next  *string                `json:"next"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Public      bool           `json:"public"`
	SnapshotID  string         `json:"snapshot_id"`
	Tracks      playlistTracks `json:"tracks"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents one page of a playlist's items.
type SpotifyPaginatedPlaylistTracks struct {
	Items    []SpotifyPlaylistTrack `json:"items"`
	Total    int                    `json:"total"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
	Next     *string                `json:"next"`
	Previous *string                `json:"previous"`
}

// SpotifyPaginatedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedTracks struct {
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifySimplePlaylist `json:"items"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       Owner                `json:"owner"`
	Public      bool                 `json:"public"`
	SnapshotID  string               `json:"snapshot_id"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	Images      []SpotifyImage       `json:"images"`
	URI         string               `json:"uri"`
}

// SpotifySearchResults holds the result buckets of a search query.
type SpotifySearchResults struct {
	Tracks *struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
	Artists *struct {
		Items []SpotifyArtist `json:"items"`
		Total int             `json:"total"`
	} `json:"artists"`
	Albums *struct {
		Items []SpotifyAlbum `json:"items"`
		Total int            `json:"total"`
	} `json:"albums"`
	Playlists *struct {
		Items []SpotifySimplePlaylist `json:"items"`
		Total int                     `json:"total"`
	} `json:"playlists"`
}

// SpotifyPlayHistory represents one recently played entry.
type SpotifyPlayHistory struct {
	Track    SpotifyTrack `json:"track"`
	PlayedAt string       `json:"played_at"`
}

// apiError is the error envelope Spotify wraps failures in.
type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements [Service] and [Player] against the Spotify Web API.
// The provided client is expected to attach credentials to every request, so
// the service itself never touches tokens.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
	cache      cacheWriter
}

// cacheWriter is the slice of the local cache the service writes through to.
type cacheWriter interface {
	StorePlaylist(playlist models.Playlist, ownerID string) error
	StoreTracks(tracks []models.Track) (int, error)
}

// NewSpotifyService creates a Spotify service over an authenticated HTTP client.
func NewSpotifyService(client *http.Client, logger *log.Logger) *SpotifyService {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SpotifyService{
		baseURL:    spotifyBaseURL,
		httpClient: client,
		logger:     logger,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (s *SpotifyService) SetBaseURL(u string) { s.baseURL = strings.TrimSuffix(u, "/") }

// SetCache enables opportunistic write-through caching of fetched playlists
// and tracks. Cache failures are logged, never surfaced.
func (s *SpotifyService) SetCache(cache cacheWriter) { s.cache = cache }

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an HTTP request against the API. A non-nil body is
// JSON-encoded. Empty and 204 responses leave result untouched.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	apiURL := s.baseURL + endpoint

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.apiError(resp)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// apiError maps a failed response onto [shared.ErrAPIRequest], preferring the
// message from Spotify's error envelope when one is present.
func (s *SpotifyService) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope apiError
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, envelope.Error.Message)
	}

	return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s", url.PathEscape(trackID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// SeveralTracks retrieves multiple tracks by their IDs (up to 50).
func (s *SpotifyService) SeveralTracks(ctx context.Context, trackIDs []string) ([]SpotifyTrack, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidArgument)
	}
	if len(trackIDs) > 50 {
		return nil, fmt.Errorf("%w: maximum 50 track IDs allowed", shared.ErrInvalidArgument)
	}

	ids := strings.Join(trackIDs, ",")
	endpoint := fmt.Sprintf("/tracks?ids=%s", url.QueryEscape(ids))

	var response struct {
		Tracks []SpotifyTrack `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Tracks, nil
}

// SavedTracks retrieves the user's saved tracks with pagination.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*SpotifyPaginatedTracks, error) {
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", clampLimit(limit), offset)

	var response SpotifyPaginatedTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// SaveTracks adds tracks to the user's library.
func (s *SpotifyService) SaveTracks(ctx context.Context, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidArgument)
	}

	body := map[string][]string{"ids": trackIDs}
	return s.doRequest(ctx, http.MethodPut, "/me/tracks", body, nil)
}

// RemoveSavedTracks removes tracks from the user's library.
func (s *SpotifyService) RemoveSavedTracks(ctx context.Context, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidArgument)
	}

	body := map[string][]string{"ids": trackIDs}
	return s.doRequest(ctx, http.MethodDelete, "/me/tracks", body, nil)
}

// UserPlaylists retrieves the current user's playlists with pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", clampLimit(limit), offset)

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// PlaylistItems retrieves one page of a playlist's tracks.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*SpotifyPaginatedPlaylistTracks, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), clampLimit(limit), offset)

	var response SpotifyPaginatedPlaylistTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// CreatePlaylist creates a playlist for the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*SpotifyPlaylist, error) {
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// AddPlaylistItems appends track URIs to a playlist and returns the new snapshot ID.
func (s *SpotifyService) AddPlaylistItems(ctx context.Context, playlistID string, uris []string) (string, error) {
	if len(uris) == 0 {
		return "", fmt.Errorf("%w: no track URIs provided", shared.ErrInvalidArgument)
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string][]string{"uris": uris}

	var response struct {
		SnapshotID string `json:"snapshot_id"`
	}
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &response); err != nil {
		return "", err
	}

	return response.SnapshotID, nil
}

// Search queries the catalog. Types is a subset of track, artist, album, playlist.
func (s *SpotifyService) Search(ctx context.Context, query string, types []string, limit int) (*SpotifySearchResults, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidArgument)
	}
	if len(types) == 0 {
		types = []string{"track"}
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=%s&limit=%d",
		url.QueryEscape(query), url.QueryEscape(strings.Join(types, ",")), clampLimit(limit))

	var results SpotifySearchResults
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &results); err != nil {
		return nil, err
	}

	return &results, nil
}

// TopTracks retrieves the user's top tracks for a time range
// (short_term, medium_term, long_term).
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit int) ([]SpotifyTrack, error) {
	if timeRange == "" {
		timeRange = "medium_term"
	}

	endpoint := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", url.QueryEscape(timeRange), clampLimit(limit))

	var response struct {
		Items []SpotifyTrack `json:"items"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// TopArtists retrieves the user's top artists for a time range.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit int) ([]SpotifyArtist, error) {
	if timeRange == "" {
		timeRange = "medium_term"
	}

	endpoint := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", url.QueryEscape(timeRange), clampLimit(limit))

	var response struct {
		Items []SpotifyArtist `json:"items"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// RecentlyPlayed retrieves the user's recently played tracks.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) ([]SpotifyPlayHistory, error) {
	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", clampLimit(limit))

	var response struct {
		Items []SpotifyPlayHistory `json:"items"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Items, nil
}

// NewReleases retrieves newly released albums.
func (s *SpotifyService) NewReleases(ctx context.Context, limit, offset int) ([]SpotifyAlbum, error) {
	endpoint := fmt.Sprintf("/browse/new-releases?limit=%d&offset=%d", clampLimit(limit), offset)

	var response struct {
		Albums struct {
			Items []SpotifyAlbum `json:"items"`
		} `json:"albums"`
	}
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return response.Albums.Items, nil
}

// Service interface implementation

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	limit := 50
	offset := 0

	for {
		response, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			playlist := models.Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				TrackCount:  sp.Tracks.Total,
				Public:      sp.Public,
				Owner:       sp.Owner.ID,
				SnapshotID:  sp.SnapshotID,
			}
			all = append(all, playlist)
			s.cachePlaylist(playlist, sp.Owner.ID)
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return all, nil
}

// GetPlaylist retrieves a specific playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	playlist := models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
		Owner:       sp.Owner.ID,
		SnapshotID:  sp.SnapshotID,
	}
	s.cachePlaylist(playlist, sp.Owner.ID)

	return &playlist, nil
}

// ExportPlaylist exports a playlist with all its tracks, following pagination.
func (s *SpotifyService) ExportPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	playlist, err := s.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	limit := 50
	offset := 0

	for {
		page, err := s.PlaylistItems(ctx, playlistID, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			tracks = append(tracks, MapTrack(item.Track))
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	s.cacheTracks(tracks)

	return &models.PlaylistExport{
		Playlist: *playlist,
		Tracks:   tracks,
	}, nil
}

// ImportPlaylist creates a playlist for the user and fills it with tracks.
func (s *SpotifyService) ImportPlaylist(ctx context.Context, userID string, export *models.PlaylistExport) (*models.Playlist, error) {
	created, err := s.CreatePlaylist(ctx, userID, export.Playlist.Name, export.Playlist.Description, export.Playlist.Public)
	if err != nil {
		return nil, err
	}

	var uris []string
	for _, track := range export.Tracks {
		if track.URI != "" {
			uris = append(uris, track.URI)
		}
	}

	// 100 URIs per request is the API's add limit.
	for start := 0; start < len(uris); start += 100 {
		end := min(start+100, len(uris))
		if _, err := s.AddPlaylistItems(ctx, created.ID, uris[start:end]); err != nil {
			return nil, err
		}
	}

	return &models.Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		TrackCount:  len(uris),
		Public:      created.Public,
		Owner:       created.Owner.ID,
		SnapshotID:  created.SnapshotID,
	}, nil
}

// SearchTrack searches for a track by title and artist and returns the best match.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artist string) (*models.Track, error) {
	query := fmt.Sprintf("track:%s", title)
	if artist != "" {
		query += fmt.Sprintf(" artist:%s", artist)
	}

	results, err := s.Search(ctx, query, []string{"track"}, 1)
	if err != nil {
		return nil, err
	}

	if results.Tracks == nil || len(results.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: no match for %q", shared.ErrTrackNotFound, title)
	}

	track := MapTrack(results.Tracks.Items[0])
	return &track, nil
}

func (s *SpotifyService) cachePlaylist(playlist models.Playlist, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.StorePlaylist(playlist, ownerID); err != nil {
		s.logger.Warn("failed to cache playlist", "playlist", playlist.ID, "error", err)
	}
}

func (s *SpotifyService) cacheTracks(tracks []models.Track) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.StoreTracks(tracks); err != nil {
		s.logger.Warn("failed to cache tracks", "error", err)
	}
}

// MapTrack converts an API track object into the provider-neutral form.
func MapTrack(st SpotifyTrack) models.Track {
	track := models.Track{
		ID:       st.ID,
		Title:    st.Name,
		Album:    st.Album.Name,
		Duration: st.DurationMS / 1000,
		ISRC:     st.ExternalIDs.ISRC,
		URI:      st.URI,
	}

	if len(st.Artists) > 0 {
		track.Artist = st.Artists[0].Name
	}

	return track
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}
