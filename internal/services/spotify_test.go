package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// newTestService points a SpotifyService at an httptest server.
func newTestService(t *testing.T, handler http.Handler) *SpotifyService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewSpotifyService(server.Client(), shared.NewLogger(io.Discard))
	svc.SetBaseURL(server.URL)
	return svc
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("UserProfile", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"id": "user123", "display_name": "Test User", "product": "premium"}`)
		}))

		user, err := svc.UserProfile(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "user123" || user.Product != "premium" {
			t.Errorf("unexpected profile: %+v", user)
		}
	})

	t.Run("API Error Envelope", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": {"status": 403, "message": "Insufficient client scope"}}`)
		}))

		_, err := svc.UserProfile(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if got := err.Error(); !strings.Contains(got, "Insufficient client scope") {
			t.Errorf("expected envelope message in error, got %q", got)
		}
	})

	t.Run("API Error Without Envelope", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream broke")
		}))

		_, err := svc.UserProfile(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if got := err.Error(); !strings.Contains(got, "status 502") {
			t.Errorf("expected status in error, got %q", got)
		}
	})

	t.Run("SaveTracks Sends JSON Body", func(t *testing.T) {
		var captured map[string][]string
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %s", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))

		if err := svc.SaveTracks(ctx, []string{"tr1", "tr2"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(captured["ids"]) != 2 || captured["ids"][0] != "tr1" {
			t.Errorf("unexpected body: %v", captured)
		}
	})

	t.Run("SaveTracks Rejects Empty Input", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be made for empty input")
		}))

		if err := svc.SaveTracks(ctx, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("SeveralTracks Caps At Fifty", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be made for oversized input")
		}))

		ids := make([]string, 51)
		for i := range ids {
			ids[i] = fmt.Sprintf("tr%d", i)
		}

		if _, err := svc.SeveralTracks(ctx, ids); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("GetPlaylists Follows Pagination", func(t *testing.T) {
		calls := 0
		var base string
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			offset := r.URL.Query().Get("offset")
			switch offset {
			case "0":
				next := base + "/me/playlists?limit=50&offset=50"
				fmt.Fprintf(w, `{"items": [{"id": "p1", "name": "First", "owner": {"id": "user123"}, "tracks": {"total": 10}}], "next": %q}`, next)
			case "50":
				fmt.Fprint(w, `{"items": [{"id": "p2", "name": "Second", "owner": {"id": "user123"}, "tracks": {"total": 5}}], "next": null}`)
			default:
				t.Errorf("unexpected offset %s", offset)
			}
		}))
		base = svc.baseURL

		playlists, err := svc.GetPlaylists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 page fetches, got %d", calls)
		}
		if len(playlists) != 2 || playlists[0].ID != "p1" || playlists[1].ID != "p2" {
			t.Errorf("unexpected playlists: %+v", playlists)
		}
		if playlists[0].TrackCount != 10 {
			t.Errorf("expected track count mapped, got %d", playlists[0].TrackCount)
		}
	})

	t.Run("ExportPlaylist Collects All Tracks", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/playlists/p1":
				fmt.Fprint(w, `{"id": "p1", "name": "Mix", "owner": {"id": "user123"}, "tracks": {"total": 2}}`)
			case "/playlists/p1/tracks":
				fmt.Fprint(w, `{"items": [
					{"track": {"id": "tr1", "name": "One", "duration_ms": 201000, "uri": "spotify:track:tr1",
						"artists": [{"name": "Artist A"}], "album": {"name": "Album A"},
						"external_ids": {"isrc": "USRC17607839"}}},
					{"track": {"id": "tr2", "name": "Two", "duration_ms": 95000, "uri": "spotify:track:tr2"}}
				], "next": null}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))

		export, err := svc.ExportPlaylist(ctx, "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if export.Playlist.Name != "Mix" {
			t.Errorf("unexpected playlist: %+v", export.Playlist)
		}
		if len(export.Tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(export.Tracks))
		}

		first := export.Tracks[0]
		if first.Artist != "Artist A" || first.Album != "Album A" {
			t.Errorf("expected artist and album mapped, got %+v", first)
		}
		if first.Duration != 201 {
			t.Errorf("expected duration in seconds, got %d", first.Duration)
		}
		if first.ISRC != "USRC17607839" {
			t.Errorf("expected ISRC mapped, got %s", first.ISRC)
		}
	})

	t.Run("SearchTrack", func(t *testing.T) {
		t.Run("Returns Best Match", func(t *testing.T) {
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query().Get("q")
				if !strings.Contains(q, "track:Harness") || !strings.Contains(q, "artist:Julien Baker") {
					t.Errorf("unexpected query %q", q)
				}
				fmt.Fprint(w, `{"tracks": {"items": [{"id": "tr9", "name": "Harness", "artists": [{"name": "Julien Baker"}]}], "total": 1}}`)
			}))

			track, err := svc.SearchTrack(ctx, "Harness", "Julien Baker")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track.ID != "tr9" || track.Artist != "Julien Baker" {
				t.Errorf("unexpected track: %+v", track)
			}
		})

		t.Run("No Match", func(t *testing.T) {
			svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"tracks": {"items": [], "total": 0}}`)
			}))

			_, err := svc.SearchTrack(ctx, "Nonexistent", "")
			if !errors.Is(err, shared.ErrTrackNotFound) {
				t.Errorf("expected ErrTrackNotFound, got %v", err)
			}
		})
	})

	t.Run("ImportPlaylist Creates And Fills", func(t *testing.T) {
		var addedURIs []string
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/users/user123/playlists":
				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				if body["name"] != "Imported" {
					t.Errorf("unexpected create body: %v", body)
				}
				fmt.Fprint(w, `{"id": "new1", "name": "Imported", "owner": {"id": "user123"}, "snapshot_id": "snap1"}`)
			case r.Method == http.MethodPost && r.URL.Path == "/playlists/new1/tracks":
				var body map[string][]string
				json.NewDecoder(r.Body).Decode(&body)
				addedURIs = append(addedURIs, body["uris"]...)
				fmt.Fprint(w, `{"snapshot_id": "snap2"}`)
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		}))

		export := &models.PlaylistExport{
			Playlist: models.Playlist{Name: "Imported"},
			Tracks: []models.Track{
				{ID: "tr1", URI: "spotify:track:tr1"},
				{ID: "tr2", URI: "spotify:track:tr2"},
				{ID: "tr3"}, // no URI, skipped
			},
		}

		created, err := svc.ImportPlaylist(ctx, "user123", export)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.ID != "new1" {
			t.Errorf("unexpected created playlist: %+v", created)
		}
		if len(addedURIs) != 2 {
			t.Errorf("expected 2 URIs added, got %v", addedURIs)
		}
	})

	t.Run("NewReleases", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/browse/new-releases" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"albums": {"items": [{"id": "al1", "name": "New Album", "release_date": "2025-11-01"}]}}`)
		}))

		albums, err := svc.NewReleases(ctx, 20, 0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(albums) != 1 || albums[0].Name != "New Album" {
			t.Errorf("unexpected albums: %+v", albums)
		}
	})
}

type recordingCache struct {
	playlists []models.Playlist
	tracks    []models.Track
}

func (c *recordingCache) StorePlaylist(p models.Playlist, ownerID string) error {
	c.playlists = append(c.playlists, p)
	return nil
}

func (c *recordingCache) StoreTracks(tracks []models.Track) (int, error) {
	c.tracks = append(c.tracks, tracks...)
	return len(tracks), nil
}

func TestSpotifyServiceCaching(t *testing.T) {
	ctx := context.Background()
	cache := &recordingCache{}

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/playlists/p1":
			fmt.Fprint(w, `{"id": "p1", "name": "Mix", "owner": {"id": "user123"}, "tracks": {"total": 1}}`)
		case "/playlists/p1/tracks":
			fmt.Fprint(w, `{"items": [{"track": {"id": "tr1", "name": "One"}}], "next": null}`)
		}
	}))
	svc.SetCache(cache)

	if _, err := svc.ExportPlaylist(ctx, "p1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(cache.playlists) != 1 || cache.playlists[0].ID != "p1" {
		t.Errorf("expected playlist cached, got %+v", cache.playlists)
	}
	if len(cache.tracks) != 1 || cache.tracks[0].ID != "tr1" {
		t.Errorf("expected track cached, got %+v", cache.tracks)
	}
}

