package repositories

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := shared.NewDatabase(path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func samplePlaylist(id, name string) models.Playlist {
	return models.Playlist{
		ID:          id,
		Name:        name,
		Description: "test playlist",
		TrackCount:  3,
		Public:      true,
		Owner:       "user123",
	}
}

func sampleTrack(id, title string) models.Track {
	return models.Track{
		ID:       id,
		Title:    title,
		Artist:   "Test Artist",
		Album:    "Test Album",
		Duration: 210,
		ISRC:     "USRC17607839",
		URI:      "spotify:track:" + id,
	}
}

func TestRunMigrations(t *testing.T) {
	db := testDB(t)

	t.Run("Creates All Tables", func(t *testing.T) {
		for _, table := range []string{"playlists", "tracks", "playlists_sequence", "tracks_sequence", "schema_migrations"} {
			var name string
			err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
			if err != nil {
				t.Errorf("expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("Is Idempotent", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("rerunning migrations failed: %v", err)
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
			t.Fatalf("failed to count migrations: %v", err)
		}
		if count != len(migrations) {
			t.Errorf("expected %d migration records, got %d", len(migrations), count)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := testDB(t)

	first, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	second, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if first != 1 || second != 2 {
		t.Errorf("expected sequences 1 and 2, got %d and %d", first, second)
	}

	trackSeq, err := NextSequence(db, "tracks")
	if err != nil {
		t.Fatalf("failed to get track sequence: %v", err)
	}
	if trackSeq != 1 {
		t.Errorf("expected independent track sequence 1, got %d", trackSeq)
	}
}

func TestPlaylistRepository(t *testing.T) {
	db := testDB(t)
	repo := NewPlaylistRepository(db)

	t.Run("Create And Get", func(t *testing.T) {
		cached := models.NewCachedPlaylist(0, "sp1", "user123", samplePlaylist("sp1", "Chill Mix"))
		if err := repo.Create(cached); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if cached.ID() == "" {
			t.Error("expected generated ID after create")
		}

		got, err := repo.Get(cached.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if got.Name() != "Chill Mix" {
			t.Errorf("expected name Chill Mix, got %s", got.Name())
		}
		if got.OwnerID() != "user123" {
			t.Errorf("expected owner user123, got %s", got.OwnerID())
		}
	})

	t.Run("Get By Spotify ID", func(t *testing.T) {
		got, err := repo.GetBySpotifyID("sp1")
		if err != nil {
			t.Fatalf("failed to get playlist by spotify id: %v", err)
		}
		if got.SpotifyID() != "sp1" {
			t.Errorf("expected spotify id sp1, got %s", got.SpotifyID())
		}
	})

	t.Run("Get Missing Returns Not Found", func(t *testing.T) {
		_, err := repo.Get("does-not-exist")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Rejects Duplicate Spotify ID", func(t *testing.T) {
		dup := models.NewCachedPlaylist(0, "sp1", "user123", samplePlaylist("sp1", "Chill Mix Again"))
		err := repo.Create(dup)
		if err == nil {
			t.Fatal("expected unique constraint error")
		}
		if !isUniqueViolation(err) {
			t.Errorf("expected unique violation, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		got, err := repo.GetBySpotifyID("sp1")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		updated := models.NewCachedPlaylist(got.Sequence(), "sp1", "user123", samplePlaylist("sp1", "Renamed Mix"))
		updated.SetID(got.ID())
		if err := repo.Update(updated); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		after, err := repo.Get(got.ID())
		if err != nil {
			t.Fatalf("failed to reload playlist: %v", err)
		}
		if after.Name() != "Renamed Mix" {
			t.Errorf("expected renamed playlist, got %s", after.Name())
		}
	})

	t.Run("List Filters By Owner", func(t *testing.T) {
		other := samplePlaylist("sp2", "Other Mix")
		other.Owner = "user456"
		if err := repo.Create(models.NewCachedPlaylist(0, "sp2", "user456", other)); err != nil {
			t.Fatalf("failed to create second playlist: %v", err)
		}

		mine, err := repo.List(map[string]any{"owner_id": "user123"})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(mine) != 1 {
			t.Fatalf("expected 1 playlist for user123, got %d", len(mine))
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list all playlists: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 playlists, got %d", len(all))
		}
	})

	t.Run("Soft Delete Hides Playlist", func(t *testing.T) {
		got, err := repo.GetBySpotifyID("sp2")
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}

		if err := repo.Delete(got.ID()); err != nil {
			t.Fatalf("failed to delete playlist: %v", err)
		}

		if _, err := repo.Get(got.ID()); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected deleted playlist to be hidden, got %v", err)
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM playlists WHERE id = ?`, got.ID()).Scan(&count); err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 1 {
			t.Error("expected soft-deleted row to remain in table")
		}
	})
}

func TestTrackRepository(t *testing.T) {
	db := testDB(t)
	repo := NewTrackRepository(db)

	t.Run("Create And Get", func(t *testing.T) {
		cached := models.NewCachedTrack(0, "tr1", sampleTrack("tr1", "Song One"))
		if err := repo.Create(cached); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}

		got, err := repo.Get(cached.ID())
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if got.Title() != "Song One" {
			t.Errorf("expected title Song One, got %s", got.Title())
		}
		if got.ISRC() != "USRC17607839" {
			t.Errorf("expected ISRC preserved, got %s", got.ISRC())
		}
		if got.URI() != "spotify:track:tr1" {
			t.Errorf("expected URI preserved, got %s", got.URI())
		}
		if got.Track().URI != "spotify:track:tr1" {
			t.Errorf("expected URI on rebuilt track, got %s", got.Track().URI)
		}
	})

	t.Run("Get By Spotify ID", func(t *testing.T) {
		got, err := repo.GetBySpotifyID("tr1")
		if err != nil {
			t.Fatalf("failed to get track by spotify id: %v", err)
		}
		if got.SpotifyID() != "tr1" {
			t.Errorf("expected spotify id tr1, got %s", got.SpotifyID())
		}
	})

	t.Run("List Filters By Artist", func(t *testing.T) {
		other := sampleTrack("tr2", "Song Two")
		other.Artist = "Another Artist"
		if err := repo.Create(models.NewCachedTrack(0, "tr2", other)); err != nil {
			t.Fatalf("failed to create second track: %v", err)
		}

		matches, err := repo.List(map[string]any{"artist": "Another Artist"})
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(matches) != 1 || matches[0].SpotifyID() != "tr2" {
			t.Errorf("expected only tr2 for Another Artist, got %d results", len(matches))
		}
	})

	t.Run("Delete Missing Returns Not Found", func(t *testing.T) {
		if err := repo.Delete("does-not-exist"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Update Missing Returns Not Found", func(t *testing.T) {
		ghost := models.NewCachedTrack(99, "tr-ghost", sampleTrack("tr-ghost", "Ghost"))
		ghost.SetID("no-such-row")
		if err := repo.Update(ghost); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})
}

func TestCache(t *testing.T) {
	db := testDB(t)
	cache := NewCache(NewPlaylistRepository(db), NewTrackRepository(db))

	t.Run("Store Playlist Twice Updates In Place", func(t *testing.T) {
		playlist := samplePlaylist("sp1", "Original")
		if err := cache.StorePlaylist(playlist, "user123"); err != nil {
			t.Fatalf("failed to store playlist: %v", err)
		}

		playlist.Name = "Renamed"
		if err := cache.StorePlaylist(playlist, "user123"); err != nil {
			t.Fatalf("failed to restore playlist: %v", err)
		}

		all, err := cache.Playlists().List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected single cached playlist, got %d", len(all))
		}
		if all[0].Name() != "Renamed" {
			t.Errorf("expected updated name, got %s", all[0].Name())
		}
	})

	t.Run("Store Tracks Batch", func(t *testing.T) {
		tracks := []models.Track{
			sampleTrack("tr1", "One"),
			sampleTrack("tr2", "Two"),
			sampleTrack("tr1", "One"),
		}

		stored, err := cache.StoreTracks(tracks)
		if err != nil {
			t.Fatalf("failed to store tracks: %v", err)
		}
		if stored != 3 {
			t.Errorf("expected 3 store operations to succeed, got %d", stored)
		}

		all, err := cache.Tracks().List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 distinct cached tracks, got %d", len(all))
		}
	})
}
