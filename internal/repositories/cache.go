package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// Cache wraps the playlist and track repositories behind a write-through
// interface used by the services layer. Fetched API responses are cached
// opportunistically and duplicate inserts are absorbed rather than surfaced.
type Cache struct {
	playlists *PlaylistRepository
	tracks    *TrackRepository
}

// NewCache creates a Cache over both repositories.
func NewCache(playlists *PlaylistRepository, tracks *TrackRepository) *Cache {
	return &Cache{playlists: playlists, tracks: tracks}
}

// Playlists exposes the underlying playlist repository.
func (c *Cache) Playlists() *PlaylistRepository { return c.playlists }

// Tracks exposes the underlying track repository.
func (c *Cache) Tracks() *TrackRepository { return c.tracks }

// StorePlaylist caches a playlist DTO, updating the cached row if the
// playlist was stored before.
func (c *Cache) StorePlaylist(playlist models.Playlist, ownerID string) error {
	existing, err := c.playlists.GetBySpotifyID(playlist.ID)
	if err == nil {
		cached := models.NewCachedPlaylist(existing.Sequence(), playlist.ID, ownerID, playlist)
		cached.SetID(existing.ID())
		if uerr := c.playlists.Update(cached); uerr != nil {
			return fmt.Errorf("failed to refresh cached playlist: %w", uerr)
		}
		return nil
	}
	if !errors.Is(err, shared.ErrPlaylistNotFound) {
		return err
	}

	cached := models.NewCachedPlaylist(0, playlist.ID, ownerID, playlist)
	if cerr := c.playlists.Create(cached); cerr != nil {
		if isUniqueViolation(cerr) {
			return nil
		}
		return fmt.Errorf("failed to cache playlist: %w", cerr)
	}
	return nil
}

// StoreTrack caches a track DTO. Duplicate inserts are treated as a no-op.
func (c *Cache) StoreTrack(track models.Track) error {
	existing, err := c.tracks.GetBySpotifyID(track.ID)
	if err == nil {
		cached := models.NewCachedTrack(existing.Sequence(), track.ID, track)
		cached.SetID(existing.ID())
		if uerr := c.tracks.Update(cached); uerr != nil {
			return fmt.Errorf("failed to refresh cached track: %w", uerr)
		}
		return nil
	}
	if !errors.Is(err, shared.ErrTrackNotFound) {
		return err
	}

	cached := models.NewCachedTrack(0, track.ID, track)
	if cerr := c.tracks.Create(cached); cerr != nil {
		if isUniqueViolation(cerr) {
			return nil
		}
		return fmt.Errorf("failed to cache track: %w", cerr)
	}
	return nil
}

// StoreTracks caches a batch of tracks, stopping at the first hard failure.
func (c *Cache) StoreTracks(tracks []models.Track) (int, error) {
	stored := 0
	for _, track := range tracks {
		if err := c.StoreTrack(track); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

// isUniqueViolation reports whether err is a sqlite unique constraint
// failure, which happens when two fetches race to cache the same row.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
