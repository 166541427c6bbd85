package models

import (
	"fmt"
	"time"
)

// CachedPlaylist is the persisted form of a [Playlist] in the local cache.
type CachedPlaylist struct {
	id        string
	sequence  int
	spotifyID string
	ownerID   string
	playlist  Playlist
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedPlaylist wraps a playlist DTO for persistence.
func NewCachedPlaylist(sequence int, spotifyID, ownerID string, playlist Playlist) *CachedPlaylist {
	now := time.Now()
	return &CachedPlaylist{
		sequence:  sequence,
		spotifyID: spotifyID,
		ownerID:   ownerID,
		playlist:  playlist,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *CachedPlaylist) ID() string            { return p.id }
func (p *CachedPlaylist) SetID(id string)       { p.id = id }
func (p *CachedPlaylist) Sequence() int         { return p.sequence }
func (p *CachedPlaylist) SpotifyID() string     { return p.spotifyID }
func (p *CachedPlaylist) OwnerID() string       { return p.ownerID }
func (p *CachedPlaylist) Name() string          { return p.playlist.Name }
func (p *CachedPlaylist) Description() string   { return p.playlist.Description }
func (p *CachedPlaylist) TrackCount() int       { return p.playlist.TrackCount }
func (p *CachedPlaylist) Public() bool          { return p.playlist.Public }
func (p *CachedPlaylist) Playlist() Playlist    { return p.playlist }
func (p *CachedPlaylist) CreatedAt() time.Time  { return p.createdAt }
func (p *CachedPlaylist) UpdatedAt() time.Time  { return p.updatedAt }
func (p *CachedPlaylist) DeletedAt() *time.Time { return p.deletedAt }

func (p *CachedPlaylist) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *CachedPlaylist) SetDeletedAt(t *time.Time) { p.deletedAt = t }

func (p *CachedPlaylist) Validate() error {
	if p.spotifyID == "" {
		return fmt.Errorf("cached playlist requires a spotify id")
	}
	if p.playlist.Name == "" {
		return fmt.Errorf("cached playlist requires a name")
	}
	return nil
}

// CachedTrack is the persisted form of a [Track] in the local cache.
type CachedTrack struct {
	id        string
	sequence  int
	spotifyID string
	track     Track
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedTrack wraps a track DTO for persistence.
func NewCachedTrack(sequence int, spotifyID string, track Track) *CachedTrack {
	now := time.Now()
	return &CachedTrack{
		sequence:  sequence,
		spotifyID: spotifyID,
		track:     track,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *CachedTrack) ID() string            { return t.id }
func (t *CachedTrack) SetID(id string)       { t.id = id }
func (t *CachedTrack) Sequence() int         { return t.sequence }
func (t *CachedTrack) SpotifyID() string     { return t.spotifyID }
func (t *CachedTrack) Title() string         { return t.track.Title }
func (t *CachedTrack) Artist() string        { return t.track.Artist }
func (t *CachedTrack) Album() string         { return t.track.Album }
func (t *CachedTrack) Duration() int         { return t.track.Duration }
func (t *CachedTrack) ISRC() string          { return t.track.ISRC }
func (t *CachedTrack) URI() string           { return t.track.URI }
func (t *CachedTrack) Track() Track          { return t.track }
func (t *CachedTrack) CreatedAt() time.Time  { return t.createdAt }
func (t *CachedTrack) UpdatedAt() time.Time  { return t.updatedAt }
func (t *CachedTrack) DeletedAt() *time.Time { return t.deletedAt }

func (t *CachedTrack) SetUpdatedAt(at time.Time)   { t.updatedAt = at }
func (t *CachedTrack) SetDeletedAt(at *time.Time)  { t.deletedAt = at }

func (t *CachedTrack) Validate() error {
	if t.spotifyID == "" {
		return fmt.Errorf("cached track requires a spotify id")
	}
	if t.track.Title == "" {
		return fmt.Errorf("cached track requires a title")
	}
	return nil
}
