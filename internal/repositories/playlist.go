package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.CachedPlaylist] for playlist caching.
//
// Handles playlist CRUD operations with soft delete support and Spotify-ID lookups.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist into the database with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.CachedPlaylist) error {
	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, spotify_id, owner_id, name, description, track_count, public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		playlist.SpotifyID(),
		playlist.OwnerID(),
		playlist.Name(),
		playlist.Description(),
		playlist.TrackCount(),
		playlist.Public(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	return nil
}

// Get retrieves a playlist by ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.CachedPlaylist, error) {
	query := `
		SELECT id, sequence, spotify_id, owner_id, name, description, track_count, public, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySpotifyID retrieves a playlist by its Spotify ID
func (r *PlaylistRepository) GetBySpotifyID(spotifyID string) (*models.CachedPlaylist, error) {
	query := `
		SELECT id, sequence, spotify_id, owner_id, name, description, track_count, public, created_at, updated_at, deleted_at
		FROM playlists
		WHERE spotify_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, spotifyID))
}

// Update modifies an existing playlist in the database
func (r *PlaylistRepository) Update(playlist *models.CachedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	query := `
		UPDATE playlists
		SET name = ?, description = ?, track_count = ?, public = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		playlist.Name(),
		playlist.Description(),
		playlist.TrackCount(),
		playlist.Public(),
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID())
	}

	return nil
}

// Delete soft-deletes a playlist by ID
func (r *PlaylistRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.CachedPlaylist, error) {
	query := `
		SELECT id, sequence, spotify_id, owner_id, name, description, track_count, public, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if ownerID, ok := criteria["owner_id"].(string); ok && ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.CachedPlaylist
	for rows.Next() {
		playlist, err := scanPlaylist(rows.Scan)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.CachedPlaylist, error) {
	playlist, err := scanPlaylist(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, err
	}
	return playlist, nil
}

// scanPlaylist reconstructs a [models.CachedPlaylist] from a row scanner.
func scanPlaylist(scan func(dest ...any) error) (*models.CachedPlaylist, error) {
	var (
		id          string
		sequence    int
		spotifyID   string
		ownerID     string
		name        string
		description string
		trackCount  int
		public      bool
		createdAt   time.Time
		updatedAt   time.Time
		deletedAt   sql.NullTime
	)

	err := scan(&id, &sequence, &spotifyID, &ownerID, &name, &description, &trackCount, &public, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	dto := models.Playlist{
		ID:          spotifyID,
		Name:        name,
		Description: description,
		TrackCount:  trackCount,
		Public:      public,
		Owner:       ownerID,
	}

	playlist := models.NewCachedPlaylist(sequence, spotifyID, ownerID, dto)
	playlist.SetID(id)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}
