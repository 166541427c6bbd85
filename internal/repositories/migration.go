package repositories

import (
	"database/sql"
	"fmt"
)

// Migration pairs a schema version with the statements that establish it.
type Migration struct {
	Version int
	Name    string
	Up      []string
}

// migrations is the ordered schema history for the local cache.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_playlists",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS playlists (
				id TEXT PRIMARY KEY,
				sequence INTEGER NOT NULL,
				spotify_id TEXT NOT NULL UNIQUE,
				owner_id TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				track_count INTEGER NOT NULL DEFAULT 0,
				public INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				deleted_at TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS playlists_sequence (id INTEGER PRIMARY KEY, value INTEGER NOT NULL)`,
			`INSERT OR IGNORE INTO playlists_sequence (id, value) VALUES (1, 0)`,
		},
	},
	{
		Version: 2,
		Name:    "create_tracks",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS tracks (
				id TEXT PRIMARY KEY,
				sequence INTEGER NOT NULL,
				spotify_id TEXT NOT NULL UNIQUE,
				title TEXT NOT NULL,
				artist TEXT NOT NULL DEFAULT '',
				album TEXT NOT NULL DEFAULT '',
				duration INTEGER NOT NULL DEFAULT 0,
				isrc TEXT NOT NULL DEFAULT '',
				uri TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				deleted_at TIMESTAMP
			)`,
			`CREATE TABLE IF NOT EXISTS tracks_sequence (id INTEGER PRIMARY KEY, value INTEGER NOT NULL)`,
			`INSERT OR IGNORE INTO tracks_sequence (id, value) VALUES (1, 0)`,
			`CREATE INDEX IF NOT EXISTS idx_tracks_isrc ON tracks (isrc) WHERE isrc != ''`,
		},
	},
}

// RunMigrations applies all pending migrations in version order.
func RunMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return err
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}
		if err := applyMigration(db, migration); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var version sql.NullInt64
	err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func applyMigration(db *sql.DB, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range migration.Up {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`,
		migration.Version, migration.Name); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
