package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/spx/internal/repositories"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// openCache opens the sqlite database and builds the repository layer.
// The caller owns the returned handle.
func (r *Runner) openCache() (*repositories.Cache, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := repositories.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cache := repositories.NewCache(
		repositories.NewPlaylistRepository(db),
		repositories.NewTrackRepository(db),
	)

	return cache, db, nil
}

// CacheSync fetches every playlist and its tracks into the local database.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	rateLimit := cmd.Int("rate")

	svc, err := r.openSpotify()
	if err != nil {
		return err
	}

	cache, db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	engine := tasks.NewExportEngine(svc, r.logger)
	result, err := engine.SyncCache(ctx, progress, cache, float64(rateLimit))
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("cache sync failed: %w", err)
	}

	r.writePlainln("✓ Cache synced")
	r.writePlain("  Playlists: %d\n", result.Playlists)
	r.writePlain("  Tracks: %d\n", result.Tracks)
	if len(result.Failed) > 0 {
		r.writePlain("  Failed: %s\n", strings.Join(result.Failed, ", "))
	}

	return nil
}

// CacheList prints the locally cached playlists.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	cache, db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	playlists, err := cache.Playlists().List(nil)
	if err != nil {
		return fmt.Errorf("failed to list cached playlists: %w", err)
	}

	if useJSON {
		out := make([]map[string]any, 0, len(playlists))
		for _, p := range playlists {
			out = append(out, map[string]any{
				"id":          p.SpotifyID(),
				"name":        p.Name(),
				"description": p.Description(),
				"track_count": p.TrackCount(),
				"public":      p.Public(),
				"updated_at":  p.UpdatedAt(),
			})
		}
		return r.writeJSON(out, true)
	}

	if len(playlists) == 0 {
		r.writePlain("Cache is empty. Run: spx cache sync\n")
		return nil
	}

	r.writePlain("Cached playlists:\n\n")
	for i, p := range playlists {
		r.writePlain("%d. %s (%d tracks)\n", i+1, p.Name(), p.TrackCount())
		r.writePlain("   ID: %s\n", p.SpotifyID())
		r.writePlain("   Synced: %s\n", p.UpdatedAt().Format("2006-01-02 15:04"))
	}

	return nil
}

// CacheClear soft deletes every cached playlist and track.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	cache, db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	playlists, err := cache.Playlists().List(nil)
	if err != nil {
		return fmt.Errorf("failed to list cached playlists: %w", err)
	}

	for _, p := range playlists {
		if err := cache.Playlists().Delete(p.ID()); err != nil {
			return fmt.Errorf("failed to delete playlist %s: %w", p.SpotifyID(), err)
		}
	}

	tracks, err := cache.Tracks().List(nil)
	if err != nil {
		return fmt.Errorf("failed to list cached tracks: %w", err)
	}

	for _, t := range tracks {
		if err := cache.Tracks().Delete(t.ID()); err != nil {
			return fmt.Errorf("failed to delete track %s: %w", t.SpotifyID(), err)
		}
	}

	r.logger.Infof("cleared %v playlists and %v tracks", len(playlists), len(tracks))
	r.writePlain("✓ Cleared %d playlists and %d tracks\n", len(playlists), len(tracks))

	return nil
}
