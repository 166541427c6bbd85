package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryTracks lists a page of the user's saved tracks.
func (r *Runner) LibraryTracks(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	offset := cmd.Int("offset")
	useJSON := cmd.Bool("json")

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	page, err := sp.SavedTracks(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(page, true)
	}

	r.writePlain("Saved tracks %d-%d of %d:\n\n", page.Offset+1, page.Offset+len(page.Items), page.Total)
	for i, saved := range page.Items {
		track := services.MapTrack(saved.Track)
		r.writePlain("%d. %s - %s [%s]\n", page.Offset+i+1, track.Artist, track.Title, shared.FormatDuration(track.Duration))
		if track.Album != "" {
			r.writePlain("   Album: %s\n", track.Album)
		}
		r.writePlain("   ID: %s\n", track.ID)
	}

	return nil
}

// LibrarySave saves tracks to the user's library.
func (r *Runner) LibrarySave(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one track ID is required", shared.ErrMissingArgument)
	}

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	if err := sp.SaveTracks(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Infof("saved %v tracks", len(ids))
	r.writePlain("✓ Saved %d tracks\n", len(ids))

	return nil
}

// LibraryRemove removes saved tracks from the user's library.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.StringArgs("ids")
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one track ID is required", shared.ErrMissingArgument)
	}

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	if err := sp.RemoveSavedTracks(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Infof("removed %v tracks", len(ids))
	r.writePlain("✓ Removed %d tracks\n", len(ids))

	return nil
}

// LibraryTop shows the user's top tracks or artists for a time range.
func (r *Runner) LibraryTop(ctx context.Context, cmd *cli.Command) error {
	itemType := cmd.String("type")
	timeRange := cmd.String("range")
	limit := cmd.Int("limit")

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	switch itemType {
	case "tracks":
		tracks, err := sp.TopTracks(ctx, timeRange, limit)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		r.writePlain("Top tracks (%s):\n\n", timeRange)
		for i, st := range tracks {
			track := services.MapTrack(st)
			r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Title)
		}
	case "artists":
		artists, err := sp.TopArtists(ctx, timeRange, limit)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		r.writePlain("Top artists (%s):\n\n", timeRange)
		for i, artist := range artists {
			r.writePlain("%d. %s\n", i+1, artist.Name)
			if len(artist.Genres) > 0 {
				r.writePlain("   Genres: %s\n", strings.Join(artist.Genres, ", "))
			}
		}
	default:
		return fmt.Errorf("%w: --type must be tracks or artists", shared.ErrInvalidFlag)
	}

	return nil
}

// LibraryRecent shows the user's recently played tracks.
func (r *Runner) LibraryRecent(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	history, err := sp.RecentlyPlayed(ctx, limit)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("Recently played:\n\n")
	for i, entry := range history {
		track := services.MapTrack(entry.Track)
		r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Title)
		if entry.PlayedAt != "" {
			r.writePlain("   Played: %s\n", entry.PlayedAt)
		}
	}

	return nil
}
