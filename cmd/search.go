package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search queries the Spotify catalog across the requested result types.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	typeList := cmd.String("type")
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	if query == "" {
		return fmt.Errorf("%w: search query argument is required", shared.ErrMissingArgument)
	}

	types := []string{}
	for _, t := range strings.Split(typeList, ",") {
		t = strings.TrimSpace(t)
		switch t {
		case "track", "album", "artist", "playlist":
			types = append(types, t)
		case "":
		default:
			return fmt.Errorf("%w: unknown search type %q", shared.ErrInvalidFlag, t)
		}
	}
	if len(types) == 0 {
		types = []string{"track"}
	}

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	r.logger.Infof("searching for %q across %v", query, types)

	results, err := sp.Search(ctx, query, types, limit)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(results, true)
	}

	if results.Tracks != nil && len(results.Tracks.Items) > 0 {
		r.writePlain("Tracks:\n")
		for i, st := range results.Tracks.Items {
			track := services.MapTrack(st)
			r.writePlain("%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, shared.FormatDuration(track.Duration))
			r.writePlain("   URI: %s\n", track.URI)
		}
		r.writePlain("\n")
	}

	if results.Artists != nil && len(results.Artists.Items) > 0 {
		r.writePlain("Artists:\n")
		for i, artist := range results.Artists.Items {
			r.writePlain("%d. %s\n", i+1, artist.Name)
		}
		r.writePlain("\n")
	}

	if results.Albums != nil && len(results.Albums.Items) > 0 {
		r.writePlain("Albums:\n")
		for i, album := range results.Albums.Items {
			name := album.Name
			if len(album.Artists) > 0 {
				name = fmt.Sprintf("%s - %s", album.Artists[0].Name, album.Name)
			}
			r.writePlain("%d. %s (%s)\n", i+1, name, album.ReleaseDate)
		}
		r.writePlain("\n")
	}

	if results.Playlists != nil && len(results.Playlists.Items) > 0 {
		r.writePlain("Playlists:\n")
		for i, playlist := range results.Playlists.Items {
			r.writePlain("%d. %s (%d tracks)\n", i+1, playlist.Name, playlist.Tracks.Total)
		}
	}

	return nil
}

// Releases shows new album releases.
func (r *Runner) Releases(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	albums, err := sp.NewReleases(ctx, limit, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(albums, true)
	}

	r.writePlain("New releases:\n\n")
	for i, album := range albums {
		artist := ""
		if len(album.Artists) > 0 {
			artist = album.Artists[0].Name + " - "
		}
		r.writePlain("%d. %s%s\n", i+1, artist, album.Name)
		r.writePlain("   Released: %s (%d tracks)\n", album.ReleaseDate, album.TotalTracks)
	}

	return nil
}
