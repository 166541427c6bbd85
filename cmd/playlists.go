package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/spx/internal/formatter"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists the authenticated user's playlists.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	svc, err := r.openSpotify()
	if err != nil {
		return err
	}

	r.logger.Infof("listing playlists with limit %v", limit)

	playlists, err := svc.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
		r.writePlain("\n")
	}

	return nil
}

// PlaylistsShow prints a playlist and its full track listing.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("id")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID argument is required", shared.ErrMissingArgument)
	}

	svc, err := r.openSpotify()
	if err != nil {
		return err
	}

	export, err := svc.ExportPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(export, pretty)
	}

	r.writePlain("Playlist: %s\n", export.Playlist.Name)
	if export.Playlist.Description != "" {
		r.writePlain("Description: %s\n", export.Playlist.Description)
	}
	if export.Playlist.Owner != "" {
		r.writePlain("Owner: %s\n", export.Playlist.Owner)
	}
	r.writePlain("Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		r.writePlain("%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, shared.FormatDuration(track.Duration))
		if track.Album != "" {
			r.writePlain("   Album: %s\n", track.Album)
		}
	}

	return nil
}

// PlaylistsCreate creates a playlist for the authenticated user.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	description := cmd.String("description")
	public := cmd.Bool("public")

	if name == "" {
		return fmt.Errorf("%w: playlist name argument is required", shared.ErrMissingArgument)
	}

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	profile, err := sp.UserProfile(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	playlist, err := sp.CreatePlaylist(ctx, profile.ID, name, description, public)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Infof("created playlist %v", playlist.ID)

	r.writePlain("✓ Playlist created: %s\n", playlist.Name)
	r.writePlain("  ID: %s\n", playlist.ID)
	r.writePlain("  Visibility: %s\n", shared.VisibilityString(playlist.Public))

	return nil
}

// PlaylistsAdd adds tracks to an existing playlist by URI.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	uris := cmd.StringSlice("uri")

	if len(uris) == 0 {
		return fmt.Errorf("%w: at least one --uri is required", shared.ErrMissingArgument)
	}

	for _, uri := range uris {
		if !strings.HasPrefix(uri, "spotify:") {
			return fmt.Errorf("%w: %q is not a spotify URI", shared.ErrInvalidArgument, uri)
		}
	}

	sp, err := r.concrete()
	if err != nil {
		return err
	}

	snapshotID, err := sp.AddPlaylistItems(ctx, playlistID, uris)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Infof("added %v tracks to playlist %v", len(uris), playlistID)

	r.writePlain("✓ Added %d tracks\n", len(uris))
	if snapshotID != "" {
		r.writePlain("  Snapshot: %s\n", snapshotID)
	}

	return nil
}

// PlaylistsExport exports a single playlist to a file in the chosen format.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	outputFile := cmd.String("output")
	format := cmd.String("format")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	svc, err := r.openSpotify()
	if err != nil {
		return err
	}

	r.logger.Infof("exporting playlist %v as %v", playlistID, format)

	export, err := svc.ExportPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(export, pretty)
	}

	var files []string

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, strings.TrimSuffix(outputFile, ".csv"))
		if err != nil {
			return err
		}
		files = []string{result.TracksFile, result.MetadataFile}
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(export, outputFile, "")
		if err != nil {
			return err
		}
		files = result.Files
	case "txt", "text":
		file, err := formatter.WriteTextExport(export, outputFile)
		if err != nil {
			return err
		}
		files = []string{file}
	case "json", "":
		if outputFile == "" {
			outputFile = fmt.Sprintf("spotify_%s.json", export.Playlist.ID)
		}
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			return fmt.Errorf("failed to marshal export: %w", err)
		}
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		files = []string{outputFile}
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}

	r.logger.Infof("playlist exported with %v tracks", len(export.Tracks))

	r.writePlain("✓ Playlist exported: %s\n", export.Playlist.Name)
	r.writePlain("  Tracks: %d\n", len(export.Tracks))
	for _, f := range files {
		r.writePlain("  File: %s\n", f)
	}

	return nil
}
