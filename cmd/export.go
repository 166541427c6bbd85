package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spx/internal/shared"
	"github.com/desertthunder/spx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ExportRun exports every playlist to a directory using the worker pool.
func (r *Runner) ExportRun(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	outputDir := cmd.String("output")
	workers := cmd.Int("workers")
	rateLimit := cmd.Int("rate")
	covers := cmd.Bool("covers")

	svc, err := r.openSpotify()
	if err != nil {
		return err
	}

	r.logger.Infof("starting bulk export in %v format", format)
	r.writePlain("Fetching playlists...\n")

	playlists, err := svc.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists to export.\n")
		return nil
	}

	ids := make([]string, 0, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  outputDir,
		NumWorkers: workers,
		RateLimit:  float64(rateLimit),
	}

	if covers {
		sp, err := r.concrete()
		if err != nil {
			return err
		}
		opts.GetCoverImage = func(ctx context.Context, id string) (string, error) {
			playlist, err := sp.Playlist(ctx, id)
			if err != nil {
				return "", err
			}
			if len(playlist.Images) == 0 {
				return "", nil
			}
			return playlist.Images[0].URL, nil
		}
	}

	progress := make(chan tasks.ProgressUpdate, len(ids)*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	engine := tasks.NewExportEngine(svc, r.logger)
	result, err := engine.BulkExport(ctx, progress, ids, opts)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("bulk export failed: %w", err)
	}

	r.writePlainln("✓ Export complete")
	r.writePlain("  Playlists: %d (%d ok, %d failed)\n", result.TotalPlaylists, result.SuccessfulExports, result.FailedExports)
	r.writePlain("  Output: %s\n", result.OutputDirectory)
	r.writePlain("  Manifest: %s\n", result.ManifestPath)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed:\n")
		for _, pr := range result.Results {
			if !pr.Success {
				r.writePlain("  ✗ %s: %v\n", pr.PlaylistName, pr.Error)
			}
		}
	}

	return nil
}
