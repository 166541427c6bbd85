// package tasks implements long-running playlist operations.
//
// The core abstraction is ExportEngine, which orchestrates bulk exports and
// library cache syncs. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/services"
	"github.com/desertthunder/spx/internal/shared"
)

// PlaylistExportJob carries one fetched playlist to an export worker.
type PlaylistExportJob struct {
	PlaylistID string
	Export     *models.PlaylistExport
}

// PlaylistExportResult represents the outcome of exporting a single playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Success      bool
	Files        []string
	Error        error
}

// BulkExportResult contains aggregate data from a bulk export run.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	Results           []PlaylistExportResult
	OutputDirectory   string
	ManifestPath      string
}

// SyncResult contains aggregate data from a library cache sync.
type SyncResult struct {
	Playlists int      // Playlists written to the cache
	Tracks    int      // Tracks written to the cache
	Failed    []string // Playlist IDs that could not be exported
}

// cacheStore is the slice of the local cache the sync task writes to.
type cacheStore interface {
	StorePlaylist(playlist models.Playlist, ownerID string) error
	StoreTracks(tracks []models.Track) (int, error)
}

// ExportEngine orchestrates bulk exports and cache syncs against a service.
type ExportEngine struct {
	service services.Service
	logger  *log.Logger
}

// NewExportEngine creates an ExportEngine over the given service.
func NewExportEngine(service services.Service, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ExportEngine{service: service, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the operation.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// SyncCache fetches the user's playlists and their tracks, writing everything
// to the local cache. Individual playlist failures are collected rather than
// aborting the run.
func (e *ExportEngine) SyncCache(ctx context.Context, progress chan<- ProgressUpdate, cache cacheStore, requestsPerSecond float64) (*SyncResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}
	if cache == nil {
		return nil, fmt.Errorf("%w: cache not initialized", shared.ErrServiceUnavailable)
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5.0
	}

	e.sendProgress(progress, fetchPlaylistsUpdate(0, 0))

	playlists, err := e.service.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	result := &SyncResult{}
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	total := len(playlists)

	for i, playlist := range playlists {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		e.sendProgress(progress, syncPlaylistUpdate(i+1, total, playlist.Name))

		if err := cache.StorePlaylist(playlist, playlist.Owner); err != nil {
			e.logger.Warn("failed to cache playlist", "playlist", playlist.ID, "error", err)
			result.Failed = append(result.Failed, playlist.ID)
			continue
		}
		result.Playlists++

		export, err := e.service.ExportPlaylist(ctx, playlist.ID)
		if err != nil {
			e.logger.Warn("failed to export playlist tracks", "playlist", playlist.ID, "error", err)
			result.Failed = append(result.Failed, playlist.ID)
			continue
		}

		stored, err := cache.StoreTracks(export.Tracks)
		result.Tracks += stored
		if err != nil {
			e.logger.Warn("failed to cache tracks", "playlist", playlist.ID, "error", err)
			result.Failed = append(result.Failed, playlist.ID)
		}
	}

	e.sendProgress(progress, syncCompletedUpdate(total, total, result.Playlists, result.Tracks))
	return result, nil
}
