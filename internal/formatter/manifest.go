package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/spx/internal/shared"
)

// ManifestEntry summarizes the outcome of a single playlist export.
type ManifestEntry struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Status       string   `json:"status"` // success or failed
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export run. Written as JSON alongside the
// exported files so a run can be audited after the fact.
type Manifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalPlaylists    int             `json:"total_playlists"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	OutputDirectory   string          `json:"output_directory"`
	Playlists         []ManifestEntry `json:"playlists"`
}

// SuccessEntry builds a manifest entry for a completed export.
func SuccessEntry(playlistID, name string, files []string) ManifestEntry {
	return ManifestEntry{
		PlaylistID:   playlistID,
		PlaylistName: name,
		Status:       "success",
		Files:        files,
	}
}

// FailureEntry builds a manifest entry for a failed export.
func FailureEntry(playlistID, name string, err error) ManifestEntry {
	entry := ManifestEntry{
		PlaylistID:   playlistID,
		PlaylistName: name,
		Status:       "failed",
	}
	if err != nil {
		entry.Error = err.Error()
	}
	return entry
}

// WriteManifest writes the manifest as indented JSON to path.
func WriteManifest(manifest Manifest, path string) error {
	if manifest.ExportedAt.IsZero() {
		manifest.ExportedAt = time.Now()
	}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
