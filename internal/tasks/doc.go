// Package tasks orchestrates long-running operations over the Spotify service.
//
// # Bulk Export
//
// [ExportEngine.BulkExport] exports many playlists concurrently. A single
// producer goroutine fetches playlists through a rate limiter while a bounded
// worker pool formats and writes files. Partial failures are collected per
// playlist and summarized in an export_manifest.json written to the output
// directory.
//
// # Cache Sync
//
// [ExportEngine.SyncCache] walks the user's playlists and writes playlist and
// track metadata into the local SQLite cache. Failures on individual
// playlists are recorded and the sync continues.
//
// # Progress Reporting
//
// Operations accept an optional chan [ProgressUpdate]. Sends never block; if
// the consumer falls behind, updates are dropped rather than stalling the
// operation.
package tasks
