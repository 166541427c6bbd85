// Package models defines provider-neutral playlist and track types plus
// their persisted cache forms.
//
// [Playlist] and [Track] are the DTOs flowing between the services layer,
// the export engine, and the TUI. [CachedPlaylist] and [CachedTrack] wrap
// them with identity, sequence, and soft-delete bookkeeping for the SQLite
// cache in internal/repositories.
package models
