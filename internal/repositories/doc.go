// Package repositories provides SQLite-backed persistence for the local
// playlist and track cache.
//
// Each repository implements the generic [models.Repository] interface with
// soft deletes and monotonic per-table sequence numbers. Schema changes are
// applied through versioned migrations at startup. The [Cache] adapter sits
// between the services layer and the repositories, absorbing duplicate
// writes so API fetches can cache results without coordination.
package repositories
